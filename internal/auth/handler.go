package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/store2s3/service/internal/response"
	"github.com/store2s3/service/internal/user"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Handler holds HTTP handlers for the credential-based auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Username string `json:"username" example:"janedoe"`
	Email    string `json:"email"    example:"jane@example.com"`
	Password string `json:"password" example:"hunter2hunter2"`
}

type loginRequest struct {
	Email    string `json:"email"    example:"jane@example.com"`
	Password string `json:"password" example:"hunter2hunter2"`
}

type tokenResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Register godoc
//
//	@Summary		Register a new account
//	@Description	Create an account for the local verification strategy and issue a signed token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Registration details"
//	@Success		201		{object}	tokenResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		409		{object}	response.ErrorBody
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if len(req.Username) < 3 {
		response.BadRequest(w, "username must be at least 3 characters")
		return
	}
	if !emailRegex.MatchString(req.Email) {
		response.BadRequest(w, "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		response.BadRequest(w, "password must be at least 8 characters")
		return
	}

	token, u, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, user.ErrAlreadyExists) {
		response.Conflict(w, "username or email already registered")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, tokenResponse{Token: token, User: u})
}

// Login godoc
//
//	@Summary		Sign in
//	@Description	Check credentials and issue a signed token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	tokenResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrInactiveUser) {
		response.Unauthorized(w, err.Error())
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, tokenResponse{Token: token, User: u})
}

// Me godoc
//
//	@Summary		Current identity
//	@Description	Echo the verified identity of the presented bearer token.
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Identity
//	@Failure		401	{object}	response.ErrorBody
//	@Router			/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	response.OK(w, ident)
}
