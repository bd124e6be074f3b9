package photo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/store2s3/service/internal/auth"
	"github.com/store2s3/service/internal/response"
	"github.com/store2s3/service/internal/storage"
)

// multipartMemory is the in-memory buffer threshold for multipart parsing;
// larger files spill to temp files.
const multipartMemory = 32 << 20

// Handler holds HTTP handlers for the photo endpoints. A nil service means
// neither the bucket nor the metadata store is configured.
type Handler struct {
	svc Service
}

// NewHandler creates a new photo Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type uploadResponse struct {
	Message string   `json:"message"`
	File    FileInfo `json:"file"`
}

type uploadBatchResponse struct {
	Message       string     `json:"message"`
	UploadedCount int        `json:"uploadedCount"`
	Files         []FileInfo `json:"files"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Upload godoc
//
//	@Summary		Upload a photo
//	@Description	Accept one image (multipart field "photo"), at most 10 MiB, and store it.
//	@Tags			photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			photo	formData	file	true	"Image file"
//	@Success		200	{object}	uploadResponse
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		503	{object}	response.ErrorBody
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ident, svc, ok := h.authed(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		response.BadRequest(w, "invalid multipart request")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		response.BadRequest(w, "no file uploaded")
		return
	}
	file.Close()

	info, err := svc.Upload(r.Context(), ident, fileFromHeader(header))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, uploadResponse{Message: "File uploaded successfully", File: info})
}

// UploadMultiple godoc
//
//	@Summary		Upload multiple photos
//	@Description	Accept up to 10 images (multipart field "photos"). One invalid file rejects the whole batch before anything is written.
//	@Tags			photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			photos	formData	file	true	"Image files"
//	@Success		200	{object}	uploadBatchResponse
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		503	{object}	response.ErrorBody
//	@Router			/upload-multiple [post]
func (h *Handler) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	ident, svc, ok := h.authed(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		response.BadRequest(w, "invalid multipart request")
		return
	}
	headers := r.MultipartForm.File["photos"]
	if len(headers) == 0 {
		response.BadRequest(w, "no files uploaded")
		return
	}
	if len(headers) > MaxBatchFiles {
		response.BadRequest(w, fmt.Sprintf("too many files: at most %d per request", MaxBatchFiles))
		return
	}

	files := make([]File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, fileFromHeader(fh))
	}

	infos, err := svc.UploadBatch(r.Context(), ident, files)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, uploadBatchResponse{
		Message:       fmt.Sprintf("%d files uploaded successfully", len(infos)),
		UploadedCount: len(infos),
		Files:         infos,
	})
}

// List godoc
//
//	@Summary		List the caller's photos
//	@Tags			photos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query	int	false	"Page number"
//	@Param			limit	query	int	false	"Page size"
//	@Success		200	{object}	Page
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		503	{object}	response.ErrorBody
//	@Router			/photos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ident, svc, ok := h.authed(w, r)
	if !ok {
		return
	}

	page, limit := pageParams(r)
	result, err := svc.List(r.Context(), ident, page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, result)
}

// ListPublic godoc
//
//	@Summary		List public photos
//	@Tags			photos
//	@Produce		json
//	@Param			page	query	int	false	"Page number"
//	@Param			limit	query	int	false	"Page size"
//	@Success		200	{object}	Page
//	@Failure		503	{object}	response.ErrorBody
//	@Router			/photos/public [get]
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		response.Unavailable(w, ErrStorageUnavailable.Error())
		return
	}

	page, limit := pageParams(r)
	result, err := h.svc.ListPublic(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, result)
}

// Get godoc
//
//	@Summary		Fetch one photo
//	@Description	Return a public or owned photo record and bump its view counter.
//	@Tags			photos
//	@Produce		json
//	@Param			id	path	string	true	"Photo id"
//	@Success		200	{object}	Photo
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		503	{object}	response.ErrorBody
//	@Router			/photos/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		response.Unavailable(w, ErrStorageUnavailable.Error())
		return
	}

	var viewer *auth.Identity
	if ident, ok := auth.IdentityFrom(r.Context()); ok {
		viewer = &ident
	}

	p, err := h.svc.Get(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, p)
}

// Update godoc
//
//	@Summary		Edit a photo's description, tags, or visibility
//	@Tags			photos
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path	string	true	"Photo id"
//	@Param			request	body	Update	true	"Fields to change"
//	@Success		200	{object}	Photo
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/photos/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ident, svc, ok := h.authed(w, r)
	if !ok {
		return
	}

	var upd Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	p, err := svc.Update(r.Context(), ident, chi.URLParam(r, "id"), upd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete a photo
//	@Description	Delete by record id (metadata mode) or storage key (bucket mode). The bucket object goes first, then the record.
//	@Tags			photos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Photo id or storage key"
//	@Success		200	{object}	messageResponse
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		403	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/photos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ident, svc, ok := h.authed(w, r)
	if !ok {
		return
	}

	// Wildcard param: bucket-mode keys contain slashes.
	idOrKey := chi.URLParam(r, "*")
	if idOrKey == "" {
		response.BadRequest(w, "missing photo id")
		return
	}

	if err := svc.Delete(r.Context(), ident, idOrKey); err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, messageResponse{Message: "Photo deleted successfully"})
}

// authed fetches the verified identity and the service, answering 503/401
// itself when either is missing.
func (h *Handler) authed(w http.ResponseWriter, r *http.Request) (auth.Identity, Service, bool) {
	if h.svc == nil {
		response.Unavailable(w, ErrStorageUnavailable.Error())
		return auth.Identity{}, nil, false
	}
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return auth.Identity{}, nil, false
	}
	return ident, h.svc, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrUnsupportedMediaType),
		errors.Is(err, storage.ErrPayloadTooLarge):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotOwned):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrStorageUnavailable),
		errors.Is(err, ErrMetadataUnavailable):
		response.Unavailable(w, err.Error())
	default:
		slog.Error("photo request failed", "err", err)
		response.InternalError(w)
	}
}

// fileFromHeader adapts a parsed multipart part into a File. The part is
// reopened lazily so batch validation can run before any data is read.
func fileFromHeader(fh *multipart.FileHeader) File {
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// pageParams parses page/limit query values with the original's defaults.
func pageParams(r *http.Request) (page, limit int) {
	page, limit = 1, DefaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, 100)
	}
	return page, limit
}
