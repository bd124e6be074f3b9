package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/store2s3/service/internal/auth"
	"github.com/store2s3/service/internal/response"
)

// RequireAuth returns middleware that verifies a Bearer token with the
// given verifier and injects the resulting identity into the request
// context. A nil verifier means no auth backend is configured; protected
// routes then answer 503 rather than letting requests through anonymously.
func RequireAuth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				response.Unavailable(w, "authentication backend not configured")
				return
			}

			token, err := bearerToken(r)
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			ident, err := verifier.Verify(r.Context(), token)
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrMissingToken),
				errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrInactiveUser):
				response.Unauthorized(w, err.Error())
				return
			default:
				slog.Error("token verification failed", "err", err)
				response.Error(w, http.StatusInternalServerError, "authentication failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), ident)))
		})
	}
}

// OptionalAuth verifies a Bearer token when one is presented and continues
// anonymously otherwise. A presented-but-bad token is still rejected.
func OptionalAuth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil || r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			RequireAuth(verifier)(next).ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", auth.ErrMissingToken
	}
	return parts[1], nil
}
