package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/store2s3/service/internal/auth"
)

// stubVerifier accepts a single known token.
type stubVerifier struct {
	token string
	ident auth.Identity
	err   error
}

func (s *stubVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	if s.err != nil {
		return auth.Identity{}, s.err
	}
	if token != s.token {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return s.ident, nil
}

func echoIdentity(t *testing.T, sawIdentity *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := auth.IdentityFrom(r.Context())
		*sawIdentity = ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_Valid(t *testing.T) {
	var sawIdentity bool
	v := &stubVerifier{token: "tok", ident: auth.Identity{SubjectID: "u1"}}
	h := RequireAuth(v)(echoIdentity(t, &sawIdentity))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawIdentity)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	var sawIdentity bool
	h := RequireAuth(&stubVerifier{token: "tok"})(echoIdentity(t, &sawIdentity))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, sawIdentity)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	var sawIdentity bool
	h := RequireAuth(&stubVerifier{token: "tok"})(echoIdentity(t, &sawIdentity))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	var sawIdentity bool
	h := RequireAuth(&stubVerifier{token: "tok"})(echoIdentity(t, &sawIdentity))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_VerifierUnavailable(t *testing.T) {
	var sawIdentity bool
	h := RequireAuth(&stubVerifier{err: auth.ErrVerificationUnavailable})(echoIdentity(t, &sawIdentity))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAuth_NoBackendConfigured(t *testing.T) {
	var sawIdentity bool
	h := RequireAuth(nil)(echoIdentity(t, &sawIdentity))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOptionalAuth_Anonymous(t *testing.T) {
	var sawIdentity bool
	h := OptionalAuth(&stubVerifier{token: "tok"})(echoIdentity(t, &sawIdentity))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sawIdentity)
}

func TestOptionalAuth_WithToken(t *testing.T) {
	var sawIdentity bool
	v := &stubVerifier{token: "tok", ident: auth.Identity{SubjectID: "u1"}}
	h := OptionalAuth(v)(echoIdentity(t, &sawIdentity))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawIdentity)
}

func TestOptionalAuth_BadTokenStillRejected(t *testing.T) {
	var sawIdentity bool
	h := OptionalAuth(&stubVerifier{token: "tok"})(echoIdentity(t, &sawIdentity))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
