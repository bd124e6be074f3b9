package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func providerServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestProviderVerifier_Valid(t *testing.T) {
	srv := providerServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"abc","username":"jane","email":"jane@example.com"}`))
	})

	v := NewProviderVerifier(srv.URL, srv.Client())
	ident, err := v.Verify(context.Background(), "tok-123")
	assert.NoError(t, err)
	assert.Equal(t, Identity{SubjectID: "abc", Username: "jane", Email: "jane@example.com"}, ident)
}

func TestProviderVerifier_UsernameFallsBackToEmail(t *testing.T) {
	srv := providerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"sub":"abc","email":"jane@example.com"}`))
	})

	v := NewProviderVerifier(srv.URL, srv.Client())
	ident, err := v.Verify(context.Background(), "tok")
	assert.NoError(t, err)
	assert.Equal(t, "jane@example.com", ident.Username)
}

func TestProviderVerifier_EmptyToken(t *testing.T) {
	v := NewProviderVerifier("http://unused.test", nil)
	_, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestProviderVerifier_Rejected(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := providerServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})

		v := NewProviderVerifier(srv.URL, srv.Client())
		_, err := v.Verify(context.Background(), "expired")
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestProviderVerifier_ProviderDown(t *testing.T) {
	srv := providerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	v := NewProviderVerifier(srv.URL, srv.Client())
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
}

func TestProviderVerifier_MissingSubject(t *testing.T) {
	srv := providerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"username":"jane"}`))
	})

	v := NewProviderVerifier(srv.URL, srv.Client())
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
}

func TestProviderVerifier_Unreachable(t *testing.T) {
	srv := providerServer(t, func(w http.ResponseWriter, _ *http.Request) {})
	srv.Close()

	v := NewProviderVerifier(srv.URL, nil)
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
}
