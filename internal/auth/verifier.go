// Package auth verifies bearer tokens and manages credential-based sign-in.
//
// Two mutually exclusive verification strategies exist: ProviderVerifier
// delegates to a managed identity provider's userinfo endpoint, and
// LocalVerifier checks an HS256 signature against a shared secret and
// resolves the subject to a local account. Deployment picks one at start-up.
package auth

import (
	"context"
	"errors"
)

// Identity is the verified caller, re-derived per request and never
// persisted by the request path. SubjectID is stable per user and is the
// sole basis for ownership scoping in bucket-only mode.
type Identity struct {
	SubjectID string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// ErrMissingToken is returned when no bearer token was presented.
var ErrMissingToken = errors.New("access token required")

// ErrInvalidToken is returned when the token is malformed, forged, or expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrInactiveUser is returned when the resolved account is disabled.
var ErrInactiveUser = errors.New("user account is inactive")

// ErrVerificationUnavailable is returned when the verification backend
// failed for reasons unrelated to the token itself.
var ErrVerificationUnavailable = errors.New("token verification unavailable")

// Verifier turns a bearer token into a verified Identity. Implementations
// must be side-effect-free: verification never mutates caller state.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
