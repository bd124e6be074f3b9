package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/store2s3/service/internal/user"
)

// UserSource resolves token subjects to accounts. Satisfied by *user.Repository.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// LocalVerifier validates HS256 tokens signed with a shared secret and
// resolves the subject claim against the user store.
type LocalVerifier struct {
	secret []byte
	users  UserSource
}

// NewLocalVerifier creates a LocalVerifier.
func NewLocalVerifier(secret string, users UserSource) *LocalVerifier {
	return &LocalVerifier{secret: []byte(secret), users: users}
}

// Verify checks the token signature and expiry, then loads the account.
func (v *LocalVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, ErrInvalidToken
	}

	u, err := v.users.GetByID(ctx, sub)
	if errors.Is(err, user.ErrNotFound) {
		return Identity{}, ErrInvalidToken
	}
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	if !u.IsActive {
		return Identity{}, ErrInactiveUser
	}

	return Identity{SubjectID: u.ID, Username: u.Username, Email: u.Email}, nil
}
