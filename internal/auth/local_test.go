package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/store2s3/service/internal/user"
)

const testSecret = "test-secret"

// fakeUsers is an in-memory UserSource.
type fakeUsers struct {
	byID map[string]*user.User
	err  error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func activeUser() *user.User {
	return &user.User{ID: "u1", Username: "jane", Email: "jane@example.com", IsActive: true}
}

func TestLocalVerifier_Valid(t *testing.T) {
	v := NewLocalVerifier(testSecret, &fakeUsers{byID: map[string]*user.User{"u1": activeUser()}})
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	ident, err := v.Verify(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, Identity{SubjectID: "u1", Username: "jane", Email: "jane@example.com"}, ident)
}

func TestLocalVerifier_EmptyToken(t *testing.T) {
	v := NewLocalVerifier(testSecret, &fakeUsers{})
	_, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestLocalVerifier_WrongSecret(t *testing.T) {
	v := NewLocalVerifier(testSecret, &fakeUsers{byID: map[string]*user.User{"u1": activeUser()}})
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalVerifier_Expired(t *testing.T) {
	v := NewLocalVerifier(testSecret, &fakeUsers{byID: map[string]*user.User{"u1": activeUser()}})
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalVerifier_MissingSubject(t *testing.T) {
	v := NewLocalVerifier(testSecret, &fakeUsers{})
	token := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalVerifier_UnknownUser(t *testing.T) {
	v := NewLocalVerifier(testSecret, &fakeUsers{byID: map[string]*user.User{}})
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "ghost",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalVerifier_InactiveUser(t *testing.T) {
	u := activeUser()
	u.IsActive = false
	v := NewLocalVerifier(testSecret, &fakeUsers{byID: map[string]*user.User{"u1": u}})
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestLocalVerifier_StoreFailure(t *testing.T) {
	v := NewLocalVerifier(testSecret, &fakeUsers{err: assert.AnError})
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
}
