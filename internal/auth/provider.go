package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ProviderVerifier delegates verification to a managed identity provider's
// "get user for access token" endpoint and maps the returned attributes
// into an Identity.
type ProviderVerifier struct {
	userinfoURL string
	client      *http.Client
}

// NewProviderVerifier creates a ProviderVerifier for the given userinfo
// endpoint. A nil client falls back to a default with a modest timeout.
func NewProviderVerifier(userinfoURL string, client *http.Client) *ProviderVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ProviderVerifier{userinfoURL: userinfoURL, client: client}
}

// providerUser is the provider's user-attribute payload. Field names follow
// the OIDC userinfo claims.
type providerUser struct {
	Sub      string `json:"sub"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Verify presents the token to the provider and maps the result.
func (v *ProviderVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userinfoURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Identity{}, ErrInvalidToken
	default:
		return Identity{}, fmt.Errorf("%w: provider returned status %d", ErrVerificationUnavailable, resp.StatusCode)
	}

	var pu providerUser
	if err := json.NewDecoder(resp.Body).Decode(&pu); err != nil {
		return Identity{}, fmt.Errorf("%w: decode userinfo: %v", ErrVerificationUnavailable, err)
	}
	if pu.Sub == "" {
		return Identity{}, fmt.Errorf("%w: userinfo missing subject", ErrVerificationUnavailable)
	}

	username := pu.Username
	if username == "" {
		username = pu.Email
	}
	return Identity{SubjectID: pu.Sub, Username: username, Email: pu.Email}, nil
}
