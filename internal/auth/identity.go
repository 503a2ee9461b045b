package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// ErrInvalidToken is returned when the identity provider rejects a token.
var ErrInvalidToken = errors.New("invalid identity token")

// Identity is a verified external identity.
type Identity struct {
	ID         string
	Credential string
}

// Verifier verifies and revokes identity-provider credentials.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
	Revoke(ctx context.Context, credential string) error
}

// Google identity-provider endpoints.
const (
	GoogleTokenInfoURL = "https://www.googleapis.com/oauth2/v1/tokeninfo"
	GoogleRevokeURL    = "https://accounts.google.com/o/oauth2/revoke"
)

// maxProviderResponse bounds how much of a provider response is read.
const maxProviderResponse = 1 << 20

// GoogleVerifier checks access tokens against Google's tokeninfo endpoint.
type GoogleVerifier struct {
	ClientID     string
	TokenInfoURL string
	RevokeURL    string
	Client       *http.Client
}

// NewGoogleVerifier returns a verifier for tokens issued to clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID:     clientID,
		TokenInfoURL: GoogleTokenInfoURL,
		RevokeURL:    GoogleRevokeURL,
		Client:       http.DefaultClient,
	}
}

// Verify asks the provider about token and returns the identity it belongs to.
// The token must have been issued to the configured client ID.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	body, status, err := g.get(ctx, g.TokenInfoURL, url.Values{"access_token": {token}})
	if err != nil {
		return nil, fmt.Errorf("querying tokeninfo: %w", err)
	}

	if msg := gjson.GetBytes(body, "error"); msg.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, msg.String())
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo status %d", ErrInvalidToken, status)
	}

	userID := gjson.GetBytes(body, "user_id").String()
	if userID == "" {
		return nil, fmt.Errorf("%w: no user_id", ErrInvalidToken)
	}
	if issuedTo := gjson.GetBytes(body, "issued_to").String(); g.ClientID != "" && issuedTo != g.ClientID {
		return nil, fmt.Errorf("%w: token issued to %q", ErrInvalidToken, issuedTo)
	}

	return &Identity{ID: userID, Credential: token}, nil
}

// Revoke invalidates a credential at the provider.
func (g *GoogleVerifier) Revoke(ctx context.Context, credential string) error {
	_, status, err := g.get(ctx, g.RevokeURL, url.Values{"token": {credential}})
	if err != nil {
		return fmt.Errorf("revoking credential: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("revoking credential: status %d", status)
	}
	return nil
}

func (g *GoogleVerifier) get(ctx context.Context, endpoint string, query url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderResponse))
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}
