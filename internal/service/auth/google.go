package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/inkwell/inkwell/pkg/crypto"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the externally verified identity returned by the provider.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Exchanger turns an authorization code into a verified profile.
type Exchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (Profile, error)
}

// GoogleExchanger implements Exchanger against Google's OAuth endpoints.
type GoogleExchanger struct {
	oauth *oauth2.Config
}

// NewGoogleExchanger configures the Google consent and token endpoints.
func NewGoogleExchanger(clientID, clientSecret, redirectURL string) *GoogleExchanger {
	return &GoogleExchanger{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL builds the consent-screen redirect target.
func (g *GoogleExchanger) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Exchange swaps the authorization code for an access token and fetches
// the userinfo document.
func (g *GoogleExchanger) Exchange(ctx context.Context, code string) (Profile, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	resp, err := g.oauth.Client(ctx, tok).Get(userinfoURL)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}
	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return profile, nil
}

// NewState seals the current time into an opaque CSRF state value. The
// random AES-GCM nonce makes each value unique.
func NewState(secret string) (string, error) {
	payload := time.Now().UTC().Format(time.RFC3339Nano)
	sealed, err := crypto.Seal(secret, []byte(payload))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// VerifyState checks that state was issued by this process within maxAge.
func VerifyState(secret, state string, maxAge time.Duration) error {
	sealed, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	plain, err := crypto.Open(secret, sealed)
	if err != nil {
		return fmt.Errorf("unseal state: %w", err)
	}
	issued, err := time.Parse(time.RFC3339Nano, string(plain))
	if err != nil {
		return fmt.Errorf("parse state timestamp: %w", err)
	}
	age := time.Since(issued)
	if age < 0 || age > maxAge {
		return fmt.Errorf("state expired")
	}
	return nil
}
