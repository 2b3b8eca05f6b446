package exports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
)

func (c Credentials) hasServiceAccount() bool {
	return strings.TrimSpace(c.JSON) != "" || strings.TrimSpace(c.File) != ""
}

func (c Credentials) hasOAuth() bool {
	return (strings.TrimSpace(c.OAuthClientJSON) != "" || strings.TrimSpace(c.OAuthClientFile) != "") &&
		strings.TrimSpace(c.OAuthTokenFile) != ""
}

// OAuthConfig builds the installed-app OAuth client config for scopes.
func (c Credentials) OAuthConfig(scopes ...string) (*oauth2.Config, error) {
	var b []byte
	switch {
	case strings.TrimSpace(c.OAuthClientJSON) != "":
		b = []byte(c.OAuthClientJSON)
	case strings.TrimSpace(c.OAuthClientFile) != "":
		var err error
		if b, err = os.ReadFile(c.OAuthClientFile); err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, errors.New("missing oauth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}
	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return cfg, nil
}

// clientOption picks the service account key when present, else a user
// token refreshed through the OAuth client.
func (c Credentials) clientOption(ctx context.Context, scopes ...string) (goption.ClientOption, error) {
	if c.hasServiceAccount() || !c.hasOAuth() {
		key, err := c.load()
		if err != nil {
			return nil, err
		}
		return goption.WithCredentialsJSON(key), nil
	}

	cfg, err := c.OAuthConfig(scopes...)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(c.OAuthTokenFile)
	if err != nil {
		return nil, err
	}
	return goption.WithTokenSource(cfg.TokenSource(ctx, tok)), nil
}

// LoadToken reads a token saved by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", path, err)
	}
	return tok, nil
}

// SaveToken writes tok as JSON, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("write token: %w", err)
	}
	return f.Close()
}
