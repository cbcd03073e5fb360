package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/mail"
)

// tokenFileMode keeps the cached token readable by its owner only.
const tokenFileMode = 0o600

// Authenticator manages the OAuth client credentials and the cached token
// of the mail account.
type Authenticator struct {
	credentialsFile string
	tokenFile       string
	scopes          []string
	logger          *slog.Logger

	// clientOptions are appended to every service created by Service.
	clientOptions []option.ClientOption
}

// NewAuthenticator creates an authenticator for cfg.
func NewAuthenticator(cfg *config.MailConfig, opts ...option.ClientOption) *Authenticator {
	return &Authenticator{
		credentialsFile: cfg.CredentialsFile,
		tokenFile:       cfg.TokenFile,
		scopes:          cfg.Scopes,
		logger:          slog.Default().With("component", "gmail_auth"),
		clientOptions:   opts,
	}
}

// OAuthConfig reads the client credentials file.
func (a *Authenticator) OAuthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(a.credentialsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &mail.NotAuthorizedError{
				Reason: fmt.Sprintf("credentials file %q not found", a.credentialsFile),
			}
		}
		return nil, fmt.Errorf("failed to read credentials file %q: %w", a.credentialsFile, err)
	}

	cfg, err := google.ConfigFromJSON(data, a.scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials file %q: %w", a.credentialsFile, err)
	}
	return cfg, nil
}

// AuthCodeURL returns the consent page URL. Offline access makes Google
// issue a refresh token.
func (a *Authenticator) AuthCodeURL(state string) (string, error) {
	cfg, err := a.OAuthConfig()
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades an authorization code for a token and caches it.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	cfg, err := a.OAuthConfig()
	if err != nil {
		return nil, err
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := a.SaveToken(tok); err != nil {
		return nil, err
	}

	a.logger.Info("oauth token saved", "token_file", a.tokenFile)
	return tok, nil
}

// Token loads the cached token.
func (a *Authenticator) Token() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.tokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &mail.NotAuthorizedError{Reason: "no saved token"}
		}
		return nil, fmt.Errorf("failed to read token file %q: %w", a.tokenFile, err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, &mail.NotAuthorizedError{Reason: "token file is corrupt", Cause: err}
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, &mail.NotAuthorizedError{Reason: "token file has no credentials"}
	}
	return tok, nil
}

// SaveToken writes tok to the token file with owner-only permissions.
func (a *Authenticator) SaveToken(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if dir := filepath.Dir(a.tokenFile); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	if err := os.WriteFile(a.tokenFile, data, tokenFileMode); err != nil {
		return fmt.Errorf("failed to write token file %q: %w", a.tokenFile, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(a.tokenFile, tokenFileMode); err != nil {
		return fmt.Errorf("failed to restrict token file %q: %w", a.tokenFile, err)
	}
	return nil
}

// Service opens the Gmail API service with the cached token. The token is
// refreshed by the oauth2 transport as needed; the transport outlives ctx.
func (a *Authenticator) Service(ctx context.Context) (*gmailapi.Service, error) {
	cfg, err := a.OAuthConfig()
	if err != nil {
		return nil, err
	}
	tok, err := a.Token()
	if err != nil {
		return nil, err
	}

	httpClient := cfg.Client(context.WithoutCancel(ctx), tok)
	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, a.clientOptions...)

	svc, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return svc, nil
}
