package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/mail"
)

func writeCredentials(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	path := filepath.Join(dir, "credentials.json")
	creds := fmt.Sprintf(`{"installed":{
		"client_id":"client-123.apps.googleusercontent.com",
		"client_secret":"secret",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth",
		"token_uri":%q,
		"redirect_uris":["http://localhost"]
	}}`, tokenURL)
	if err := os.WriteFile(path, []byte(creds), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	return path
}

func testAuthConfig(dir, credentials string) *config.MailConfig {
	return &config.MailConfig{
		CredentialsFile: credentials,
		TokenFile:       filepath.Join(dir, "token.json"),
		Scopes:          []string{gmailapi.GmailModifyScope},
		UserID:          "me",
		MaxResults:      5,
	}
}

func TestAuthenticator_MissingCredentials(t *testing.T) {
	dir := t.TempDir()
	auth := NewAuthenticator(testAuthConfig(dir, filepath.Join(dir, "absent.json")))

	_, err := auth.AuthCodeURL("state")
	var notAuth *mail.NotAuthorizedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("error = %v, want *mail.NotAuthorizedError", err)
	}

	if _, err := auth.Service(context.Background()); !errors.As(err, &notAuth) {
		t.Errorf("Service() error = %v, want *mail.NotAuthorizedError", err)
	}
}

func TestAuthenticator_InvalidCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(path, []byte(`{"other":{}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	auth := NewAuthenticator(testAuthConfig(dir, path))

	_, err := auth.OAuthConfig()
	if err == nil {
		t.Fatal("expected error for credentials without a client section")
	}
	var notAuth *mail.NotAuthorizedError
	if errors.As(err, &notAuth) {
		t.Errorf("malformed credentials reported as not authorized: %v", err)
	}
}

func TestAuthenticator_AuthCodeURL(t *testing.T) {
	dir := t.TempDir()
	auth := NewAuthenticator(testAuthConfig(dir, writeCredentials(t, dir, "https://oauth2.googleapis.com/token")))

	raw, err := auth.AuthCodeURL("state-1")
	if err != nil {
		t.Fatalf("AuthCodeURL() error = %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	q := u.Query()
	checks := map[string]string{
		"access_type":  "offline",
		"client_id":    "client-123.apps.googleusercontent.com",
		"state":        "state-1",
		"scope":        gmailapi.GmailModifyScope,
		"redirect_uri": "http://localhost",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestAuthenticator_MissingToken(t *testing.T) {
	dir := t.TempDir()
	auth := NewAuthenticator(testAuthConfig(dir, writeCredentials(t, dir, "https://oauth2.googleapis.com/token")))

	_, err := auth.Token()
	var notAuth *mail.NotAuthorizedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("error = %v, want *mail.NotAuthorizedError", err)
	}
	if notAuth.Reason != "no saved token" {
		t.Errorf("Reason = %q", notAuth.Reason)
	}
}

func TestAuthenticator_CorruptToken(t *testing.T) {
	dir := t.TempDir()
	cfg := testAuthConfig(dir, writeCredentials(t, dir, "https://oauth2.googleapis.com/token"))
	if err := os.WriteFile(cfg.TokenFile, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewAuthenticator(cfg).Token()
	var notAuth *mail.NotAuthorizedError
	if !errors.As(err, &notAuth) {
		t.Errorf("error = %v, want *mail.NotAuthorizedError", err)
	}
}

func TestAuthenticator_Exchange(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("code") != "auth-code" {
			t.Errorf("code = %q, want auth-code", r.Form.Get("code"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer tokenSrv.Close()

	dir := t.TempDir()
	cfg := testAuthConfig(dir, writeCredentials(t, dir, tokenSrv.URL))
	auth := NewAuthenticator(cfg)

	tok, err := auth.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if tok.AccessToken != "access-1" || tok.RefreshToken != "refresh-1" {
		t.Errorf("token = %+v", tok)
	}

	info, err := os.Stat(cfg.TokenFile)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	loaded, err := auth.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if loaded.RefreshToken != "refresh-1" {
		t.Errorf("loaded refresh token = %q, want refresh-1", loaded.RefreshToken)
	}
}

func TestAuthenticator_SaveTokenTightensMode(t *testing.T) {
	dir := t.TempDir()
	cfg := testAuthConfig(dir, "")
	if err := os.WriteFile(cfg.TokenFile, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewAuthenticator(cfg).SaveToken(&oauth2.Token{AccessToken: "a"}); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	info, err := os.Stat(cfg.TokenFile)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}
}

func TestAuthenticator_Service(t *testing.T) {
	api := newFakeAPI(budgetThread())
	var gotAuth string
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		api.handler().ServeHTTP(w, r)
	}))
	defer apiSrv.Close()

	dir := t.TempDir()
	cfg := testAuthConfig(dir, writeCredentials(t, dir, "https://oauth2.googleapis.com/token"))
	auth := NewAuthenticator(cfg, option.WithEndpoint(apiSrv.URL+"/"))
	if err := auth.SaveToken(&oauth2.Token{
		AccessToken: "access-1",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	client := NewClient(cfg, auth.Service, nil)
	thread, err := client.GetThread(context.Background(), "t-2")
	if err != nil {
		t.Fatalf("GetThread() error = %v", err)
	}
	if thread.Messages[0].Body != "See the numbers." {
		t.Errorf("body = %q", thread.Messages[0].Body)
	}
	if gotAuth != "Bearer access-1" {
		t.Errorf("Authorization = %q, want Bearer access-1", gotAuth)
	}
}
