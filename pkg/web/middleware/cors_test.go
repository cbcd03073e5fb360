package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/tonecoach/pkg/config"
)

func TestCORSMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	t.Run("adds CORS headers for allowed origin", func(t *testing.T) {
		cfg := config.CORSConfig{Enabled: true, AllowedOrigins: []string{"https://example.com"}}

		req := httptest.NewRequest(http.MethodGet, "/api/threads", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		CORSMiddleware(cfg)(handler).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Expose-Headers"); got != RequestIDHeader {
			t.Errorf("Access-Control-Expose-Headers = %q", got)
		}
	})

	t.Run("rejects unknown origin", func(t *testing.T) {
		cfg := config.CORSConfig{Enabled: true, AllowedOrigins: []string{"https://example.com"}}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		CORSMiddleware(cfg)(handler).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want none", got)
		}
	})

	t.Run("allows all origins with wildcard", func(t *testing.T) {
		cfg := config.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://any-origin.com")
		w := httptest.NewRecorder()
		CORSMiddleware(cfg)(handler).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
		}
	})

	t.Run("handles preflight OPTIONS request", func(t *testing.T) {
		cfg := config.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}, MaxAge: 3600}

		req := httptest.NewRequest(http.MethodOptions, "/coach", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		CORSMiddleware(cfg)(handler).ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusNoContent)
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
			t.Errorf("Access-Control-Max-Age = %q, want 3600", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
			t.Errorf("Access-Control-Allow-Methods = %q", got)
		}
	})

	t.Run("disabled passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		CORSMiddleware(config.CORSConfig{})(handler).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want none when disabled", got)
		}
		if w.Body.String() != "OK" {
			t.Errorf("body = %q", w.Body.String())
		}
	})
}
