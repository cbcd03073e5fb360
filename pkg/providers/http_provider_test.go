package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, url string, retries int) *HTTPProvider {
	t.Helper()
	p := NewHTTPProvider(ProviderConfig{
		Name:       "test-provider",
		Type:       "openai",
		BaseURL:    url,
		Timeout:    5 * time.Second,
		MaxRetries: retries,
	})
	p.SetRetryBaseDelay(time.Millisecond)
	return p
}

func TestHTTPProvider_RetryOn5xx(t *testing.T) {
	attemptCount := int32(0)

	// Fails twice with 500, then succeeds
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&attemptCount, 1)
		if count <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "internal server error"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "success"}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL, 3)

	resp, err := provider.DoRequest(context.Background(), "POST", server.URL+"/test", []byte(`{"test": true}`), nil)
	if err != nil {
		t.Fatalf("expected request to succeed after retries, got error: %v", err)
	}
	defer resp.Body.Close()

	if got := atomic.LoadInt32(&attemptCount); got != 3 {
		t.Errorf("expected 3 attempts (2 retries), got %d", got)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if !provider.IsHealthy() {
		t.Error("expected provider to be healthy after successful retry")
	}
}

func TestHTTPProvider_NoRetryOn4xx(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		check      func(error) bool
	}{
		{
			name:       "400 bad request",
			statusCode: http.StatusBadRequest,
			check: func(err error) bool {
				var pe *ProviderError
				return errors.As(err, &pe) && pe.StatusCode == http.StatusBadRequest
			},
		},
		{
			name:       "401 unauthorized",
			statusCode: http.StatusUnauthorized,
			check: func(err error) bool {
				var ae *AuthError
				return errors.As(err, &ae)
			},
		},
		{
			name:       "403 forbidden",
			statusCode: http.StatusForbidden,
			check: func(err error) bool {
				var ae *AuthError
				return errors.As(err, &ae)
			},
		},
		{
			name:       "404 not found",
			statusCode: http.StatusNotFound,
			check: func(err error) bool {
				var pe *ProviderError
				return errors.As(err, &pe) && pe.StatusCode == http.StatusNotFound
			},
		},
		{
			name:       "429 rate limit",
			statusCode: http.StatusTooManyRequests,
			check: func(err error) bool {
				var re *RateLimitError
				return errors.As(err, &re) && re.RetryAfter == 7*time.Second
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attemptCount := int32(0)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attemptCount, 1)
				w.Header().Set("Retry-After", "7")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"error": "client error"}`))
			}))
			defer server.Close()

			provider := newTestProvider(t, server.URL, 3)

			resp, err := provider.DoRequest(context.Background(), "POST", server.URL+"/test", []byte(`{}`), nil)
			if resp != nil {
				resp.Body.Close()
			}
			if err == nil {
				t.Fatalf("expected error for %d status, got nil", tt.statusCode)
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
			if got := atomic.LoadInt32(&attemptCount); got != 1 {
				t.Errorf("expected 1 attempt (no retries for 4xx), got %d", got)
			}
		})
	}
}

func TestHTTPProvider_RetriesExhausted(t *testing.T) {
	attemptCount := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL, 2)

	_, err := provider.DoRequest(context.Background(), "GET", server.URL, nil, nil)
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected ProviderError with 502, got %v", err)
	}
	if got := atomic.LoadInt32(&attemptCount); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}

	health := provider.GetHealth()
	if health.TotalRequests != 3 || health.FailedRequests != 3 {
		t.Errorf("expected 3 total and 3 failed requests, got %d and %d", health.TotalRequests, health.FailedRequests)
	}
}

func TestHTTPProvider_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := provider.DoRequest(ctx, "GET", server.URL, nil, nil)
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took too long: %s", elapsed)
	}
}

func TestHTTPProvider_StreamRequestSingleAttempt(t *testing.T) {
	attemptCount := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL, 3)

	_, err := provider.DoStreamRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&attemptCount); got != 1 {
		t.Errorf("streams must not be retried, got %d attempts", got)
	}
}

func TestHTTPProvider_StreamRequestHeaders(t *testing.T) {
	var gotAuth, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL, 0)

	resp, err := provider.DoStreamRequest(context.Background(), "POST", server.URL, []byte(`{}`),
		map[string]string{"Authorization": "Bearer sk-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotType)
	}
	if string(body) != "data: [DONE]\n\n" {
		t.Errorf("body = %q", body)
	}
}

func TestHTTPProvider_HealthTracking(t *testing.T) {
	fail := int32(1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&fail) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL, 0)
	ctx := context.Background()

	for i := 0; i < unhealthyThreshold-1; i++ {
		_ = provider.CheckModels(ctx, nil)
	}
	if !provider.IsHealthy() {
		t.Fatal("provider should stay healthy below the failure threshold")
	}

	_ = provider.CheckModels(ctx, nil)
	if provider.IsHealthy() {
		t.Fatal("provider should be unhealthy after reaching the failure threshold")
	}
	if provider.GetHealth().LastError == nil {
		t.Error("expected LastError to be recorded")
	}

	atomic.StoreInt32(&fail, 0)
	if err := provider.CheckModels(ctx, nil); err != nil {
		t.Fatalf("CheckModels() error = %v", err)
	}
	if !provider.IsHealthy() {
		t.Error("a successful request should restore health")
	}
	if provider.GetHealth().ConsecutiveFailures != 0 {
		t.Error("consecutive failures should reset")
	}
}

func TestHTTPProvider_CheckModelsPath(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL+"/v1/", 0)
	if err := provider.CheckModels(context.Background(), nil); err != nil {
		t.Fatalf("CheckModels() error = %v", err)
	}
	if gotMethod != http.MethodGet || gotPath != "/v1/models" {
		t.Errorf("got %s %s, want GET /v1/models", gotMethod, gotPath)
	}
}

func TestHTTPProvider_DoJSONRequestParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL, 0)

	var out map[string]any
	err := provider.DoJSONRequest(context.Background(), "POST", server.URL, map[string]string{"a": "b"}, &out, nil)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
	if pe.RawResponse != "not json" {
		t.Errorf("RawResponse = %q", pe.RawResponse)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"30", 30 * time.Second},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.header); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", tt.header, got, tt.want)
		}
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	if !errors.Is(&ProviderError{Provider: "p", Cause: cause}, cause) {
		t.Error("ProviderError should unwrap to its cause")
	}
	if !errors.Is(&TimeoutError{Provider: "p", Cause: context.DeadlineExceeded}, context.DeadlineExceeded) {
		t.Error("TimeoutError should unwrap to its cause")
	}
	if !errors.Is(&StreamError{Provider: "p", Message: "m", Cause: cause}, cause) {
		t.Error("StreamError should unwrap to its cause")
	}

	got := (&ProviderError{Provider: "hosted", StatusCode: 500, Message: "down"}).Error()
	if got != `provider "hosted" error (status 500): down` {
		t.Errorf("ProviderError.Error() = %q", got)
	}
	got = (&ConfigError{Provider: "hosted", Field: "api_key", Message: "missing"}).Error()
	if got != `provider "hosted" configuration error for field "api_key": missing` {
		t.Errorf("ConfigError.Error() = %q", got)
	}
}
