package logging

import (
	"log/slog"
	"testing"

	"mercator-hq/tonecoach/pkg/config"
)

func TestNewRedactor(t *testing.T) {
	tests := []struct {
		name           string
		customPatterns []config.RedactPattern
		wantPatterns   int
	}{
		{name: "default patterns only", wantPatterns: 4},
		{
			name: "with custom patterns",
			customPatterns: []config.RedactPattern{
				{Name: "gmail_draft", Pattern: `r-[0-9]{6,}`, Replacement: "r-***"},
			},
			wantPatterns: 5,
		},
		{
			name: "invalid custom pattern is skipped",
			customPatterns: []config.RedactPattern{
				{Name: "invalid", Pattern: "[unclosed", Replacement: "***"},
			},
			wantPatterns: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redactor := NewRedactor(tt.customPatterns)
			if len(redactor.patterns) != tt.wantPatterns {
				t.Errorf("patterns = %d, want %d", len(redactor.patterns), tt.wantPatterns)
			}
		})
	}
}

func TestRedactor_RedactString(t *testing.T) {
	redactor := NewRedactor([]config.RedactPattern{
		{Name: "draft_id", Pattern: `r-[0-9]{6,}`, Replacement: "r-***"},
	})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "openai key", input: "key=sk-proj-abc123DEF", want: "key=sk-***"},
		{name: "bearer token", input: "Authorization: Bearer sk-abc123", want: "Authorization: Bearer ***"},
		{name: "email", input: "reply to dana.lee@example.co.uk", want: "reply to d***@example.co.uk"},
		{name: "two emails", input: "a@x.io, bob@y.io", want: "a***@x.io, b***@y.io"},
		{name: "password", input: "password=hunter2 ok", want: "password: *** ok"},
		{name: "custom pattern", input: "draft r-1234567", want: "draft r-***"},
		{name: "plain text untouched", input: "draft created in 1.2s", want: "draft created in 1.2s"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_RedactAttr(t *testing.T) {
	redactor := NewRedactor(nil)

	tests := []struct {
		name string
		attr slog.Attr
		want slog.Value
	}{
		{name: "sensitive key masks string", attr: slog.String("api_key", "abcdefgh"), want: slog.StringValue("abcd***")},
		{name: "sensitive key masks short string", attr: slog.String("token", "abc"), want: slog.StringValue("***")},
		{name: "sensitive key masks non-string", attr: slog.Int("secret", 42), want: slog.StringValue("***")},
		{name: "token counter kept", attr: slog.Int("completion_tokens", 7), want: slog.IntValue(7)},
		{name: "plain string", attr: slog.String("model", "gpt-4o"), want: slog.StringValue("gpt-4o")},
		{name: "number untouched", attr: slog.Float64("cost_usd", 0.5), want: slog.Float64Value(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactor.RedactAttr(tt.attr)
			if got.Key != tt.attr.Key {
				t.Errorf("Key = %q, want %q", got.Key, tt.attr.Key)
			}
			if !got.Value.Equal(tt.want) {
				t.Errorf("Value = %v, want %v", got.Value, tt.want)
			}
		})
	}
}

func TestRedactEmail(t *testing.T) {
	tests := map[string]string{
		"dana@example.com": "d***@example.com",
		"@example.com":     "***@example.com",
		"not-an-email":     "not-an-email",
	}
	for in, want := range tests {
		if got := RedactEmail(in); got != want {
			t.Errorf("RedactEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedactAPIKey(t *testing.T) {
	if got := RedactAPIKey("sk-1234567"); got != "sk-1***" {
		t.Errorf("RedactAPIKey() = %q", got)
	}
	if got := RedactAPIKey("abc"); got != "***" {
		t.Errorf("RedactAPIKey(short) = %q", got)
	}
}
