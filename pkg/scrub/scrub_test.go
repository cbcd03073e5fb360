package scrub

import (
	"strings"
	"testing"
)

func TestFormatting(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple tags",
			input: "Hello <b>World</b>",
			want:  "Hello World",
		},
		{
			name:  "bracketed email survives",
			input: "Contact <john@doe.com> for info",
			want:  "Contact <john@doe.com> for info",
		},
		{
			name:  "attributes and self closing",
			input: `<p class="x">Line<br/>next <img src="a.png" alt="pic" /></p>`,
			want:  "Linenext ",
		},
		{
			name:  "comparison operators untouched",
			input: "if a < b and c > d",
			want:  "if a < b and c > d",
		},
		{
			name:  "inequality prose with punctuation untouched",
			input: "if a<b, then c>d",
			want:  "if a<b, then c>d",
		},
		{
			name:  "arithmetic between brackets untouched",
			input: "x<y + z>w",
			want:  "x<y + z>w",
		},
		{
			name:  "spaced bracketed address untouched",
			input: "<john @doe.com>",
			want:  "<john @doe.com>",
		},
		{
			name:  "bare words in brackets have tag shape",
			input: "if a<b and c>d then",
			want:  "if ad then",
		},
		{
			name:  "boolean and unquoted attributes",
			input: "<input type=checkbox checked>x",
			want:  "x",
		},
		{
			name:  "digit after bracket untouched",
			input: "<3 you",
			want:  "<3 you",
		},
		{
			name:  "nested tag fragments",
			input: "<<b>b>bold</b>",
			want:  "bold",
		},
		{
			name:  "three newlines collapse",
			input: "a\n\n\nb",
			want:  "a\n\nb",
		},
		{
			name:  "long newline run collapses",
			input: "a\n\n\n\n\n\nb",
			want:  "a\n\nb",
		},
		{
			name:  "paragraph break kept",
			input: "a\n\nb\nc",
			want:  "a\n\nb\nc",
		},
		{
			name:  "tag removal exposes newline run",
			input: "a\n<div>\n</div>\nb",
			want:  "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Formatting(tt.input); got != tt.want {
				t.Errorf("Formatting(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatting_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello <b>World</b>",
		"<<b>b>x\n\n\n\ny",
		"<div>\n\n</div>\n\n\n<p>z</p>",
		"Contact <john@doe.com>\n\n\n\n",
		"<a href='x'>link</a> < not a tag >",
		"",
	}

	for _, in := range inputs {
		once := Formatting(in)
		twice := Formatting(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
		if strings.Contains(once, "\n\n\n") {
			t.Errorf("newline run left in %q", once)
		}
	}
}

func TestLinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single link",
			input: "https://linkedin.com/long/path?query=123",
			want:  "linkedin.com",
		},
		{
			name:  "two links with trailing period",
			input: "Visit https://linkedin.com/long/path?query=123 and http://example.org/foo.",
			want:  "Visit linkedin.com and example.org.",
		},
		{
			name:  "trailing comma and paren",
			input: "(see https://example.com/a),",
			want:  "(see example.com),",
		},
		{
			name:  "port kept with host",
			input: "http://localhost:8080/x",
			want:  "localhost:8080",
		},
		{
			name:  "uppercase scheme",
			input: "HTTPS://Example.com/Path",
			want:  "Example.com",
		},
		{
			name:  "no host left alone",
			input: "broken https:// link",
			want:  "broken https:// link",
		},
		{
			name:  "unparseable left alone",
			input: "bad http://[::1 here",
			want:  "bad http://[::1 here",
		},
		{
			name:  "link inside a token untouched",
			input: "go=https://a.com/x now",
			want:  "go=https://a.com/x now",
		},
		{
			name:  "link after newline and tab",
			input: "see\nhttps://a.com/x\thttps://b.org/y",
			want:  "see\na.com\tb.org",
		},
		{
			name:  "user info dropped",
			input: "https://u:p@h.com:8080/x",
			want:  "h.com:8080",
		},
		{
			name:  "plain text untouched",
			input: "no links, just text.",
			want:  "no links, just text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Links(tt.input); got != tt.want {
				t.Errorf("Links(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	input := "<p>Hi <b>there</b>, see https://example.com/a/b?x=1</p>"
	want := "Hi there, see example.com"

	if got := Text(input); got != want {
		t.Errorf("Text(%q) = %q, want %q", input, got, want)
	}
}
