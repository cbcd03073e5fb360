package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"
)

func TestExtractBody(t *testing.T) {
	std := base64.StdEncoding.EncodeToString([]byte("plain via std?"))

	tests := []struct {
		name    string
		payload *gmailapi.MessagePart
		want    string
	}{
		{
			name:    "nil payload",
			payload: nil,
			want:    "",
		},
		{
			name: "root body without mime type",
			payload: &gmailapi.MessagePart{
				Body: &gmailapi.MessagePartBody{Data: b64("hello")},
			},
			want: "hello",
		},
		{
			name: "plain preferred over html",
			payload: &gmailapi.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: b64("<p>html</p>")}},
					{MimeType: "text/plain; charset=UTF-8", Body: &gmailapi.MessagePartBody{Data: b64("plain")}},
				},
			},
			want: "plain",
		},
		{
			name: "nested html only",
			payload: &gmailapi.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmailapi.MessagePart{
					{
						MimeType: "multipart/related",
						Parts: []*gmailapi.MessagePart{
							{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: b64("<p>Hi <i>there</i></p>")}},
						},
					},
				},
			},
			want: "Hi there",
		},
		{
			name: "attachment ignored",
			payload: &gmailapi.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/plain", Filename: "notes.txt", Body: &gmailapi.MessagePartBody{Data: b64("attached")}},
					{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: b64("body")}},
				},
			},
			want: "body",
		},
		{
			name: "standard base64",
			payload: &gmailapi.MessagePart{
				MimeType: "text/plain",
				Body:     &gmailapi.MessagePartBody{Data: std},
			},
			want: "plain via std?",
		},
		{
			name: "undecodable body",
			payload: &gmailapi.MessagePart{
				MimeType: "text/plain",
				Body:     &gmailapi.MessagePartBody{Data: "!!!not base64!!!"},
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractBody(tt.payload); got != tt.want {
				t.Errorf("extractBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "blocks and entities",
			in:   "<html><head><style>p{color:red}</style></head><body><p>Hi &amp; welcome</p><div>Line<br>two</div><script>track()</script></body></html>",
			want: "Hi & welcome\nLine\ntwo",
		},
		{
			name: "whitespace collapsed",
			in:   "<p>  lots\t of   space </p>",
			want: "lots of space",
		},
		{
			name: "paragraph gap kept once",
			in:   "<p>one</p><br><br><br><p>two</p>",
			want: "one\n\ntwo",
		},
		{
			name: "list items",
			in:   "<ul><li>a</li><li>b</li></ul>",
			want: "a\nb",
		},
		{
			name: "plain text passes through",
			in:   "no markup",
			want: "no markup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlToText(tt.in); got != tt.want {
				t.Errorf("htmlToText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageDate(t *testing.T) {
	withHeader := &gmailapi.Message{
		InternalDate: 1,
		Payload: &gmailapi.MessagePart{
			Headers: []*gmailapi.MessagePartHeader{header("date", "Mon, 02 Jan 2006 15:04:05 -0700")},
		},
	}
	if got := messageDate(withHeader); !got.Equal(time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC)) {
		t.Errorf("messageDate() = %v, want the Date header", got)
	}

	badHeader := &gmailapi.Message{
		InternalDate: 1700000000000,
		Payload: &gmailapi.MessagePart{
			Headers: []*gmailapi.MessagePartHeader{header("Date", "yesterday")},
		},
	}
	if got := messageDate(badHeader); !got.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("messageDate() = %v, want the internal date", got)
	}

	if got := messageDate(&gmailapi.Message{}); !got.IsZero() {
		t.Errorf("messageDate() = %v, want zero time", got)
	}
}
