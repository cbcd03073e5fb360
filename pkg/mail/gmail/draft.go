package gmail

import (
	"encoding/base64"
	"mime"
	"strings"

	"mercator-hq/tonecoach/pkg/mail"
)

// buildRawMessage renders draft as an RFC 2822 text/plain message with
// CRLF line endings.
func buildRawMessage(draft mail.Draft) string {
	var b strings.Builder

	writeHeader(&b, "MIME-Version", "1.0")
	if draft.To != "" {
		writeHeader(&b, "To", draft.To)
	}
	writeHeader(&b, "Subject", mime.QEncoding.Encode("utf-8", headerSafe(draft.Subject)))
	if draft.InReplyTo != "" {
		writeHeader(&b, "In-Reply-To", draft.InReplyTo)
		writeHeader(&b, "References", draft.InReplyTo)
	}
	writeHeader(&b, "Content-Type", `text/plain; charset="UTF-8"`)
	writeHeader(&b, "Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(draft.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String()
}

func writeHeader(b *strings.Builder, name, value string) {
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(headerSafe(value))
	b.WriteString("\r\n")
}

// headerSafe removes line breaks so a value cannot start a new header.
func headerSafe(value string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
}

func encodeRaw(raw string) string {
	return base64.URLEncoding.EncodeToString([]byte(raw))
}
