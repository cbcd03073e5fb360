package gmail

import (
	"encoding/base64"
	netmail "net/mail"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	gmailapi "google.golang.org/api/gmail/v1"

	"mercator-hq/tonecoach/pkg/mail"
)

// convertMessage maps an API message to a mail.Message.
func convertMessage(m *gmailapi.Message) mail.Message {
	msg := mail.Message{ID: m.Id}
	if m.Payload == nil {
		return msg
	}

	msg.MessageID = headerValue(m.Payload, "Message-ID")
	msg.From = headerValue(m.Payload, "From")
	msg.To = headerValue(m.Payload, "To")
	msg.Subject = headerValue(m.Payload, "Subject")
	msg.Date = messageDate(m)
	msg.Body = extractBody(m.Payload)
	return msg
}

// headerValue returns the first header named name, case-insensitively.
func headerValue(part *gmailapi.MessagePart, name string) string {
	if part == nil {
		return ""
	}
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// messageDate prefers the Date header and falls back to the time Gmail
// received the message.
func messageDate(m *gmailapi.Message) time.Time {
	if raw := headerValue(m.Payload, "Date"); raw != "" {
		if t, err := netmail.ParseDate(raw); err == nil {
			return t
		}
	}
	if m.InternalDate > 0 {
		return time.UnixMilli(m.InternalDate)
	}
	return time.Time{}
}

// extractBody returns the plain-text body of a payload: the first
// text/plain part, else the first text/html part as text.
func extractBody(payload *gmailapi.MessagePart) string {
	plain, htmlBody := walkParts(payload)
	if plain != "" {
		return plain
	}
	if htmlBody != "" {
		return htmlToText(htmlBody)
	}
	return ""
}

func walkParts(part *gmailapi.MessagePart) (plain, htmlBody string) {
	if part == nil || part.Filename != "" {
		return "", ""
	}

	if part.Body != nil && part.Body.Data != "" {
		if decoded, ok := decodeData(part.Body.Data); ok {
			mimeType := strings.ToLower(part.MimeType)
			switch {
			case strings.HasPrefix(mimeType, "text/html"):
				htmlBody = decoded
			case mimeType == "", strings.HasPrefix(mimeType, "text/plain"):
				plain = decoded
			}
		}
	}

	for _, child := range part.Parts {
		p, h := walkParts(child)
		if plain == "" {
			plain = p
		}
		if htmlBody == "" {
			htmlBody = h
		}
		if plain != "" && htmlBody != "" {
			break
		}
	}
	return plain, htmlBody
}

// decodeData decodes a body. Gmail uses base64url; some clients produce
// unpadded or standard base64.
func decodeData(data string) (string, bool) {
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	} {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded), true
		}
	}
	return "", false
}

var skippedElements = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Iframe:   true,
	atom.Template: true,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true,
	atom.Ul: true, atom.Ol: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

// htmlToText renders an HTML body as plain text. Entities are decoded by
// the parser. A document that fails to parse is returned unchanged.
func htmlToText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedElements[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Br {
				b.WriteString("\n")
				return
			}
		case html.TextNode:
			b.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			b.WriteString("\n")
		}
	}
	walk(doc)

	return tidyLines(b.String())
}

// tidyLines collapses runs of whitespace inside each line and keeps at
// most one empty line between paragraphs.
func tidyLines(s string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
