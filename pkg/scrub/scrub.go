package scrub

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// tagPattern matches an opening, closing or self-closing tag: "<" and an
	// optional "/", a tag name starting with a letter, then zero or more
	// whitespace-separated attributes (bare, or name=value with a quoted or
	// unquoted value), then an optional "/" and ">". "<a@b.com>" and
	// "a<b, c>d" do not match because "@" and "," fit neither a name nor an
	// attribute. "<b and c>" does: it has the shape of a tag with two
	// boolean attributes.
	tagPattern = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9-]*` +
		`(?:\s+[A-Za-z_:][A-Za-z0-9_:.-]*(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'<>=` + "`" + `]+))?)*` +
		`\s*/?>`)

	// blankRunPattern matches three or more consecutive newlines.
	blankRunPattern = regexp.MustCompile(`\n{3,}`)

	// linkPattern matches http and https tokens that start the text or
	// follow whitespace. The leading whitespace is part of the match.
	linkPattern = regexp.MustCompile(`(?i)(?:^|\s)https?://\S+`)
)

// trailingPunct is stripped from a link before parsing and put back after.
const trailingPunct = ".,)"

// Formatting removes HTML tags from text and collapses every run of three or
// more newlines to exactly two. Angle-bracketed content that does not have
// the shape of a tag is kept verbatim.
//
// Tag removal repeats until nothing matches, so input such as "<<b>b>" cannot
// leave a new tag behind, and Formatting(Formatting(x)) == Formatting(x).
func Formatting(text string) string {
	for {
		stripped := tagPattern.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = stripped
	}
	return blankRunPattern.ReplaceAllString(text, "\n\n")
}

// Links replaces every whitespace-delimited http:// or https:// token with
// its host. User info, path, query and fragment are dropped. Trailing
// ".", "," and ")" characters are kept after the host. Tokens that do not
// parse to a URL with a host are left unchanged.
func Links(text string) string {
	return linkPattern.ReplaceAllStringFunc(text, shortenLink)
}

func shortenLink(match string) string {
	token := strings.TrimLeft(match, " \t\n\f\r")
	lead := match[:len(match)-len(token)]

	link := strings.TrimRight(token, trailingPunct)
	suffix := token[len(link):]

	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return match
	}
	return lead + u.Host + suffix
}

// Text is the normalization applied to a message body before it enters a
// prompt: Formatting, then Links, then surrounding whitespace is trimmed.
func Text(text string) string {
	return strings.TrimSpace(Links(Formatting(text)))
}
