package prompt

import (
	"regexp"
	"strings"
)

// Section locates a labeled block in model output. The label is matched
// case-insensitively as a whole word.
//
// Occurrences are ranked, and the first occurrence of the best rank wins:
//
//  1. a heading: the label opens a line and is followed by ":" or "-",
//     wrapped in Markdown emphasis, or preceded by "#"
//  2. the label opening a line on its own terms, such as "Beta\n"
//  3. the label anywhere in the text
//
// A rewrite whose own lines begin with the label word ("Beta access opens
// Friday") therefore stays whole, because only the heading above it ranks
// first.
type Section struct {
	// Label is the marker word, such as "Beta" or "Template".
	Label string

	// heading matches the label as a delimited heading.
	heading *regexp.Regexp

	// lineStart matches the label at the start of a line.
	lineStart *regexp.Regexp

	// anywhere matches the label at any word boundary.
	anywhere *regexp.Regexp
}

// NewSection compiles the patterns for label.
func NewSection(label string) Section {
	word := `\b` + regexp.QuoteMeta(label) + `\b`
	delim := `(?::|-(?:[ \t]|$))`

	delimited := `\**[ \t]*` + word + `[ \t]*\**[ \t]*` + delim + `[ \t]*\**`
	emphasized := `\*+[ \t]*` + word + `[ \t]*\*+(?:[ \t]*` + delim + `)?`
	titled := `#+[ \t]*` + word + `(?:[ \t]*` + delim + `)?`

	loose := `\**[ \t]*` + word + `[ \t]*\**[ \t]*[:-]?[ \t]*\**`

	return Section{
		Label:     label,
		heading:   regexp.MustCompile(`(?im)^[ \t>]*(?:` + delimited + `|` + emphasized + `|` + titled + `)`),
		lineStart: regexp.MustCompile(`(?im)^[ \t>#]*` + loose),
		anywhere:  regexp.MustCompile(`(?i)` + loose),
	}
}

// Extract returns the trimmed text after the best ranked occurrence of the
// label. Everything after that occurrence belongs to the section, including
// later lines that mention the label. An absent label or an empty capture
// is an *ExtractionError.
func (s Section) Extract(text string) (string, error) {
	end := -1
	for _, re := range []*regexp.Regexp{s.heading, s.lineStart, s.anywhere} {
		if end = firstMatchEnd(re, text); end >= 0 {
			break
		}
	}
	if end < 0 {
		return "", &ExtractionError{Label: s.Label}
	}

	body := strings.TrimSpace(text[end:])
	if body == "" {
		return "", &ExtractionError{Label: s.Label}
	}
	return body, nil
}

func firstMatchEnd(re *regexp.Regexp, text string) int {
	if re == nil {
		return -1
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return -1
	}
	return loc[1]
}
