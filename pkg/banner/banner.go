package banner

import (
	"strings"

	"webscan/pkg/models"
)

const (
	titleOpen  = "<title>"
	titleClose = "</title>"
)

// ExtractTitle returns the text of the first <title> element in body.
//
// Matching is case-sensitive. When no closing tag follows, everything after
// the opening tag is taken. A missing or blank title yields models.NoTitle,
// so an empty <title></title> cannot be told apart from a page without one.
func ExtractTitle(body string) string {
	start := strings.Index(body, titleOpen)
	if start < 0 {
		return models.NoTitle
	}

	rest := body[start+len(titleOpen):]
	if end := strings.Index(rest, titleClose); end >= 0 {
		rest = rest[:end]
	}

	title := strings.TrimSpace(rest)
	if title == "" {
		return models.NoTitle
	}
	return title
}

// Shorten flattens s onto a single line and truncates it to limit runes
func Shorten(s string, limit int) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.TrimSpace(s)

	if r := []rune(s); limit > 0 && len(r) > limit {
		s = string(r[:limit]) + "..."
	}

	return s
}
