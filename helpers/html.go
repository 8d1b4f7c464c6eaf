// Package helpers holds text cleanup shared by format parsers.
package helpers

import (
	"html"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	commentPattern  = regexp.MustCompile(`<!--[\s\S]*?-->`)
	blockEndPattern = regexp.MustCompile(`(?i)</(?:p|div|li|h[1-6]|blockquote|tr)>|<br\s*/?>`)
	spacePattern    = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n\s*\n+`)
)

// IsHTML reports whether s appears to contain markup.
func IsHTML(s string) bool {
	return tagPattern.MatchString(s)
}

// StripHTML removes tags and decodes entities, keeping paragraph breaks.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = commentPattern.ReplaceAllString(s, "")
	s = blockEndPattern.ReplaceAllString(s, "\n")
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return tidy(s)
}

// ToMarkdown converts an HTML fragment to Markdown. Text without markup is
// only tidied, and markup that fails to convert is stripped instead.
func ToMarkdown(s string) string {
	if !IsHTML(s) {
		return tidy(html.UnescapeString(s))
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return StripHTML(s)
	}
	return strings.TrimSpace(md)
}

// NormalizeWhitespace collapses all whitespace runs to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
