// Package sanitize strips markup from user-provided free text before it is
// stored on a lead or written to its activity log.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`[ \t\r\f\v]+`)
	entityReplacer  = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
		"&nbsp;", " ",
	)
)

// StripHTML removes HTML tags, including tags hidden behind entities.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text strips HTML and collapses runs of spaces. Newlines are kept so notes
// stay readable.
func Text(s string) string {
	lines := strings.Split(StripHTML(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// TextPtr is Text for optional values.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}
