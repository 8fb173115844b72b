package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// comments are plain text; strip every tag
	textPolicy = bluemonday.StrictPolicy()
	// rendered markdown keeps formatting and code block languages
	htmlPolicy = newHTMLPolicy()
)

func newHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")
	return p
}

// SanitizeText strips all markup from user input such as comments. The result is plain
// text; templates escape it on output.
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(input)))
}

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return htmlPolicy.Sanitize(input)
}
