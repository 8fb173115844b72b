// Package views holds the embedded HTML templates shared by both route groups.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/cppla/dualfetch/utils"
)

//go:embed templates/*.html
var files embed.FS

// Parse loads every page and partial under templates/ with FuncMap applied.
func Parse() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(files, "templates/*.html")
}

// FuncMap returns the helpers available to templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"pageWindow": utils.PageWindow,
		"isGap":      func(p int) bool { return p == utils.PageGap },
		"pageURL":    PageURL,
		"formatDate": FormatDate,
		"deref":      deref,
		"initial":    initial,
		"tagStyle":   tagStyle,
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"dict":       dict,
	}
}

// dict pairs up keys and values so a partial can receive more than one argument.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// PageURL builds a list URL for page, keeping the category filter.
func PageURL(base string, page int, category string) string {
	v := url.Values{}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if category != "" {
		v.Set("category", category)
	}
	if len(v) == 0 {
		return base
	}
	return base + "?" + v.Encode()
}

// FormatDate renders a date for display; unpublished posts have no date.
func FormatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "Unpublished"
		}
		return t.Format("January 2, 2006")
	case *time.Time:
		if t == nil || t.IsZero() {
			return "Unpublished"
		}
		return t.Format("January 2, 2006")
	default:
		return ""
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "?"
	}
	return string(r)
}

// tagStyle tints a tag badge with its color, falling back to grey.
func tagStyle(color *string) template.CSS {
	if color == nil || !validColor(*color) {
		return "background-color:#e5e7eb;color:#374151"
	}
	return template.CSS(fmt.Sprintf("background-color:%s20;color:%s", *color, *color))
}

func validColor(c string) bool {
	if len(c) != 7 || c[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(c[1:], 16, 32)
	return err == nil
}
