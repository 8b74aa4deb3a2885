package helpers

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonWordRun = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// NormalizeCategory upper-cases a category and replaces spaces with
// underscores. The result prefixes every file a run produces.
func NormalizeCategory(category string) string {
	return strings.ReplaceAll(cases.Upper(language.Und).String(category), " ", "_")
}

// SanitizeTitlePrefix keeps the first n characters of title and strips every
// run of non-word characters from them.
func SanitizeTitlePrefix(title string, n int) string {
	runes := []rune(title)
	if len(runes) > n {
		runes = runes[:n]
	}
	return nonWordRun.ReplaceAllString(string(runes), "")
}

// CountPhrase counts non-overlapping, case-insensitive occurrences of phrase
// in text. An empty phrase counts zero.
func CountPhrase(text, phrase string) int {
	if phrase == "" {
		return 0
	}
	fold := cases.Fold()
	return strings.Count(fold.String(text), fold.String(phrase))
}

// ResolveURL resolves ref against base. ref is returned untouched when either
// fails to parse.
func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
