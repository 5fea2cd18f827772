package labels

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Language is a two letter language code as used by Orphanet and Wikidata
type Language string

const (
	English    Language = "en"
	French     Language = "fr"
	German     Language = "de"
	Spanish    Language = "es"
	Polish     Language = "pl"
	Italian    Language = "it"
	Portuguese Language = "pt"
	Dutch      Language = "nl"
	Czech      Language = "cs"
)

// Supported lists every language the evaluation knows about, in report order
var Supported = []Language{English, French, German, Spanish, Polish, Italian, Portuguese, Dutch, Czech}

// Title returns the capitalized code used as a column suffix ("en" -> "En")
func (l Language) Title() string {
	return Capitalize(string(l))
}

// ParseLanguage resolves a code or a column suffix ("En") to a supported language
func ParseLanguage(s string) (Language, bool) {
	code := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range Supported {
		if l == code {
			return l, true
		}
	}
	return "", false
}

// SortLanguages returns langs ordered like Supported, dropping duplicates and unknown codes
func SortLanguages(langs []Language) []Language {
	seen := make(map[Language]bool, len(langs))
	for _, l := range langs {
		seen[l] = true
	}
	out := make([]Language, 0, len(langs))
	for _, l := range Supported {
		if seen[l] {
			out = append(out, l)
		}
	}
	return out
}

// Capitalize upper-cases the first rune and lower-cases the rest.
// Column names are built from it: "best_label" -> "Best_label".
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
