package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// StripWhitespace removes every white space rune as well as invisible format
// runes (zero-width space, zero-width joiners, byte order marks) from s.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeName lowercases and strips all whitespace from a name.
func NormalizeName(name string) string {
	return StripWhitespace(strings.ToLower(name))
}

// ContainsAny reports whether s contains any of the given substrings, and
// which one matched first.
func ContainsAny(s string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(s, kw) {
			return kw, true
		}
	}
	return "", false
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText puts a name on a single readable line for logs and console
// tables. It is never used for matching.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}
