package twine

import (
	"regexp"
	"sort"
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

// Encoder transforms a field value before it is handed to a similarity
// primitive, for example lowercasing or whitespace folding. Encoders must be
// pure so that comparing the same pair of records always yields the same
// result.
type Encoder func(string) string

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	nonDigit   = regexp.MustCompile(`\D+`)
	urlPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?([^/]+)(?:/.*)?$`)
)

// Identity returns its argument unchanged.
func Identity(s string) string { return s }

// Strip collapses internal whitespace runs to single spaces and trims the
// ends.
func Strip(s string) string {
	return spaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// LowStrip lowercases and strips extra whitespace.
func LowStrip(s string) string {
	return Strip(strings.ToLower(s))
}

// NoSpace removes all whitespace.
func NoSpace(s string) string {
	return spaceRun.ReplaceAllString(strings.TrimSpace(s), "")
}

// Digits keeps only digit characters, useful for phone numbers.
func Digits(s string) string {
	return nonDigit.ReplaceAllString(strings.TrimSpace(s), "")
}

// NFKC applies Unicode NFKC compatibility normalization, folding visually
// equivalent forms (full-width characters, ligatures) to a common
// representation before comparison.
func NFKC(s string) string {
	return norm.NFKC.String(s)
}

// SortedWords sorts space-separated words, making the encoding insensitive
// to word order ("Smith John" and "John Smith" encode identically).
func SortedWords(s string) string {
	ws := strings.Split(s, " ")
	sort.Strings(ws)
	return strings.Join(ws, " ")
}

// TokenSort segments the value into UAX#29 words, sorts them and joins with
// single spaces. Unlike SortedWords it also splits on punctuation, so
// "Smith, John" and "John Smith" encode identically.
func TokenSort(s string) string {
	toks := words.FromString(s)
	var tokens []string
	for toks.Next() {
		tok := strings.TrimSpace(toks.Value())
		if tok != "" && hasLetterOrDigit(tok) {
			tokens = append(tokens, tok)
		}
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Reverse reverses the value rune by rune.
func Reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// URLDomain extracts the host from a URL, or returns the value unchanged if
// it does not look like one.
func URLDomain(s string) string {
	m := urlPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return m[1]
}

// EmailDomain extracts the domain from an email address, or returns the
// value unchanged if it does not contain one.
func EmailDomain(s string) string {
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return s
	}
	return s[at+1:]
}

// Chain composes encoders left to right: Chain(a, b)(s) == b(a(s)).
func Chain(encoders ...Encoder) Encoder {
	return func(s string) string {
		for _, enc := range encoders {
			s = enc(s)
		}
		return s
	}
}
