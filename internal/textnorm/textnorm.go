// Package textnorm provides the text normalization used for reference
// lookups, role-title matching, and column-header matching. All lookup
// tables and lookup keys must go through the same function so that the
// same input always lands on the same key.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	nonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	digits     = regexp.MustCompile(`\p{N}+`)
	spaces     = regexp.MustCompile(`\s+`)
	camelSplit = regexp.MustCompile(`([a-z])([A-Z])`)
	separators = regexp.MustCompile(`[_\-]+`)
)

// stripAccents decomposes the string and removes combining marks, turning
// e.g. "São Paulo" into "Sao Paulo".
func stripAccents(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// Key normalizes a value for reference-table lookups: accents stripped,
// punctuation removed, whitespace collapsed, uppercased.
func Key(s string) string {
	s = stripAccents(s)
	s = nonWord.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	return strings.ToUpper(strings.TrimSpace(s))
}

// Title normalizes a job title for taxonomy matching: accents stripped,
// digits and punctuation replaced by spaces, whitespace collapsed,
// lowercased.
func Title(s string) string {
	s = stripAccents(s)
	s = digits.ReplaceAllString(s, " ")
	s = nonWord.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Header normalizes a source column header for schema matching: camelCase
// boundaries become spaces, punctuation and underscore/dash separators
// become spaces, whitespace collapses, lowercased.
func Header(s string) string {
	s = stripAccents(strings.TrimSpace(s))
	s = camelSplit.ReplaceAllString(s, "$1 $2")
	s = nonWord.ReplaceAllString(s, " ")
	s = separators.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Tokens splits a Title-normalized string into its word tokens.
func Tokens(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
