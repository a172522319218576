// Package canon normalizes free text for comparison. Canonical strings are
// comparison keys only and are never meant for display.
package canon

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Dashes lists the dash variants folded to a plain hyphen.
const Dashes = "‐‑‒–—―−"

var dashReplacer = strings.NewReplacer(
	"‐", "-",
	"‑", "-",
	"‒", "-",
	"–", "-",
	"—", "-",
	"―", "-",
	"−", "-",
)

// String returns the canonical comparison form of s: dash variants become
// hyphens, diacritics are removed, text is lower-cased, trailing periods,
// semicolons, colons and whitespace are stripped, and internal whitespace
// runs collapse to a single space. The empty string maps to itself.
func String(s string) string {
	if s == "" {
		return ""
	}
	s = fold(s)
	s = strings.TrimRightFunc(s, isTrailing)
	return Space(s)
}

// Space collapses whitespace runs to a single space and trims both ends.
func Space(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsDash reports whether r is a hyphen or one of the folded dash variants.
func IsDash(r rune) bool {
	return r == '-' || strings.ContainsRune(Dashes, r)
}

// fold applies dash, diacritic and case folding without touching whitespace.
// Lower-casing can reintroduce combining marks (U+0130 lowers to i + U+0307),
// so marks are stripped on both sides of it.
func fold(s string) string {
	s = dashReplacer.Replace(s)
	s = stripMarks(s)
	s = cases.Lower(language.Und).String(s)
	return stripMarks(s)
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isTrailing(r rune) bool {
	return r == '.' || r == ';' || r == ':' || unicode.IsSpace(r)
}
