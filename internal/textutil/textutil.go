/*
Package textutil provides text normalization shared by the HTML extractor and
the technical-block extractor: whitespace collapsing and accent-insensitive,
case-insensitive folding with an index map back into the original string.
*/
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CollapseSpaces trims the string and collapses any whitespace run (including
// NBSP) into a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, " ", " ")), " ")
}

// Fold uppercases the string and strips combining accent marks, so that
// "Características Técnicas" and "CARACTERISTICAS TECNICAS" compare equal.
func Fold(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}

// FoldIndexed folds the string rune by rune and returns, for every byte of
// the folded result, the byte offset of the originating rune in s. Matches
// found in the folded text can then be cut from the original text without
// losing accents or casing.
func FoldIndexed(s string) (string, []int) {
	var b strings.Builder
	offsets := make([]int, 0, len(s))
	for i, r := range s {
		folded := Fold(string(r))
		b.WriteString(folded)
		for range len(folded) {
			offsets = append(offsets, i)
		}
	}
	return b.String(), offsets
}
