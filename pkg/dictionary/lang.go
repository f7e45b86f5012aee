package dictionary

import (
	"slices"
	"unicode/utf8"
)

// cjkLanguages are written without spaces between words.
var cjkLanguages = []string{"zh", "ja", "ko"}

// IsCJK reports whether lang is Chinese, Japanese or Korean.
func IsCJK(lang string) bool { return slices.Contains(cjkLanguages, lang) }

// MinLength is the shortest surface form, in codepoints, kept for lang.
func MinLength(lang string) int {
	if IsCJK(lang) {
		return 2
	}
	return 3
}

// AcceptSurface reports whether a candidate surface form is long enough to
// enter the automaton for lang.
func AcceptSurface(lang, surface string) bool {
	return utf8.RuneCountInString(surface) >= MinLength(lang)
}
