package entity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// boundary reports whether a word boundary sits at byte i of text.
func boundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

// FindWord returns the byte index of the first occurrence of needle in text
// that has a word boundary on both sides, or -1.
func FindWord(text, needle string) int {
	if needle == "" {
		return -1
	}
	from := 0
	for from <= len(text)-len(needle) {
		i := strings.Index(text[from:], needle)
		if i < 0 {
			return -1
		}
		i += from
		if boundary(text, i) && boundary(text, i+len(needle)) {
			return i
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		from = i + size
	}
	return -1
}
