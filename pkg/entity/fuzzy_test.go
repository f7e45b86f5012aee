package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatios(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("darcy", "darcy"))
	assert.InDelta(t, 80.0, Ratio("darcy", "darcx"), 1e-9)
	assert.Equal(t, 100.0, PartialRatio("darcy", "mr. darcy"))
	assert.Equal(t, 100.0, TokenSortRatio("oz wizard", "wizard oz"))
	assert.Equal(t, 100.0, TokenSetRatio("the wizard", "the great wizard"))
	assert.Equal(t, 0.0, WRatio("", "x"))
}

func TestExtractOne(t *testing.T) {
	choices := []string{"elizabeth bennet", "mr. darcy", "jane"}
	i, score, ok := ExtractOne("darcy", choices, 85.7)
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	assert.GreaterOrEqual(t, score, 85.7)

	_, _, ok = ExtractOne("wickham", choices, 85.7)
	assert.False(t, ok)

	_, _, ok = ExtractOne("darcy", nil, 0)
	assert.False(t, ok)
}

func TestFindWord(t *testing.T) {
	tests := []struct {
		text, needle string
		want         int
	}{
		{"The Wizard of Oz", "Wizard of Oz", 4},
		{"Ozma met Oz.", "Oz", 9},
		{"Émile et Émilette", "Émile", 0},
		{"Émilette et Émile", "Émile", 13},
		{"no match here", "Oz", -1},
		{"x", "", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FindWord(tt.text, tt.needle), "%q in %q", tt.needle, tt.text)
	}
}

func TestNormalizer(t *testing.T) {
	n := Normalizer{FoldCase: true, StripHonorifics: true, NFKC: true}
	assert.Equal(t, "darcy", n.Normalize("Mr.  Darcy"))
	assert.Equal(t, "mr.", n.Normalize("Mr."))
	assert.Equal(t, "wizard", n.Normalize("Ｗｉｚａｒｄ"))
	assert.Equal(t, "Mr. Darcy", Normalizer{}.Normalize(" Mr. Darcy "))
}
