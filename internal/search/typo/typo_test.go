package typo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"kitten", "sitting", 3},
		{"telefon", "telefon", 0},
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"flaw", "lawn", 2},
		{"телефон", "телфон", 1},
		{"o'zbek", "ozbek", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("mashina", "mashina"))
	assert.Equal(t, 1.0, Similarity("Mashina", "MASHINA"))
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.InDelta(t, 1.0-3.0/7.0, Similarity("kitten", "sitting"), 1e-9)
}

func TestCorrector_Correct(t *testing.T) {
	c := NewCorrector([]string{"telefon", "mashina", "kvartira"}, 0)

	tests := []struct {
		name      string
		query     string
		expected  string
		corrected bool
	}{
		{name: "one letter missing", query: "telfon", expected: "telefon", corrected: true},
		{name: "dropped letter", query: "mashna", expected: "mashina", corrected: true},
		{name: "uppercase input", query: "KVARTRA", expected: "kvartira", corrected: true},
		{name: "unrelated", query: "divan", corrected: false},
		{name: "empty", query: "  ", corrected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Correct(tt.query)
			assert.Equal(t, tt.corrected, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCorrectWith_FirstMatchNotBestMatch(t *testing.T) {
	// "mashinka" is close enough and listed first, so it wins over the exact entry.
	got, ok := CorrectWith("mashina", []string{"mashinka", "mashina"}, DefaultThreshold)
	assert.True(t, ok)
	assert.Equal(t, "mashinka", got)

	// the first entry crossing the threshold stops the scan even when it is rejected
	got, ok = CorrectWith("telefonla", []string{"telefon", "telefonla"}, DefaultThreshold)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestNewCorrector_CopiesVocabulary(t *testing.T) {
	words := []string{"telefon"}
	c := NewCorrector(words, 0.75)
	words[0] = "mashina"

	got, ok := c.Correct("telefn")
	assert.True(t, ok)
	assert.Equal(t, "telefon", got)
}
