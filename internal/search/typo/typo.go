// Package typo corrects misspelled query terms against a known word list.
package typo

import (
	"strings"
	"unicode/utf8"

	"marketplace-search/internal/search/textnorm"
)

const DefaultThreshold = 0.7

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	rows, cols := len(ra)+1, len(rb)+1

	d := make([][]int, rows)
	for i := range d {
		d[i] = make([]int, cols)
		d[i][0] = i
	}
	for j := 0; j < cols; j++ {
		d[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
		}
	}
	return d[rows-1][cols-1]
}

// Similarity is 1 - distance/longer length on lowercased input, 1.0 for two empty strings.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(longest)
}

type Corrector struct {
	vocabulary []string
	threshold  float64
}

// NewCorrector keeps words in the given order. A non-positive threshold
// selects DefaultThreshold.
func NewCorrector(words []string, threshold float64) *Corrector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	vocab := make([]string, len(words))
	copy(vocab, words)
	return &Corrector{vocabulary: vocab, threshold: threshold}
}

func (c *Corrector) Correct(query string) (string, bool) {
	return CorrectWith(query, c.vocabulary, c.threshold)
}

// CorrectWith scans vocabulary in order and stops at the first entry whose
// similarity reaches threshold. That entry is returned when the query is much
// shorter than it or the similarity exceeds 0.8; otherwise there is no
// correction, even if a later entry would match better.
func CorrectWith(query string, vocabulary []string, threshold float64) (string, bool) {
	q := textnorm.Normalize(query)
	if q == "" {
		return "", false
	}
	qLen := float64(utf8.RuneCountInString(q))

	for _, entry := range vocabulary {
		e := textnorm.Normalize(entry)
		if e == "" {
			continue
		}
		sim := Similarity(q, e)
		if sim < threshold {
			continue
		}
		if qLen < 0.7*float64(utf8.RuneCountInString(e)) || sim > 0.8 {
			return entry, true
		}
		return "", false
	}
	return "", false
}
