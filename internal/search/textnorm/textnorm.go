// Package textnorm canonicalizes free text written in Uzbek Latin, Uzbek
// Cyrillic or Russian into a single lowercase Latin form.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"marketplace-search/internal/search/vocabulary"
)

var apostrophes = strings.NewReplacer(
	"ʻ", "'",
	"ʼ", "'",
	"‘", "'",
	"’", "'",
	"`", "'",
	"´", "'",
)

// Normalize lowercases s, strips diacritics, folds apostrophe variants and
// collapses whitespace. It never fails and Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)

	// transform.Chain keeps state, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = apostrophes.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokens splits s on anything that is not a letter, digit or apostrophe.
func Tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// IsNumeric reports whether s is non-empty and made only of digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// HasCyrillic reports whether any rune of s is Cyrillic.
func HasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

// Normalizer applies a vocabulary's keyword and alphabet tables.
type Normalizer struct {
	keywords []vocabulary.Pair
	letters  map[rune]string
	brands   map[string]string
}

func NewNormalizer(v *vocabulary.Vocabulary) *Normalizer {
	n := &Normalizer{
		keywords: v.RussianPairs(),
		letters:  make(map[rune]string, len(v.CyrillicLatin)),
		brands:   make(map[string]string, len(v.BrandAliases)),
	}
	for letter, latin := range v.CyrillicLatin {
		for _, r := range strings.ToLower(letter) {
			n.letters[r] = latin
			break
		}
	}
	for alias, canonical := range v.BrandAliases {
		n.brands[alphanumeric(strings.ToLower(alias))] = strings.ToLower(canonical)
	}
	return n
}

// Transliterate converts Russian keywords to their local equivalents, maps
// any remaining Cyrillic letters to Latin and normalizes the result.
//
// Keyword replacement is plain substring replacement, so a short key such as
// "дом" also rewrites the inside of longer words.
func (n *Normalizer) Transliterate(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(norm.NFC.String(s))

	for _, kw := range n.keywords {
		if strings.Contains(s, kw.From) {
			s = strings.ReplaceAll(s, kw.From, kw.To)
		}
	}

	if HasCyrillic(s) {
		var b strings.Builder
		b.Grow(len(s))
		for _, r := range s {
			if !unicode.Is(unicode.Cyrillic, r) {
				b.WriteRune(r)
				continue
			}
			if latin, ok := n.letters[r]; ok {
				b.WriteString(latin)
			}
		}
		s = b.String()
	}

	return Normalize(s)
}

// BrandKey reduces a brand string to the token used for brand equality.
func (n *Normalizer) BrandKey(s string) string {
	key := alphanumeric(n.Transliterate(s))
	if canonical, ok := n.brands[key]; ok {
		return canonical
	}
	return key
}

func alphanumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
