// Package variation builds the set of strings a single query is matched with.
package variation

import (
	"strings"
	"unicode/utf8"

	"marketplace-search/internal/search/synonym"
	"marketplace-search/internal/search/textnorm"
	"marketplace-search/internal/search/typo"
)

type Builder struct {
	normalizer *textnorm.Normalizer
	expander   *synonym.Expander
	corrector  *typo.Corrector
}

// NewBuilder wires the text tools together. corrector may be nil, which
// disables typo-derived variations.
func NewBuilder(n *textnorm.Normalizer, e *synonym.Expander, c *typo.Corrector) *Builder {
	return &Builder{normalizer: n, expander: e, corrector: c}
}

// Build returns the deduplicated variations of query in generation order.
// A blank query yields no variations.
func (b *Builder) Build(query string) []string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}

	out := make([]string, 0, 16)
	seen := make(map[string]struct{}, 16)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	normalized := textnorm.Normalize(trimmed)
	transliterated := b.normalizer.Transliterate(trimmed)

	add(trimmed)
	add(normalized)
	if transliterated != normalized {
		add(transliterated)
	}

	for _, s := range b.expander.Expand(trimmed) {
		add(s)
		add(textnorm.Normalize(s))
	}
	if transliterated != normalized {
		for _, s := range b.expander.Expand(transliterated) {
			add(s)
		}
	}

	for _, tok := range textnorm.Tokens(trimmed) {
		if keepToken(tok, 2) {
			add(tok)
			add(textnorm.Normalize(tok))
		}
	}
	for _, tok := range textnorm.Tokens(transliterated) {
		if keepToken(tok, 2) {
			add(tok)
		}
	}

	if b.corrector != nil {
		if fixed, ok := b.corrector.Correct(normalized); ok {
			add(textnorm.Normalize(fixed))
		}
		for _, tok := range textnorm.Tokens(transliterated) {
			if !keepToken(tok, 3) {
				continue
			}
			if fixed, ok := b.corrector.Correct(tok); ok {
				add(textnorm.Normalize(fixed))
			}
		}
	}

	return out
}

func keepToken(tok string, minRunes int) bool {
	return utf8.RuneCountInString(tok) >= minRunes && !textnorm.IsNumeric(tok)
}
