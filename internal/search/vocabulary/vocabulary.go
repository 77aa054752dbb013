// Package vocabulary holds the static, versioned language tables the search
// core is configured with: Russian keyword conversions, the Cyrillic→Latin
// alphabet, synonym groups, brand aliases and the typo-correction word list.
//
// A *Vocabulary is never mutated after it is built. Reloading produces a new
// value that the search service swaps in whole.
package vocabulary

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

type Vocabulary struct {
	Version string `yaml:"version"`

	// RussianKeywords maps a Russian word to its local-language equivalent.
	// Keys are matched as case-insensitive substrings.
	RussianKeywords map[string]string `yaml:"russian_keywords"`

	// CyrillicLatin maps a single lowercase Cyrillic letter to Latin text.
	CyrillicLatin map[string]string `yaml:"cyrillic_latin"`

	// SynonymGroups is keyed by category; every term in a group is a synonym
	// of every other term in the same group.
	SynonymGroups map[string][][]string `yaml:"synonym_groups"`

	// BrandAliases maps a spelling variant to the canonical brand token.
	BrandAliases map[string]string `yaml:"brand_aliases"`

	// TypoVocabulary is scanned in order; correction is first-match.
	TypoVocabulary []string `yaml:"typo_vocabulary"`
}

// Pair is one ordered Russian→local keyword conversion.
type Pair struct {
	From string
	To   string
}

// RussianPairs returns the keyword table longest key first, ties broken
// lexically, so replacement is deterministic.
func (v *Vocabulary) RussianPairs() []Pair {
	pairs := make([]Pair, 0, len(v.RussianKeywords))
	for from, to := range v.RussianKeywords {
		from = strings.ToLower(strings.TrimSpace(from))
		if from == "" {
			continue
		}
		pairs = append(pairs, Pair{From: from, To: to})
	}
	sort.Slice(pairs, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(pairs[i].From), utf8.RuneCountInString(pairs[j].From)
		if li != lj {
			return li > lj
		}
		return pairs[i].From < pairs[j].From
	})
	return pairs
}

// Categories lists synonym group categories in lexical order.
func (v *Vocabulary) Categories() []string {
	out := make([]string, 0, len(v.SynonymGroups))
	for c := range v.SynonymGroups {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Problem is a lint finding about a vocabulary table entry.
type Problem struct {
	Table   string
	Entry   string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s[%s]: %s", p.Table, p.Entry, p.Message)
}

// Lint reports entries that can never match or that silently shadow others.
// It does not reject the vocabulary; Validate does that for hard errors.
func (v *Vocabulary) Lint() []Problem {
	var problems []Problem

	for from, to := range v.RussianKeywords {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			problems = append(problems, Problem{"russian_keywords", from, "empty key or value"})
		}
	}

	for letter := range v.CyrillicLatin {
		if utf8.RuneCountInString(letter) != 1 {
			problems = append(problems, Problem{"cyrillic_latin", letter, "key must be a single letter"})
		}
	}

	for _, category := range v.Categories() {
		for i, group := range v.SynonymGroups[category] {
			entry := fmt.Sprintf("%s#%d", category, i)
			if len(group) < 2 {
				problems = append(problems, Problem{"synonym_groups", entry, "group has fewer than two terms"})
			}
			seen := make(map[string]bool, len(group))
			for _, term := range group {
				t := strings.ToLower(strings.TrimSpace(term))
				if t == "" {
					problems = append(problems, Problem{"synonym_groups", entry, "empty term"})
					continue
				}
				if seen[t] {
					problems = append(problems, Problem{"synonym_groups", entry, fmt.Sprintf("duplicate term %q", term)})
				}
				seen[t] = true
				if utf8.RuneCountInString(t) <= 2 {
					problems = append(problems, Problem{"synonym_groups", entry,
						fmt.Sprintf("term %q is short enough to over-match as a substring", term)})
				}
			}
		}
	}

	for alias, canonical := range v.BrandAliases {
		if _, chained := v.BrandAliases[canonical]; chained && canonical != alias {
			problems = append(problems, Problem{"brand_aliases", alias, fmt.Sprintf("target %q is itself an alias", canonical)})
		}
	}

	seen := make(map[string]int, len(v.TypoVocabulary))
	for i, word := range v.TypoVocabulary {
		w := strings.ToLower(strings.TrimSpace(word))
		if first, dup := seen[w]; dup {
			problems = append(problems, Problem{"typo_vocabulary", word,
				fmt.Sprintf("duplicate of entry %d, unreachable under first-match", first)})
			continue
		}
		seen[w] = i
	}

	sort.SliceStable(problems, func(i, j int) bool {
		if problems[i].Table != problems[j].Table {
			return problems[i].Table < problems[j].Table
		}
		return problems[i].Entry < problems[j].Entry
	})
	return problems
}

// Validate rejects vocabularies the core cannot run with.
func (v *Vocabulary) Validate() error {
	if v == nil {
		return fmt.Errorf("vocabulary is nil")
	}
	for letter := range v.CyrillicLatin {
		if utf8.RuneCountInString(letter) != 1 {
			return fmt.Errorf("cyrillic_latin key %q must be a single letter", letter)
		}
	}
	return nil
}

// Parse decodes a YAML vocabulary document.
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// LoadFile reads a vocabulary from disk. An empty path yields Default().
func LoadFile(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return Parse(data)
}
