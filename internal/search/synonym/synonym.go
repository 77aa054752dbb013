// Package synonym expands a query into domain synonyms built from the
// vocabulary's per-category groups and its Russian keyword aliases.
package synonym

import (
	"sort"
	"strings"

	"marketplace-search/internal/search/textnorm"
	"marketplace-search/internal/search/vocabulary"
)

type Expander struct {
	synonyms map[string][]string
	keys     []string
}

func NewExpander(v *vocabulary.Vocabulary) *Expander {
	e := &Expander{synonyms: make(map[string][]string)}

	for _, category := range v.Categories() {
		for _, group := range v.SynonymGroups[category] {
			members := make([]string, 0, len(group))
			for _, term := range group {
				if t := textnorm.Normalize(term); t != "" {
					members = append(members, t)
				}
			}
			for i, term := range members {
				for j, other := range members {
					if i != j {
						e.add(term, other)
					}
				}
			}
		}
	}

	for _, kw := range v.RussianPairs() {
		e.add(textnorm.Normalize(kw.From), textnorm.Normalize(kw.To))
	}

	e.keys = make([]string, 0, len(e.synonyms))
	for k := range e.synonyms {
		e.keys = append(e.keys, k)
	}
	sort.Strings(e.keys)
	return e
}

func (e *Expander) add(term, synonym string) {
	if term == "" || synonym == "" || term == synonym {
		return
	}
	for _, existing := range e.synonyms[term] {
		if existing == synonym {
			return
		}
	}
	e.synonyms[term] = append(e.synonyms[term], synonym)
}

// Synonyms returns the direct synonyms of term.
func (e *Expander) Synonyms(term string) []string {
	list := e.synonyms[textnorm.Normalize(term)]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Expand returns the normalized query followed by its synonyms, without
// duplicates. Keys are matched as plain substrings in both directions, so a
// short key can match inside an unrelated longer word.
func (e *Expander) Expand(query string) []string {
	q := textnorm.Normalize(query)
	if q == "" {
		return nil
	}

	set := newOrderedSet()
	set.add(q)

	for _, s := range e.synonyms[q] {
		set.add(s)
	}

	for _, key := range e.keys {
		if key == q {
			continue
		}
		if strings.Contains(q, key) || strings.Contains(key, q) {
			for _, s := range e.synonyms[key] {
				set.add(s)
			}
		}
	}

	words := strings.Fields(q)
	for i, w := range words {
		for _, s := range e.synonyms[w] {
			set.add(s)
			replaced := make([]string, len(words))
			copy(replaced, words)
			replaced[i] = s
			set.add(strings.Join(replaced, " "))
		}
	}

	return set.items
}

// AreSynonyms reports whether a and b are equal or listed as each other's synonyms.
func (e *Expander) AreSynonyms(a, b string) bool {
	na, nb := textnorm.Normalize(a), textnorm.Normalize(b)
	if na == nb {
		return true
	}
	return contains(e.synonyms[na], nb) && contains(e.synonyms[nb], na)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
