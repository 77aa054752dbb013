package vocabulary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
version: "2026-10"
russian_keywords:
  телефон: telefon
  дом: uy
  автомобиль: avtomobil
cyrillic_latin:
  т: t
  е: e
synonym_groups:
  transport:
    - [mashina, avtomobil]
brand_aliases:
  nayk: nike
typo_vocabulary: [telefon, mashina]
`

func TestParse_Success(t *testing.T) {
	v, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "2026-10", v.Version)
	assert.Equal(t, "telefon", v.RussianKeywords["телефон"])
	assert.Equal(t, [][]string{{"mashina", "avtomobil"}}, v.SynonymGroups["transport"])
	assert.Equal(t, "nike", v.BrandAliases["nayk"])
	assert.Equal(t, []string{"telefon", "mashina"}, v.TypoVocabulary)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed yaml", doc: "russian_keywords: [unterminated"},
		{name: "multi letter cyrillic key", doc: "cyrillic_latin:\n  тс: ts\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestRussianPairs_LongestFirstThenLexical(t *testing.T) {
	v, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	pairs := v.RussianPairs()
	require.Len(t, pairs, 3)
	assert.Equal(t, "автомобиль", pairs[0].From)
	assert.Equal(t, "телефон", pairs[1].From)
	assert.Equal(t, "дом", pairs[2].From)
}

func TestLoadFile(t *testing.T) {
	t.Run("empty path falls back to defaults", func(t *testing.T) {
		v, err := LoadFile("")
		require.NoError(t, err)
		assert.Equal(t, Default().Version, v.Version)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocab.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

		v, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "2026-10", v.Version)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestLint(t *testing.T) {
	v := &Vocabulary{
		RussianKeywords: map[string]string{"машина": ""},
		SynonymGroups: map[string][][]string{
			"misc": {{"tv"}, {"telefon", "Telefon"}},
		},
		BrandAliases:   map[string]string{"nayk": "naik", "naik": "nike"},
		TypoVocabulary: []string{"telefon", "mashina", "Telefon"},
	}

	problems := v.Lint()
	tables := make(map[string]int)
	for _, p := range problems {
		tables[p.Table]++
	}

	assert.Equal(t, 1, tables["russian_keywords"])
	assert.Equal(t, 1, tables["brand_aliases"])
	assert.Equal(t, 1, tables["typo_vocabulary"])
	// single-term group, short term "tv", duplicate "Telefon"
	assert.Equal(t, 3, tables["synonym_groups"])
}

func TestDefault_IsLintClean(t *testing.T) {
	for _, p := range Default().Lint() {
		// two-letter synonyms such as "tv" and "uy" are intentional
		assert.Equal(t, "synonym_groups", p.Table, p.String())
	}
	require.NoError(t, Default().Validate())
}
