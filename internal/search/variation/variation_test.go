package variation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace-search/internal/search/synonym"
	"marketplace-search/internal/search/textnorm"
	"marketplace-search/internal/search/typo"
	"marketplace-search/internal/search/vocabulary"
)

func newBuilder(withTypos bool) *Builder {
	v := vocabulary.Default()
	var c *typo.Corrector
	if withTypos {
		c = typo.NewCorrector(v.TypoVocabulary, 0)
	}
	return NewBuilder(textnorm.NewNormalizer(v), synonym.NewExpander(v), c)
}

func TestBuild_Empty(t *testing.T) {
	b := newBuilder(true)

	assert.Empty(t, b.Build(""))
	assert.Empty(t, b.Build(" \t "))
}

func TestBuild_LatinQuery(t *testing.T) {
	vars := newBuilder(false).Build("  Telefon  ")

	assert.Equal(t, "Telefon", vars[0])
	assert.Equal(t, "telefon", vars[1])
	assert.Contains(t, vars, "smartfon")
	assert.Contains(t, vars, "mobil")
}

func TestBuild_NoDuplicates(t *testing.T) {
	vars := newBuilder(true).Build("telefon telefon sotiladi")

	seen := make(map[string]bool)
	for _, v := range vars {
		assert.False(t, seen[v], "duplicate variation %q", v)
		seen[v] = true
	}
}

func TestBuild_RussianAndLatinOverlap(t *testing.T) {
	b := newBuilder(false)

	tests := []struct {
		russian string
		latin   string
	}{
		{russian: "телефон", latin: "telefon"},
		{russian: "Машина", latin: "mashina"},
		{russian: "холодильник", latin: "muzlatgich"},
	}

	for _, tt := range tests {
		t.Run(tt.latin, func(t *testing.T) {
			ru := b.Build(tt.russian)
			lat := b.Build(tt.latin)

			overlap := 0
			for _, v := range ru {
				for _, w := range lat {
					if v == w {
						overlap++
					}
				}
			}
			assert.Positive(t, overlap, "ru=%v latin=%v", ru, lat)
		})
	}
}

func TestBuild_MultiWordCyrillicYieldsLatinTokens(t *testing.T) {
	vars := newBuilder(false).Build("новый телефон")

	assert.Contains(t, vars, "yangi telefon")
	assert.Contains(t, vars, "yangi")
	assert.Contains(t, vars, "telefon")
}

func TestBuild_TokenFilter(t *testing.T) {
	vars := newBuilder(false).Build("iPhone 13 x")

	assert.Contains(t, vars, "iPhone")
	assert.Contains(t, vars, "iphone")
	assert.NotContains(t, vars, "13")
	assert.NotContains(t, vars, "x")
}

func TestBuild_TypoCorrection(t *testing.T) {
	assert.NotContains(t, newBuilder(false).Build("telfon"), "telefon")
	assert.Contains(t, newBuilder(true).Build("telfon"), "telefon")
	assert.Contains(t, newBuilder(true).Build("arzon telfon"), "telefon")
}
