package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["query"],
  "properties": {
    "query": {"type": "string", "maxLength": 10},
    "limit": {"type": "integer", "minimum": 1}
  }
}`

func TestSchema_ValidateJSON(t *testing.T) {
	s := MustCompile(testSchema)

	tests := []struct {
		name       string
		doc        string
		valid      bool
		errorField string
	}{
		{name: "valid", doc: `{"query":"telefon","limit":5}`, valid: true},
		{name: "missing query", doc: `{"limit":5}`, errorField: "(root)"},
		{name: "limit below minimum", doc: `{"query":"a","limit":0}`, errorField: "limit"},
		{name: "query too long", doc: `{"query":"abcdefghijk"}`, errorField: "query"},
		{name: "not json", doc: `{`, errorField: "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.ValidateJSON([]byte(tt.doc))
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				require.NotEmpty(t, result.Errors)
				assert.True(t, result.HasErrors(tt.errorField), result.Error())
			}
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	s := MustCompile(testSchema)

	assert.True(t, s.Validate(map[string]interface{}{"query": "uy"}).Valid)

	result := s.Validate(map[string]interface{}{"query": 5})
	assert.False(t, result.Valid)
	assert.Len(t, result.GetErrorMessages(), 1)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 5}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`not json`) })
}
