package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStrict(t *testing.T) {
	v, err := Decode(`{"13": {"p1": {"price": 15167}}}`)
	require.NoError(t, err)

	m := v.(map[string]any)
	price := m["13"].(map[string]any)["p1"].(map[string]any)["price"]
	assert.Equal(t, json.Number("15167"), price)
}

func TestDecodeRepairs(t *testing.T) {
	tests := []struct {
		name string
		span string
		want map[string]any
	}{
		{
			name: "raw newlines",
			span: "{\"a\":\r\n \"1\"}",
			want: map[string]any{"a": "1"},
		},
		{
			name: "double encoded quotes",
			span: `{\"a\": {\"b\": \"2\"}}`,
			want: map[string]any{"a": map[string]any{"b": "2"}},
		},
		{
			name: "single quotes",
			span: `{'a': 'x', 'b': {'c': '3'}}`,
			want: map[string]any{"a": "x", "b": map[string]any{"c": "3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode(tt.span)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, span := range []string{`{a: 1}`, `{"a": }`, `{"a": 1} trailing`, `{`} {
		_, err := Decode(span)
		assert.ErrorIs(t, err, ErrMalformed, span)
	}
}

func TestRepairsAreIndependent(t *testing.T) {
	assert.Equal(t, `{"a":"b"}`, StripNewlinesUnescapeQuotes("{\\\"a\\\":\n\\\"b\\\"}"))
	assert.Equal(t, `{"it"s": "x"}`, SingleToDoubleQuotes(`{'it's': 'x'}`))
	require.Len(t, Repairs, 2)
	assert.Equal(t, "strip-newlines-unescape-quotes", Repairs[0].Name)
}
