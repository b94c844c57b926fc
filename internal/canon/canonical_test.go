package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"zeta":  1,
		"alpha": "a",
		"mid":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"a","mid":true,"zeta":1}`, string(data))
}

func TestMarshalCanonical_NestedValues(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"blocks": []any{
			map[string]any{"stmts": []string{"_0 = move _1"}, "term": "return"},
		},
		"args": int64(2),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"args":2,"blocks":[{"stmts":["_0 = move _1"],"term":"return"}]}`, string(data))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical("a < b && c > d")
	require.NoError(t, err)
	assert.Equal(t, `"a < b && c > d"`, string(data))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "e" followed by a combining acute accent normalizes to U+00E9.
	decomposed, err := MarshalCanonical("café")
	require.NoError(t, err)
	composed, err := MarshalCanonical("caf\u00e9")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonical_LineSeparatorsUnescaped(t *testing.T) {
	data, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(data))

	data, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(data))
}

func TestMarshalCanonical_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"null", nil},
		{"float", 1.5},
		{"nested float", map[string]any{"x": []any{float32(2)}}},
		{"struct", struct{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.value)
			assert.Error(t, err)
		})
	}
}

func TestCompareUTF16_SurrogatesSortAfterBMP(t *testing.T) {
	// U+1F600 encodes as a surrogate pair starting 0xD83D, which sorts
	// before U+FF21 in UTF-16 order but after it in UTF-8 byte order.
	assert.Less(t, compareUTF16("\U0001F600", "Ａ"), 0)
}
