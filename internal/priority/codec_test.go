package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   []string
		format Format
	}{
		{"empty", "  ", []string{}, FormatEmpty},
		{"json", `["b","a","c"]`, []string{"b", "a", "c"}, FormatJSON},
		{"json dup", `["b","a","b"]`, []string{"b", "a"}, FormatJSON},
		{"legacy", "((b)), ((a)),((c))", []string{"b", "a", "c"}, FormatLegacyRefs},
		{"legacy bare", "b,a", []string{"b", "a"}, FormatLegacyRefs},
		{"weights", `{"a":0.2,"b":0.8}`, []string{"b", "a"}, FormatWeightMap},
		{"bad json", `["a",`, []string{}, FormatMalformed},
		{"bad weights", `{"a":"x"}`, []string{}, FormatMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format := Decode(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.format, format)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	order := []string{"x9", "a1", "((weird))", "m"}
	raw, err := Encode(order)
	require.NoError(t, err)

	got, format := Decode(raw)
	assert.Equal(t, FormatJSON, format)
	assert.Equal(t, order, got)

	raw, err = Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestNeedsMigration(t *testing.T) {
	assert.True(t, FormatLegacyRefs.NeedsMigration())
	assert.True(t, FormatWeightMap.NeedsMigration())
	assert.False(t, FormatJSON.NeedsMigration())
	assert.False(t, FormatMalformed.NeedsMigration())
}
