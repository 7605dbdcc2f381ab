package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"1", float64(1)},
		{"true", true},
		{"null", nil},
		{`"quoted"`, "quoted"},
		{"plain text", "plain text"},
		{`["a","b"]`, []any{"a", "b"}},
		{`{"k":1}`, map[string]any{"k": float64(1)}},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseValue(tt.raw))
		})
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"appId=123", "path=img/", "token=a=b"}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"appId": "123", "path": "img/", "token": "a=b"}, got)

	got, err = ParseAssignments([]string{"port=8080", "https=true", "name=x"}, true)
	require.NoError(t, err)
	assert.Equal(t, float64(8080), got["port"])
	assert.Equal(t, true, got["https"])
	assert.Equal(t, "x", got["name"])

	_, err = ParseAssignments([]string{"novalue"}, false)
	assert.Error(t, err)
	_, err = ParseAssignments([]string{" =v"}, false)
	assert.Error(t, err)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "***", MaskSecret("abc"))
	assert.Equal(t, "******", MaskSecret("abcdef"))
	assert.Equal(t, "abc**fgh", MaskSecret("abcdefgh"))
}
