package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"capitalized", "Smartphones", "smartphones"},
		{"lowercase", "smartphones", "smartphones"},
		{"spaces", "Home Decoration", "home-decoration"},
		{"padded", " Mens Shirts", "-mens-shirts"},
		{"double space", "Home  Decoration", "home--decoration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("  a \t b\n c "))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc...", TruncateString("abcdef", 3))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Empty(t, FirstNonEmpty())
}

func TestBuildHeaders(t *testing.T) {
	h := BuildHeaders(map[string]string{"Accept": "text/plain", "X-Run": "1"})

	assert.Equal(t, UserAgent, h.Get("User-Agent"))
	assert.Equal(t, "text/plain", h.Get("Accept"))
	assert.Equal(t, "1", h.Get("X-Run"))
}

func TestPageURL(t *testing.T) {
	got, err := PageURL("https://dummyjson.com", "users", 100, 200)
	require.NoError(t, err)
	assert.Equal(t, "https://dummyjson.com/users?limit=100&skip=200", got)
}
