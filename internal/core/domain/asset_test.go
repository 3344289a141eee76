package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalAssetName(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "path with image extension uses basename",
			url:  "https://cdn.example.com/assets/photo.png",
			want: "photo.png",
		},
		{
			name: "query string does not leak into the name",
			url:  "https://cdn.example.com/assets/photo.jpg?token=abc123",
			want: "photo.jpg",
		},
		{
			name: "uppercase extension is recognised",
			url:  "https://cdn.example.com/photo.PNG",
			want: "photo.PNG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocalAssetName(tt.url))
		})
	}
}

func TestLocalAssetName_HashedNames(t *testing.T) {
	t.Run("no extension falls back to hash with default jpg", func(t *testing.T) {
		name := LocalAssetName("https://cdn.example.com/image?id=42")

		assert.True(t, strings.HasSuffix(name, ".jpg"), "got %q", name)
		assert.Len(t, name, 12+len(".jpg"))
	})

	t.Run("extension sniffed from query", func(t *testing.T) {
		name := LocalAssetName("https://cdn.example.com/download?file=pic.webp")
		assert.True(t, strings.HasSuffix(name, ".webp"), "got %q", name)
	})

	t.Run("deterministic", func(t *testing.T) {
		url := "https://cdn.example.com/image?id=42"
		assert.Equal(t, LocalAssetName(url), LocalAssetName(url))
	})

	t.Run("distinct urls get distinct names", func(t *testing.T) {
		a := LocalAssetName("https://cdn.example.com/image?id=1")
		b := LocalAssetName("https://cdn.example.com/image?id=2")
		assert.NotEqual(t, a, b)
	})
}

func TestAssetReference_LocalName(t *testing.T) {
	ref := AssetReference{URL: "https://cdn.example.com/a.gif", Syntax: SyntaxInlineLink}
	assert.Equal(t, "a.gif", ref.LocalName())
}
