package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
)

// AssetDirName is the subdirectory of a collection that holds
// localised image files.
const AssetDirName = "images"

// RefSyntax identifies the surface syntax an asset reference was
// written in. Rewriting preserves the original syntax.
type RefSyntax string

const (
	// SyntaxInlineLink is the markdown image form: ![alt](url "title").
	SyntaxInlineLink RefSyntax = "inline-link"

	// SyntaxTagAttribute is the HTML form: <img src="url" ...>.
	SyntaxTagAttribute RefSyntax = "tag-attribute"
)

// AssetReference is one embedded remote-asset reference found in a
// document. It is derived transiently during extraction and never
// persisted.
type AssetReference struct {
	// URL is the original absolute remote URL.
	URL string

	// Syntax records which surface form the reference uses.
	Syntax RefSyntax

	// Match is the exact source substring to replace when rewriting.
	Match string

	// Alt is the display text (inline-link form only).
	Alt string

	// Title is the optional link title (inline-link form only).
	Title string
}

// LocalName returns the deterministic local file name for the
// reference's URL.
func (r AssetReference) LocalName() string {
	return LocalAssetName(r.URL)
}

// imageExtensions are the extensions recognised as image files.
// Order matters for extension sniffing, so this is a slice.
var imageExtensions = []string{
	".png", ".jpeg", ".jpg", ".gif", ".webp", ".svg", ".bmp", ".ico", ".avif",
}

// LocalAssetName maps a remote URL to a stable local file name.
// If the URL path ends in a recognisable image extension the path
// basename is used directly. Otherwise the name is a short hash of
// the full URL with an extension sniffed from the URL string,
// defaulting to jpg. Same URL always yields the same name.
func LocalAssetName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		base := path.Base(u.Path)
		if hasImageExtension(base) {
			return base
		}
	}

	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:12] + "." + sniffExtension(rawURL)
}

// hasImageExtension reports whether name ends in a recognised image
// extension.
func hasImageExtension(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// sniffExtension guesses an image extension from anywhere in the URL
// string (query parameters often carry a format hint). Defaults to jpg.
func sniffExtension(rawURL string) string {
	lower := strings.ToLower(rawURL)
	for _, e := range imageExtensions {
		if strings.Contains(lower, e) {
			return strings.TrimPrefix(e, ".")
		}
	}
	return "jpg"
}
