// Package extract scans document text for embedded remote image
// references. Extraction is deterministic and side-effect free; the
// sync engine rewrites the returned matches after downloading.
package extract

import (
	"regexp"
	"sort"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

var (
	// inlinePattern matches markdown images: ![alt](url "title").
	// Only absolute http/https URLs are recognised; relative or
	// malformed references never match and are left untouched.
	inlinePattern = regexp.MustCompile(`!\[([^\]]*)\]\(\s*(https?://[^\s)]+)(?:\s+"([^"]*)")?\s*\)`)

	// tagPattern matches HTML image tags: <img src="url" ...>.
	tagPattern = regexp.MustCompile(`(?i)<img\b[^>]*?src\s*=\s*["'](https?://[^"']+)["'][^>]*?>`)
)

// Images returns the remote image references in text, in document
// order. A URL referenced twice yields two references; each is
// rewritten independently. A tag-attribute match whose exact source
// substring or URL was already captured by the inline-link form is
// discarded so the same reference is never processed twice.
func Images(text string) []domain.AssetReference {
	type located struct {
		pos int
		ref domain.AssetReference
	}

	var found []located
	inlineURLs := make(map[string]bool)
	inlineMatches := make(map[string]bool)

	for _, m := range inlinePattern.FindAllStringSubmatchIndex(text, -1) {
		match := text[m[0]:m[1]]
		alt := text[m[2]:m[3]]
		url := text[m[4]:m[5]]
		title := ""
		if m[6] >= 0 {
			title = text[m[6]:m[7]]
		}

		found = append(found, located{pos: m[0], ref: domain.AssetReference{
			URL:    url,
			Syntax: domain.SyntaxInlineLink,
			Match:  match,
			Alt:    alt,
			Title:  title,
		}})
		inlineURLs[url] = true
		inlineMatches[match] = true
	}

	for _, m := range tagPattern.FindAllStringSubmatchIndex(text, -1) {
		match := text[m[0]:m[1]]
		url := text[m[2]:m[3]]
		if inlineMatches[match] || inlineURLs[url] {
			continue
		}

		found = append(found, located{pos: m[0], ref: domain.AssetReference{
			URL:    url,
			Syntax: domain.SyntaxTagAttribute,
			Match:  match,
		}})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	refs := make([]domain.AssetReference, 0, len(found))
	for _, f := range found {
		refs = append(refs, f.ref)
	}
	return refs
}
