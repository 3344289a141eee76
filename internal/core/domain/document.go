package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// SourceDocument is one markdown document read from an input collection.
// It is immutable for the duration of a sync pass.
type SourceDocument struct {
	// Name is the document file name within the collection.
	Name string

	// Content is the raw document text as read from disk.
	Content []byte

	// Fingerprint is the hex SHA-256 digest of Content, used for
	// change detection between sync passes.
	Fingerprint string
}

// NewSourceDocument builds a SourceDocument and computes its fingerprint.
func NewSourceDocument(name string, content []byte) SourceDocument {
	return SourceDocument{
		Name:        name,
		Content:     content,
		Fingerprint: Fingerprint(content),
	}
}

// Fingerprint returns the hex SHA-256 digest of data.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
