package model

import "strings"

// ContentRef is a content-addressed URI of the form ipfs://<cid>.
type ContentRef string

// ContentScheme prefixes every ContentRef.
const ContentScheme = "ipfs://"

// PlaceholderImage is published when a token has no image of its own.
const PlaceholderImage ContentRef = "ipfs://QmbHoD9UJ1L2xfv5oFvhANsWzf1tMzN2Lr8YrPDACXt1aE"

// CID returns the content id without the scheme.
func (r ContentRef) CID() string {
	return strings.TrimPrefix(string(r), ContentScheme)
}

func (r ContentRef) String() string {
	return string(r)
}

// TokenMetadata is the JSON document referenced by a token's URI.
type TokenMetadata struct {
	Name        string     `json:"name"`
	Symbol      string     `json:"symbol"`
	Description string     `json:"description"`
	Image       ContentRef `json:"image,omitempty"`
}

// WithDefaultImage returns a copy whose Image is never empty.
func (m TokenMetadata) WithDefaultImage() TokenMetadata {
	if m.Image == "" {
		m.Image = PlaceholderImage
	}
	return m
}
