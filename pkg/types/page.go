// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Image is an embedded picture extracted by the OCR provider.
type Image struct {
	// ID is unique within its page. It is both the filename stem of the
	// saved image and the token used in the page Markdown (![ID](ID)).
	ID string `json:"id" yaml:"id"`

	// Payload is the base64 text of the image, either bare or as a
	// data URI ("data:image/jpeg;base64,...").
	Payload string `json:"payload" yaml:"payload"`
}

// Page is one page of the provider's OCR result.
type Page struct {
	// Index is the zero-based page number reported by the provider.
	Index int `json:"index" yaml:"index"`

	// Markdown is the page text with image references of the form ![id](id).
	Markdown string `json:"markdown" yaml:"markdown"`

	// Images lists the page's embedded images in provider order.
	Images []Image `json:"images" yaml:"images"`
}

// ImageCount returns the total number of images across pages.
func ImageCount(pages []Page) int {
	n := 0
	for _, p := range pages {
		n += len(p.Images)
	}
	return n
}
