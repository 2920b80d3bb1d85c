// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/pdf2md/internal/httputil"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// OCR API JSON structures.
type ocrRequest struct {
	Model              string      `json:"model"`
	Document           documentURL `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type documentURL struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type ocrResponse struct {
	Model     string    `json:"model"`
	Pages     []ocrPage `json:"pages"`
	UsageInfo struct {
		PagesProcessed int   `json:"pages_processed"`
		DocSizeBytes   int64 `json:"doc_size_bytes"`
	} `json:"usage_info"`
}

type ocrPage struct {
	Index    int        `json:"index"`
	Markdown string     `json:"markdown"`
	Images   []ocrImage `json:"images"`
}

type ocrImage struct {
	ID           string `json:"id"`
	TopLeftX     int    `json:"top_left_x"`
	TopLeftY     int    `json:"top_left_y"`
	BottomRightX int    `json:"bottom_right_x"`
	BottomRightY int    `json:"bottom_right_y"`
	ImageBase64  string `json:"image_base64"`
}

// Process runs OCR on the document at documentURL with the given model.
// When includeImages is set the provider returns each embedded image's
// base64 payload inline, and every image in the response must carry one.
func (c *Client) Process(ctx context.Context, documentURL, model string, includeImages bool) ([]types.Page, error) {
	payload, err := json.Marshal(ocrRequest{
		Model:              model,
		Document:           documentURLChunk(documentURL),
		IncludeImageBase64: includeImages,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding OCR request: %w", err)
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/ocr", payload)
	if err != nil {
		return nil, err
	}

	var resp ocrResponse
	if err := httputil.DoJSON(c.httpClient, req, &resp); err != nil {
		return nil, fmt.Errorf("OCR request: %w", err)
	}

	return toPages(resp.Pages, includeImages)
}

func documentURLChunk(u string) documentURL {
	return documentURL{Type: "document_url", DocumentURL: u}
}

// toPages validates the wire pages and converts them. Image ids become
// filenames, so ids that could escape the image directory are rejected,
// as are duplicate ids within a page.
func toPages(in []ocrPage, requirePayload bool) ([]types.Page, error) {
	pages := make([]types.Page, 0, len(in))
	for _, p := range in {
		page := types.Page{Index: p.Index, Markdown: p.Markdown}
		seen := make(map[string]bool, len(p.Images))
		for _, img := range p.Images {
			if err := validImageID(img.ID); err != nil {
				return nil, fmt.Errorf("page %d: %w", p.Index, err)
			}
			if seen[img.ID] {
				return nil, fmt.Errorf("page %d: duplicate image id %q", p.Index, img.ID)
			}
			seen[img.ID] = true
			if requirePayload && img.ImageBase64 == "" {
				return nil, fmt.Errorf("page %d: image %q has no payload", p.Index, img.ID)
			}
			page.Images = append(page.Images, types.Image{ID: img.ID, Payload: img.ImageBase64})
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// validImageID rejects ids that are empty, dot segments, or contain path
// separators.
func validImageID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("image with empty id")
	case id == "." || id == "..":
		return fmt.Errorf("invalid image id %q", id)
	case strings.ContainsAny(id, `/\`):
		return fmt.Errorf("image id %q contains a path separator", id)
	}
	return nil
}
