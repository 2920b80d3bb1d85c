// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/pdf2md/internal/httputil"
)

// purposeOCR marks an upload as input for the OCR endpoint.
const purposeOCR = "ocr"

// uploadedFile is the provider's record of an uploaded document.
type uploadedFile struct {
	ID       string `json:"id"`
	Object   string `json:"object"`
	Bytes    int64  `json:"bytes"`
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
}

// signedURL is the response of the signed-URL endpoint.
type signedURL struct {
	URL string `json:"url"`
}

// Upload sends the document bytes as a multipart form with purpose "ocr"
// and returns the provider's file id.
func (c *Client) Upload(ctx context.Context, name string, content []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("purpose", purposeOCR); err != nil {
		return "", fmt.Errorf("writing upload form: %w", err)
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("writing upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("writing upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("writing upload form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/files", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var f uploadedFile
	if err := httputil.DoJSON(c.httpClient, req, &f); err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	if f.ID == "" {
		return "", fmt.Errorf("uploading %s: response has no file id", name)
	}
	return f.ID, nil
}

// SignedURL asks for a time-limited retrieval URL for an uploaded file.
// The provider counts expiry in whole hours; expiry is rounded up with a
// minimum of one hour.
func (c *Client) SignedURL(ctx context.Context, fileID string, expiry time.Duration) (string, error) {
	params := url.Values{
		"expiry": {strconv.Itoa(expiryHours(expiry))},
	}
	path := "/files/" + url.PathEscape(fileID) + "/url?" + params.Encode()

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	var su signedURL
	if err := httputil.DoJSON(c.httpClient, req, &su); err != nil {
		return "", fmt.Errorf("signing URL for file %s: %w", fileID, err)
	}
	if su.URL == "" {
		return "", fmt.Errorf("signing URL for file %s: response has no url", fileID)
	}
	return su.URL, nil
}

// expiryHours converts d to the provider's hour granularity.
func expiryHours(d time.Duration) int {
	h := int(math.Ceil(d.Hours()))
	if h < 1 {
		return 1
	}
	return h
}
