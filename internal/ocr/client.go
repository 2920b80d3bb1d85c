// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr is the client for the Mistral document OCR API. It covers the
// three calls pdf2md needs: upload a document, obtain a signed URL for it,
// and run OCR on that URL. Responses are validated here and handed to the
// rest of the program as types.Page values.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/pdf2md/internal/httputil"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// apiBase is the Mistral API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.mistral.ai/v1"

// Client talks to the OCR provider. It holds the credential explicitly;
// nothing is read from the environment.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

// NewClient creates a client from cfg. An empty APIKey is rejected so a
// misconfigured run fails before any request is made.
func NewClient(cfg types.OCRConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, types.ErrMissingAPIKey
	}
	base := cfg.BaseURL
	if base == "" {
		base = apiBase
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(base, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client (e.g. an httptest
// server's client).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// newRequest builds an authenticated request against the API root.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// newJSONRequest is newRequest with a JSON-encoded body.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload []byte) (*http.Request, error) {
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// IsUnauthorized reports whether err is the provider rejecting the credential.
func IsUnauthorized(err error) bool {
	var se *httputil.StatusError
	return errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden)
}
