// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP helpers used by the provider client:
// sending a request, turning non-2xx responses into errors, and decoding
// JSON bodies.
package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a failed response body is read for the
// error message.
const maxErrorBody = 4 << 10

// StatusError is returned when the server answers with a non-2xx status.
// Message holds the server's explanation when one could be extracted.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Do sends req and returns the response when the status is 2xx. Any other
// status is drained, closed, and reported as a *StatusError. There is no
// retry: a failed call fails the caller.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &StatusError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body),
	}
}

// DoJSON sends req and decodes a 2xx JSON body into out.
func DoJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := Do(client, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// errorBody covers the shapes providers use for error payloads:
// {"message": "..."}, {"detail": "..."}, {"error": {"message": "..."}}.
type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// errorMessage extracts a one-line message from a failed response body.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Message != "":
			return eb.Message
		case eb.Error != nil && eb.Error.Message != "":
			return eb.Error.Message
		case len(eb.Detail) > 0:
			var s string
			if json.Unmarshal(eb.Detail, &s) == nil {
				return s
			}
			return string(eb.Detail)
		}
	}
	return strings.Join(strings.Fields(string(body)), " ")
}
