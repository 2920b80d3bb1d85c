// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocrtest provides an in-process stand-in for the OCR provider,
// for use in tests of packages that drive a full conversion.
package ocrtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// APIKey is the only credential the fake provider accepts.
const APIKey = "test-api-key"

// FileID is the id returned for every upload.
const FileID = "file-0001"

// Page is a page as the fake provider returns it.
type Page struct {
	Index    int     `json:"index"`
	Markdown string  `json:"markdown"`
	Images   []Image `json:"images"`
}

// Image is an embedded image as the fake provider returns it.
type Image struct {
	ID          string `json:"id"`
	ImageBase64 string `json:"image_base64"`
}

// Server serves the upload, signed-URL, and OCR endpoints from memory and
// records what it was sent.
type Server struct {
	*httptest.Server

	// Pages is returned by the OCR endpoint.
	Pages []Page

	// FailOCR, when non-zero, makes the OCR endpoint answer with that status.
	FailOCR int

	mu         sync.Mutex
	calls      int
	uploadName string
	uploadBody []byte
	uploadPurp string
	expiry     string
	ocrRequest map[string]any
}

// NewServer starts a fake provider returning pages.
func NewServer(pages ...Page) *Server {
	s := &Server{Pages: pages}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files", s.handleUpload)
	mux.HandleFunc("GET /files/{id}/url", s.handleSignedURL)
	mux.HandleFunc("POST /ocr", s.handleOCR)
	s.Server = httptest.NewServer(s.authorize(mux))
	return s
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls++
		s.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	defer f.Close()
	body, _ := io.ReadAll(f)

	s.mu.Lock()
	s.uploadName = hdr.Filename
	s.uploadBody = body
	s.uploadPurp = r.FormValue("purpose")
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       FileID,
		"object":   "file",
		"bytes":    len(body),
		"filename": hdr.Filename,
		"purpose":  "ocr",
	})
}

func (s *Server) handleSignedURL(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id != FileID {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "file not found"})
		return
	}
	s.mu.Lock()
	s.expiry = r.URL.Query().Get("expiry")
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"url": fmt.Sprintf("%s/signed/%s", s.URL, id),
	})
}

func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.mu.Lock()
	s.ocrRequest = req
	s.mu.Unlock()

	if s.FailOCR != 0 {
		writeJSON(w, s.FailOCR, map[string]string{"message": "ocr failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model": req["model"],
		"pages": s.Pages,
		"usage_info": map[string]int{
			"pages_processed": len(s.Pages),
		},
	})
}

// Calls returns the number of requests received.
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Upload returns the filename, content, and purpose of the last upload.
func (s *Server) Upload() (name string, body []byte, purpose string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadName, s.uploadBody, s.uploadPurp
}

// Expiry returns the expiry query parameter of the last signed-URL call.
func (s *Server) Expiry() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiry
}

// OCRRequest returns the decoded body of the last OCR call.
func (s *Server) OCRRequest() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ocrRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
