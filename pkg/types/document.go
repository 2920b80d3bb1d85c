// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pdf2md pipeline:
// the source document, the pages returned by the OCR provider, and the
// configuration handed to each stage.
package types

import (
	"path/filepath"
	"strings"
)

const (
	// markdownExt is the extension of the converted output file.
	markdownExt = ".md"
	// imagesSuffix is appended to the document stem to name the image directory.
	imagesSuffix = "_images"
)

// Document is a PDF on local disk. All output paths are derived from it.
type Document struct {
	// Path is the PDF path exactly as given by the caller.
	Path string `json:"path" yaml:"path"`

	// Stem is the base name without its extension (e.g. "report" for "docs/report.pdf").
	Stem string `json:"stem" yaml:"stem"`

	// Dir is the parent directory of Path.
	Dir string `json:"dir" yaml:"dir"`
}

// NewDocument derives the stem and parent directory from path.
func NewDocument(path string) Document {
	base := filepath.Base(path)
	return Document{
		Path: path,
		Stem: strings.TrimSuffix(base, filepath.Ext(base)),
		Dir:  filepath.Dir(path),
	}
}

// MarkdownPath returns <dir>/<stem>.md, the location of the converted output.
func (d Document) MarkdownPath() string {
	return filepath.Join(d.Dir, d.Stem+markdownExt)
}

// ImagesDirName returns <stem>_images, the directory name used in relative
// image links.
func (d Document) ImagesDirName() string {
	return d.Stem + imagesSuffix
}

// ImagesDir returns <dir>/<stem>_images, where extracted images are written.
func (d Document) ImagesDir() string {
	return filepath.Join(d.Dir, d.ImagesDirName())
}
