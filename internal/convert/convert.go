// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns a PDF into Markdown through a remote OCR provider.
// The provider returns Markdown per page with images referenced by id;
// this package saves those images next to the PDF and relinks the
// references to the saved files.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pdf2md/pkg/types"
)

// pageSeparator joins the rewritten pages.
const pageSeparator = "\n\n"

// Provider is the remote document-processing service. internal/ocr.Client
// implements it; tests supply fakes.
type Provider interface {
	// Upload sends the document bytes and returns an opaque file id.
	Upload(ctx context.Context, name string, content []byte) (string, error)

	// SignedURL returns a retrieval URL for fileID valid for expiry.
	SignedURL(ctx context.Context, fileID string, expiry time.Duration) (string, error)

	// Process runs OCR on the document at documentURL.
	Process(ctx context.Context, documentURL, model string, includeImages bool) ([]types.Page, error)
}

// Result is the outcome of converting one document.
type Result struct {
	Document types.Document

	// Markdown is the joined, relinked Markdown (with frontmatter if enabled).
	Markdown string

	// OutputPath is where Markdown was written. Empty until written.
	OutputPath string

	// Pages is the number of pages the provider returned.
	Pages int

	// ImageFiles lists the saved images in page order.
	ImageFiles []string

	// Unresolved lists image references that did not resolve to a saved file.
	Unresolved []string
}

// Pipeline runs the submit, materialize, and relink stages for one
// document at a time.
type Pipeline struct {
	provider Provider
	cfg      types.Config
	log      zerolog.Logger
	now      func() time.Time
}

// New validates cfg and returns a Pipeline that submits documents to p.
func New(p Provider, cfg types.Config, log zerolog.Logger) (*Pipeline, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, wrap(KindConfig, "configure", err)
	}
	return &Pipeline{
		provider: p,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}, nil
}

// Convert processes the PDF at pdfPath and writes the Markdown to
// <dir>/<stem>.md, overwriting any existing file.
func (p *Pipeline) Convert(ctx context.Context, pdfPath string) (*Result, error) {
	res, err := p.Process(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	out := res.Document.MarkdownPath()
	if err := WriteMarkdown(out, res.Markdown); err != nil {
		return nil, err
	}
	res.OutputPath = out
	p.log.Info().Str("output", out).Msg("markdown written")
	return res, nil
}

// Process validates that pdfPath exists, submits it to the provider, then
// saves each page's images and relinks its references. Pages keep the
// provider's order. Any failure aborts the whole document.
func (p *Pipeline) Process(ctx context.Context, pdfPath string) (*Result, error) {
	doc := types.NewDocument(pdfPath)
	log := p.log.With().Str("pdf", doc.Path).Logger()

	content, err := readDocument(doc.Path)
	if err != nil {
		return nil, err
	}

	if n, err := CountPages(doc.Path); err != nil {
		log.Info().Err(err).Msg("could not read page count locally")
	} else {
		log.Info().Int("pages", n).Msg("pdf preflight")
	}

	pages, err := p.submit(ctx, doc, content, log)
	if err != nil {
		return nil, err
	}

	res := &Result{Document: doc, Pages: len(pages)}
	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		md, files, err := p.relinkPage(doc, page, log)
		if err != nil {
			return nil, err
		}
		res.ImageFiles = append(res.ImageFiles, files...)

		saved := make(map[string]bool, len(page.Images))
		for _, img := range page.Images {
			saved[ImagePath(doc.ImagesDirName(), img.ID)] = true
		}
		if missing := UnresolvedImages(md, saved); len(missing) > 0 {
			log.Warn().Int("page", page.Index).Strs("references", missing).Msg("image references without a saved image")
			res.Unresolved = append(res.Unresolved, missing...)
		}

		parts = append(parts, md)
	}
	res.Markdown = strings.Join(parts, pageSeparator)

	if p.cfg.Conversion.Frontmatter {
		md, err := addFrontmatter(frontmatter{
			SourcePDF:   doc.Path,
			ConvertedAt: p.now().UTC().Format(time.RFC3339),
			Model:       p.cfg.OCR.Model,
			Pages:       res.Pages,
			Images:      len(res.ImageFiles),
		}, res.Markdown)
		if err != nil {
			return nil, wrap(KindIO, "frontmatter", err)
		}
		res.Markdown = md
	}

	return res, nil
}

// submit uploads the document, signs a URL for it, and runs OCR.
func (p *Pipeline) submit(ctx context.Context, doc types.Document, content []byte, log zerolog.Logger) ([]types.Page, error) {
	name := filepath.Base(doc.Path)
	log.Debug().Int("bytes", len(content)).Msg("uploading")
	fileID, err := p.provider.Upload(ctx, name, content)
	if err != nil {
		return nil, wrap(KindProvider, "upload", err)
	}

	log = log.With().Str("file_id", fileID).Logger()
	log.Debug().Msg("upload complete")
	docURL, err := p.provider.SignedURL(ctx, fileID, p.cfg.OCR.SignedURLExpiry)
	if err != nil {
		return nil, wrap(KindProvider, "sign", err)
	}

	log.Info().Str("model", p.cfg.OCR.Model).Msg("running OCR")
	pages, err := p.provider.Process(ctx, docURL, p.cfg.OCR.Model, true)
	if err != nil {
		return nil, wrap(KindProvider, "ocr", err)
	}
	log.Info().Int("pages", len(pages)).Int("images", types.ImageCount(pages)).Msg("OCR complete")
	return pages, nil
}

// relinkPage saves the page's images and rewrites its references.
func (p *Pipeline) relinkPage(doc types.Document, page types.Page, log zerolog.Logger) (string, []string, error) {
	files, err := SaveImages(doc.ImagesDir(), page.Images)
	if err != nil {
		if len(files) > 0 {
			log.Warn().Strs("files", files).Msg("images left on disk after failure")
		}
		return "", nil, err
	}

	refs := make(map[string]string, len(page.Images))
	for _, img := range page.Images {
		refs[img.ID] = ImagePath(doc.ImagesDirName(), img.ID)
	}
	log.Debug().Int("page", page.Index).Int("images", len(files)).Msg("page relinked")
	return RewriteReferences(page.Markdown, refs), files, nil
}

// MissingFileError reports that the input path does not name a regular
// file. It matches fs.ErrNotExist under errors.Is.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string { return "PDF file does not exist: " + e.Path }

func (e *MissingFileError) Unwrap() error { return fs.ErrNotExist }

// readDocument checks that path is an existing regular file and reads it.
func readDocument(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, wrap(KindInput, "validate", &MissingFileError{Path: path})
		}
		return nil, wrap(KindInput, "validate", fmt.Errorf("checking PDF file: %w", err))
	}
	if !fi.Mode().IsRegular() {
		return nil, wrap(KindInput, "validate", &MissingFileError{Path: path})
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(KindIO, "read", fmt.Errorf("reading PDF file: %w", err))
	}
	return content, nil
}

// WriteMarkdown writes content to path as UTF-8, overwriting.
func WriteMarkdown(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return wrap(KindIO, "write", fmt.Errorf("writing markdown: %w", err))
	}
	return nil
}
