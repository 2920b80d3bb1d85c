// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2md/pkg/types"
)

// onePixelPNG is a 1x1 transparent PNG.
const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// fakeProvider implements Provider for testing. It returns canned pages
// or fails at a chosen step, and records the calls it receives.
type fakeProvider struct {
	pages   []types.Page
	failAt  string // "upload", "sign", or "ocr"
	calls   []string
	name    string
	content []byte
	expiry  time.Duration
	model   string
}

func (f *fakeProvider) Upload(_ context.Context, name string, content []byte) (string, error) {
	f.calls = append(f.calls, "upload")
	f.name, f.content = name, content
	if f.failAt == "upload" {
		return "", errors.New("upload rejected")
	}
	return "file-1", nil
}

func (f *fakeProvider) SignedURL(_ context.Context, fileID string, expiry time.Duration) (string, error) {
	f.calls = append(f.calls, "sign")
	f.expiry = expiry
	if f.failAt == "sign" {
		return "", errors.New("signing failed")
	}
	return "https://files.example/" + fileID, nil
}

func (f *fakeProvider) Process(_ context.Context, documentURL, model string, includeImages bool) ([]types.Page, error) {
	f.calls = append(f.calls, "ocr")
	f.model = model
	if f.failAt == "ocr" {
		return nil, errors.New("ocr failed")
	}
	if !includeImages {
		return nil, errors.New("images were not requested")
	}
	return f.pages, nil
}

func testConfig() types.Config {
	return types.Config{OCR: types.OCRConfig{APIKey: "test-key"}}
}

func newTestPipeline(t *testing.T, p Provider, cfg types.Config) *Pipeline {
	t.Helper()
	pl, err := New(p, cfg, zerolog.Nop())
	require.NoError(t, err)
	pl.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	return pl
}

// setupPDF writes a placeholder PDF named name into a temp dir.
func setupPDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fake pdf"), 0o644))
	return path
}

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	return b
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestProcess_SinglePageScenario(t *testing.T) {
	pdfPath := setupPDF(t, "report.pdf")
	prov := &fakeProvider{pages: []types.Page{{
		Markdown: "![abc](abc)",
		Images:   []types.Image{{ID: "abc", Payload: onePixelPNG}},
	}}}

	res, err := newTestPipeline(t, prov, testConfig()).Process(context.Background(), pdfPath)
	require.NoError(t, err)

	imgPath := filepath.Join(filepath.Dir(pdfPath), "report_images", "abc.png")
	data, err := os.ReadFile(imgPath)
	require.NoError(t, err)
	assert.Equal(t, mustDecode(t, onePixelPNG), data)

	assert.Equal(t, "![abc](report_images/abc.png)", res.Markdown)
	assert.Equal(t, []string{imgPath}, res.ImageFiles)
	assert.Equal(t, 1, res.Pages)
	assert.Empty(t, res.Unresolved)

	assert.Equal(t, []string{"upload", "sign", "ocr"}, prov.calls)
	assert.Equal(t, "report.pdf", prov.name)
	assert.Equal(t, []byte("fake pdf"), prov.content)
	assert.Equal(t, time.Hour, prov.expiry)
	assert.Equal(t, types.DefaultModel, prov.model)
}

func TestProcess_StemWithSpaces(t *testing.T) {
	pdfPath := setupPDF(t, "my report (v2).pdf")
	prov := &fakeProvider{pages: []types.Page{{
		Markdown: "Intro\n\n![abc](abc)",
		Images:   []types.Image{{ID: "abc", Payload: "data:image/png;base64," + onePixelPNG}},
	}}}

	res, err := newTestPipeline(t, prov, testConfig()).Process(context.Background(), pdfPath)
	require.NoError(t, err)

	assert.Equal(t, "Intro\n\n![abc](my%20report%20%28v2%29_images/abc.png)", res.Markdown)
	assert.NotContains(t, strings.TrimPrefix(res.Markdown, "Intro\n\n"), " ")
	assert.FileExists(t, filepath.Join(filepath.Dir(pdfPath), "my report (v2)_images", "abc.png"))
	assert.Empty(t, res.Unresolved)
}

func TestProcess_StemWithSchemeLikeColon(t *testing.T) {
	pdfPath := setupPDF(t, "notes:v2.pdf")
	prov := &fakeProvider{pages: []types.Page{{
		Markdown: "![abc](abc)",
		Images:   []types.Image{{ID: "abc", Payload: onePixelPNG}},
	}}}

	res, err := newTestPipeline(t, prov, testConfig()).Process(context.Background(), pdfPath)
	require.NoError(t, err)

	assert.Equal(t, "![abc](notes%3Av2_images/abc.png)", res.Markdown)
	u, err := url.Parse("notes%3Av2_images/abc.png")
	require.NoError(t, err)
	assert.Empty(t, u.Scheme)
	assert.FileExists(t, filepath.Join(filepath.Dir(pdfPath), "notes:v2_images", "abc.png"))
	assert.Empty(t, res.Unresolved)
}

func TestProcess_MultiplePages(t *testing.T) {
	pdfPath := setupPDF(t, "doc.pdf")
	pages := []types.Page{
		{Index: 0, Markdown: "# One\n\n![img-0.jpeg](img-0.jpeg)", Images: []types.Image{
			{ID: "img-0.jpeg", Payload: base64.StdEncoding.EncodeToString([]byte("zero"))},
		}},
		{Index: 1, Markdown: "# Two"},
		{Index: 2, Markdown: "![img-1.jpeg](img-1.jpeg) and ![img-2.jpeg](img-2.jpeg)", Images: []types.Image{
			{ID: "img-1.jpeg", Payload: base64.StdEncoding.EncodeToString([]byte("one"))},
			{ID: "img-2.jpeg", Payload: base64.StdEncoding.EncodeToString([]byte("two"))},
		}},
	}
	prov := &fakeProvider{pages: pages}

	res, err := newTestPipeline(t, prov, testConfig()).Process(context.Background(), pdfPath)
	require.NoError(t, err)

	imagesDir := filepath.Join(filepath.Dir(pdfPath), "doc_images")
	assert.Equal(t, []string{"img-0.jpeg.png", "img-1.jpeg.png", "img-2.jpeg.png"}, listDir(t, imagesDir))
	for id, want := range map[string]string{"img-0.jpeg": "zero", "img-1.jpeg": "one", "img-2.jpeg": "two"} {
		data, err := os.ReadFile(filepath.Join(imagesDir, id+".png"))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}

	want := "# One\n\n![img-0.jpeg](doc_images/img-0.jpeg.png)" +
		"\n\n# Two" +
		"\n\n![img-1.jpeg](doc_images/img-1.jpeg.png) and ![img-2.jpeg](doc_images/img-2.jpeg.png)"
	assert.Equal(t, want, res.Markdown)
	assert.Len(t, res.ImageFiles, types.ImageCount(pages))
	assert.Equal(t, 3, res.Pages)
}

func TestProcess_NoImagesCreatesNoDirectory(t *testing.T) {
	pdfPath := setupPDF(t, "text.pdf")
	prov := &fakeProvider{pages: []types.Page{{Markdown: "plain"}}}

	res, err := newTestPipeline(t, prov, testConfig()).Process(context.Background(), pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "plain", res.Markdown)
	assert.NoDirExists(t, filepath.Join(filepath.Dir(pdfPath), "text_images"))
}

func TestProcess_UnresolvedReferencesLeftUntouched(t *testing.T) {
	pdfPath := setupPDF(t, "doc.pdf")
	prov := &fakeProvider{pages: []types.Page{{
		Markdown: "![a](a) ![ghost](ghost) ![logo](https://example.com/logo.png)",
		Images:   []types.Image{{ID: "a", Payload: onePixelPNG}},
	}}}

	res, err := newTestPipeline(t, prov, testConfig()).Process(context.Background(), pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "![a](doc_images/a.png) ![ghost](ghost) ![logo](https://example.com/logo.png)", res.Markdown)
	assert.Equal(t, []string{"ghost"}, res.Unresolved)
}

func TestProcess_MissingFile(t *testing.T) {
	prov := &fakeProvider{}
	missing := filepath.Join(t.TempDir(), "nope.pdf")

	_, err := newTestPipeline(t, prov, testConfig()).Process(context.Background(), missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, KindInput, KindOf(err))
	assert.Equal(t, "PDF file does not exist: "+missing, err.Error())
	var mf *MissingFileError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, missing, mf.Path)
	assert.Empty(t, prov.calls, "no provider call may happen before the file is validated")
}

func TestProcess_DirectoryIsNotAFile(t *testing.T) {
	prov := &fakeProvider{}
	dir := filepath.Join(t.TempDir(), "folder.pdf")
	require.NoError(t, os.Mkdir(dir, 0o755))

	_, err := newTestPipeline(t, prov, testConfig()).Process(context.Background(), dir)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "PDF file does not exist: "+dir, err.Error())
	assert.Equal(t, KindInput, KindOf(err))
	assert.Empty(t, prov.calls)
}

func TestProcess_ProviderFailures(t *testing.T) {
	tests := []struct {
		failAt    string
		wantCalls []string
		wantMsg   string
	}{
		{"upload", []string{"upload"}, "upload rejected"},
		{"sign", []string{"upload", "sign"}, "signing failed"},
		{"ocr", []string{"upload", "sign", "ocr"}, "ocr failed"},
	}

	for _, tt := range tests {
		t.Run(tt.failAt, func(t *testing.T) {
			pdfPath := setupPDF(t, "doc.pdf")
			prov := &fakeProvider{failAt: tt.failAt}

			_, err := newTestPipeline(t, prov, testConfig()).Process(context.Background(), pdfPath)
			require.Error(t, err)
			assert.Equal(t, KindProvider, KindOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.wantCalls, prov.calls)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.failAt, e.Op)
		})
	}
}

func TestProcess_DecodeFailureAbortsAndKeepsEarlierImages(t *testing.T) {
	pdfPath := setupPDF(t, "doc.pdf")
	prov := &fakeProvider{pages: []types.Page{
		{Markdown: "![a](a)", Images: []types.Image{{ID: "a", Payload: onePixelPNG}}},
		{Markdown: "![b](b)", Images: []types.Image{{ID: "b", Payload: "!!not base64!!"}}},
	}}

	_, err := newTestPipeline(t, prov, testConfig()).Process(context.Background(), pdfPath)
	require.Error(t, err)
	assert.Equal(t, KindDecode, KindOf(err))
	assert.Contains(t, err.Error(), "decoding image b")

	imagesDir := filepath.Join(filepath.Dir(pdfPath), "doc_images")
	assert.Equal(t, []string{"a.png"}, listDir(t, imagesDir))
}

func TestConvert_WritesMarkdownAndIsIdempotent(t *testing.T) {
	pdfPath := setupPDF(t, "doc.pdf")
	prov := &fakeProvider{pages: []types.Page{
		{Markdown: "![x](x)", Images: []types.Image{{ID: "x", Payload: onePixelPNG}}},
		{Markdown: "tail"},
	}}
	mdPath := filepath.Join(filepath.Dir(pdfPath), "doc.md")
	require.NoError(t, os.WriteFile(mdPath, []byte("stale content"), 0o644))

	pl := newTestPipeline(t, prov, testConfig())

	res1, err := pl.Convert(context.Background(), pdfPath)
	require.NoError(t, err)
	assert.Equal(t, mdPath, res1.OutputPath)
	first, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Equal(t, "![x](doc_images/x.png)\n\ntail", string(first))

	imagesDir := filepath.Join(filepath.Dir(pdfPath), "doc_images")
	firstImages := listDir(t, imagesDir)

	_, err = pl.Convert(context.Background(), pdfPath)
	require.NoError(t, err)
	second, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstImages, listDir(t, imagesDir))
	assert.Equal(t, []string{"x.png"}, firstImages)
}

func TestProcess_Frontmatter(t *testing.T) {
	pdfPath := setupPDF(t, "doc.pdf")
	prov := &fakeProvider{pages: []types.Page{
		{Markdown: "# Body\n\n![x](x)", Images: []types.Image{{ID: "x", Payload: onePixelPNG}}},
	}}
	cfg := testConfig()
	cfg.Conversion.Frontmatter = true

	res, err := newTestPipeline(t, prov, cfg).Process(context.Background(), pdfPath)
	require.NoError(t, err)

	content := res.Markdown
	assert.True(t, strings.HasPrefix(content, "---\n"), "output should start with a frontmatter delimiter")
	assert.Contains(t, content, "source_pdf: "+pdfPath)
	assert.Contains(t, content, "converted_at: \"2026-10-17T12:00:00Z\"")
	assert.Contains(t, content, "model: mistral-ocr-latest")
	assert.Contains(t, content, "pages: 1")
	assert.Contains(t, content, "images: 1")
	assert.True(t, strings.HasSuffix(content, "---\n\n# Body\n\n![x](doc_images/x.png)"))
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(&fakeProvider{}, types.Config{}, zerolog.Nop())
	require.Error(t, err)
	assert.Equal(t, KindConfig, KindOf(err))
	assert.ErrorIs(t, err, types.ErrMissingAPIKey)
}

func TestWriteMarkdown_Failure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "out.md")
	err := WriteMarkdown(path, "x")
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "provider", KindProvider.String())
	assert.Equal(t, "decode", KindDecode.String())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}
