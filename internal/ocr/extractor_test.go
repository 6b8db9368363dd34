package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	available bool
	text      string
	err       error
	calls     int
	lastSize  image.Point
}

func (f *fakeEngine) Name() string    { return "fake" }
func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) Recognize(_ context.Context, img image.Image) (string, error) {
	f.calls++
	f.lastSize = img.Bounds().Size()
	return f.text, f.err
}

type closingEngine struct {
	fakeEngine
	closed   int
	closeErr error
}

func (c *closingEngine) Close() error {
	c.closed++
	return c.closeErr
}

type fakeRenderer struct {
	available bool
	err       error
	calls     int
}

func (f *fakeRenderer) Available() bool { return f.available }

func (f *fakeRenderer) RenderFirstPage(context.Context, string) (image.Image, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return imaging.New(30, 40, color.White), nil
}

func writeTestImage(t *testing.T, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, imaging.Save(imaging.New(w, h, color.White), path))
	return path
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractImage(t *testing.T) {
	engine := &fakeEngine{available: true, text: "PO: 12345\nTotal: 10\n"}
	renderer := &fakeRenderer{available: true}
	ex := NewExtractor(engine, renderer)

	res, err := ex.Extract(context.Background(), writeTestImage(t, "scan.png", 20, 10))
	require.NoError(t, err)

	assert.Equal(t, "PO: 12345\nTotal: 10\n", res.Text)
	assert.Equal(t, StatusOK, res.Status)
	assert.False(t, res.Diagnostic())
	assert.Equal(t, "fake", res.Engine)
	assert.Equal(t, image.Pt(20, 10), engine.lastSize)
	assert.Zero(t, renderer.calls)
}

func TestExtractImageWithEnhance(t *testing.T) {
	engine := &fakeEngine{available: true, text: "ok"}
	ex := NewExtractor(engine, nil, WithEnhance(true))

	res, err := ex.Extract(context.Background(), writeTestImage(t, "photo.jpg", 16, 16))
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, image.Pt(16, 16), engine.lastSize)
}

func TestExtractPDFRendersFirstPage(t *testing.T) {
	engine := &fakeEngine{available: true, text: "page one"}
	renderer := &fakeRenderer{available: true}
	ex := NewExtractor(engine, renderer)

	res, err := ex.Extract(context.Background(), writeTestFile(t, "ORDER.PDF", "%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "page one", res.Text)
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, image.Pt(30, 40), engine.lastSize)
}

func TestExtractOCRUnavailable(t *testing.T) {
	for _, name := range []string{"scan.png", "order.pdf"} {
		t.Run(name, func(t *testing.T) {
			engine := &fakeEngine{available: false}
			renderer := &fakeRenderer{available: false}
			ex := NewExtractor(engine, renderer)

			res, err := ex.Extract(context.Background(), writeTestFile(t, name, "garbage"))
			require.NoError(t, err)

			assert.Equal(t, "OCR engine not installed", res.Text)
			assert.Equal(t, StatusOCRUnavailable, res.Status)
			assert.True(t, res.Diagnostic())
			assert.Zero(t, engine.calls)
			assert.Zero(t, renderer.calls)
		})
	}
}

func TestExtractPDFUnavailable(t *testing.T) {
	engine := &fakeEngine{available: true}

	for name, renderer := range map[string]PDFRenderer{
		"missing renderer":     &fakeRenderer{available: false},
		"no renderer injected": nil,
	} {
		t.Run(name, func(t *testing.T) {
			ex := NewExtractor(engine, renderer)

			res, err := ex.Extract(context.Background(), writeTestFile(t, "order.pdf", "%PDF-1.4"))
			require.NoError(t, err)

			assert.Equal(t, "PDF support not installed", res.Text)
			assert.Equal(t, StatusPDFUnavailable, res.Status)
		})
	}
	assert.Zero(t, engine.calls)
}

func TestExtractCorruptImage(t *testing.T) {
	ex := NewExtractor(&fakeEngine{available: true}, nil)

	_, err := ex.Extract(context.Background(), writeTestFile(t, "broken.jpg", "not a jpeg"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidImage)

	var ocrErr *OCRError
	require.ErrorAs(t, err, &ocrErr)
}

func TestExtractPropagatesBackendFailures(t *testing.T) {
	renderErr := errors.New("syntax error in xref")
	ex := NewExtractor(&fakeEngine{available: true}, &fakeRenderer{available: true, err: renderErr})

	_, err := ex.Extract(context.Background(), writeTestFile(t, "bad.pdf", "%PDF"))
	assert.ErrorIs(t, err, renderErr)

	ex = NewExtractor(&fakeEngine{available: true, err: ErrOCRFailed}, nil)
	_, err = ex.Extract(context.Background(), writeTestImage(t, "scan.png", 4, 4))
	assert.ErrorIs(t, err, ErrOCRFailed)
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(context.Background(), EngineConfig{Name: "tesseract", Language: "deu"})
	require.NoError(t, err)
	assert.Equal(t, "tesseract", engine.Name())

	engine, err = NewEngine(context.Background(), EngineConfig{})
	require.NoError(t, err)
	assert.Equal(t, "tesseract", engine.Name())

	_, err = NewEngine(context.Background(), EngineConfig{Name: "abbyy"})
	assert.Error(t, err)
}

func TestNewEngineDocumentAIWithoutProcessorIsUnavailable(t *testing.T) {
	engine, err := NewEngine(context.Background(), EngineConfig{Name: "documentai"})
	require.NoError(t, err)

	assert.Equal(t, "documentai", engine.Name())
	assert.False(t, engine.Available())

	_, err = engine.Recognize(context.Background(), imaging.New(1, 1, color.White))
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestWrapOCRErrorKeepsExistingWrapper(t *testing.T) {
	inner := NewOCRError("inner", ErrOCRFailed, "details")
	assert.Same(t, inner, WrapOCRError("outer", inner, "").(*OCRError))
	assert.Nil(t, WrapOCRError("outer", nil, ""))
	assert.EqualError(t, inner, "ocr: inner failed: details: OCR processing failed")
}

func TestExtractorClose(t *testing.T) {
	engine := &closingEngine{fakeEngine: fakeEngine{available: true}}
	require.NoError(t, NewExtractor(engine, nil).Close())
	assert.Equal(t, 1, engine.closed)

	closeErr := errors.New("connection reset")
	engine = &closingEngine{closeErr: closeErr}
	assert.ErrorIs(t, NewExtractor(engine, nil).Close(), closeErr)

	assert.NoError(t, NewExtractor(&fakeEngine{}, nil).Close())
}
