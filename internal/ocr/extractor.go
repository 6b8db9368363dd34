package ocr

import (
	"context"
	"image"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"scanorder/internal/logger"
	"scanorder/internal/metrics"
)

// Extractor dispatches a stored file to PDF rendering and OCR.
type Extractor struct {
	engine  Engine
	pdf     PDFRenderer
	enhance bool
	log     zerolog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithEnhance turns on grayscale, contrast and sharpening before recognition.
func WithEnhance(enabled bool) Option {
	return func(e *Extractor) { e.enhance = enabled }
}

// NewExtractor combines an engine and a PDF renderer.
func NewExtractor(engine Engine, pdf PDFRenderer, opts ...Option) *Extractor {
	e := &Extractor{
		engine: engine,
		pdf:    pdf,
		log:    logger.WithComponent("extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EngineName returns the name of the configured engine.
func (e *Extractor) EngineName() string { return e.engine.Name() }

// OCRAvailable reports whether the configured engine can run.
func (e *Extractor) OCRAvailable() bool { return e.engine.Available() }

// PDFAvailable reports whether PDF rendering can run.
func (e *Extractor) PDFAvailable() bool { return e.pdf != nil && e.pdf.Available() }

// Close releases the engine's client when it holds one (Vision, Document AI).
func (e *Extractor) Close() error {
	if c, ok := e.engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Extract returns the text of the file at path. A ".pdf" extension
// (any case) renders page 1; anything else is opened as an image.
// A missing engine or renderer yields a diagnostic Result, not an error.
// Decode, render and recognition failures are returned as errors.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	const op = "Extract"
	start := time.Now()

	result, err := e.extract(ctx, path)
	result.Engine = e.engine.Name()
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(start)

	if err != nil {
		metrics.RecordExtraction(result.Engine, "error", result.ProcessingDuration)
		e.log.Error().
			Err(err).
			Str("file", filepath.Base(path)).
			Msg("Text extraction failed")
		return Result{}, WrapOCRError(op, err, filepath.Base(path))
	}

	metrics.RecordExtraction(result.Engine, string(result.Status), result.ProcessingDuration)
	e.log.Info().
		Str("file", filepath.Base(path)).
		Str("status", string(result.Status)).
		Int("text_length", len(result.Text)).
		Dur("duration", result.ProcessingDuration).
		Msg("Text extraction completed")

	return result, nil
}

func (e *Extractor) extract(ctx context.Context, path string) (Result, error) {
	if !e.engine.Available() {
		return Result{Text: NotInstalledOCR, Status: StatusOCRUnavailable}, nil
	}

	var (
		img image.Image
		err error
	)
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		if !e.PDFAvailable() {
			return Result{Text: NotInstalledPDF, Status: StatusPDFUnavailable}, nil
		}
		img, err = e.pdf.RenderFirstPage(ctx, path)
	} else {
		img, err = openImage(path)
	}
	if err != nil {
		return Result{}, err
	}

	if e.enhance {
		img = enhanceForOCR(img)
	}

	text, err := e.engine.Recognize(ctx, img)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Status: StatusOK}, nil
}
