// Package ocr extracts text from uploaded images and PDFs.
//
// Extraction is split into two pluggable capabilities:
//   - an Engine recognizes text in a decoded image
//   - a PDFRenderer turns the first page of a PDF into an image
//
// Both report whether they can run at all through Available. When either
// one is missing, Extract does not fail; it returns a Result whose Text is a
// fixed diagnostic string (NotInstalledOCR or NotInstalledPDF) so the caller
// can show it in place of recognized content.
//
// Supported engines:
//   - tesseract: the tesseract binary on PATH (default)
//   - gosseract: in-process libtesseract, built with -tags gosseract
//   - vision: Google Cloud Vision document text detection
//   - documentai: Google Document AI OCR processor
//
// PDF pages are rendered with poppler's pdftoppm. Only page 1 is ever read.
package ocr

import (
	"context"
	"image"
	"time"
)

// Diagnostic texts returned in place of recognized text.
const (
	NotInstalledOCR = "OCR engine not installed"
	NotInstalledPDF = "PDF support not installed"
)

// Status tells whether a Result carries recognized text or a diagnostic.
type Status string

const (
	StatusOK             Status = "ok"
	StatusOCRUnavailable Status = "ocr_unavailable"
	StatusPDFUnavailable Status = "pdf_unavailable"
)

// Engine recognizes text in an image.
type Engine interface {
	// Name identifies the engine in logs and metrics.
	Name() string

	// Available reports whether the backend can be used in this process.
	Available() bool

	// Recognize returns the text found in img, with the backend's own line layout.
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// PDFRenderer rasterizes PDF pages.
type PDFRenderer interface {
	// Available reports whether PDF rendering can be used in this process.
	Available() bool

	// RenderFirstPage returns page 1 of the PDF at path as an image.
	RenderFirstPage(ctx context.Context, path string) (image.Image, error)
}

// Result is the outcome of extracting text from one stored file.
type Result struct {
	// Text is the recognized text, or a diagnostic string when Status is not StatusOK.
	Text string `json:"text"`

	// Status distinguishes recognized text from a missing-backend diagnostic.
	Status Status `json:"status"`

	// Engine is the name of the engine that handled the request.
	Engine string `json:"engine"`

	// ProcessedAt is the timestamp when extraction completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration covers page rendering and recognition.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// Diagnostic reports whether Text is a missing-backend message rather than recognized text.
func (r Result) Diagnostic() bool {
	return r.Status != StatusOK
}
