//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine runs libtesseract in-process through gosseract.
// Built only with -tags gosseract since it needs the tesseract headers and cgo.
type GosseractEngine struct {
	language      string
	clientFactory func() *gosseract.Client
}

// NewGosseractEngine constructs an in-process Tesseract engine.
func NewGosseractEngine(language string) *GosseractEngine {
	if language == "" {
		language = "eng"
	}
	return &GosseractEngine{language: language, clientFactory: gosseract.NewClient}
}

func (e *GosseractEngine) Name() string { return "gosseract" }

// Available is always true once the binding is compiled in.
func (e *GosseractEngine) Available() bool { return true }

// Recognize uses a fresh client per call; gosseract clients are not safe for concurrent use.
func (e *GosseractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	const op = "GosseractEngine.Recognize"

	if err := ctx.Err(); err != nil {
		return "", WrapOCRError(op, err, "")
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", WrapOCRError(op, err, "")
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(e.language); err != nil {
		return "", WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("set language: %v", err))
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return "", WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("set image: %v", err))
	}

	text, err := c.Text()
	if err != nil {
		return "", WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("recognize text: %v", err))
	}
	return text, nil
}
