//go:build !gosseract

package ocr

import (
	"context"
	"image"
)

// GosseractEngine is the stand-in used when the binary was built without
// -tags gosseract. It always reports unavailable.
type GosseractEngine struct{}

// NewGosseractEngine returns the unavailable stand-in.
func NewGosseractEngine(string) *GosseractEngine {
	return &GosseractEngine{}
}

func (e *GosseractEngine) Name() string { return "gosseract" }

func (e *GosseractEngine) Available() bool { return false }

func (e *GosseractEngine) Recognize(context.Context, image.Image) (string, error) {
	return "", NewOCRError("GosseractEngine.Recognize", ErrEngineUnavailable, "rebuild with -tags gosseract")
}
