package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strings"
)

// lookPath is the exec.LookPath used to probe for external binaries.
// Tests replace it to simulate a missing binary.
var lookPath = exec.LookPath

// TesseractEngine runs the tesseract command line tool.
type TesseractEngine struct {
	binary   string
	language string
}

// NewTesseractEngine returns an engine for the tesseract binary on PATH.
// An empty language defaults to "eng".
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{binary: "tesseract", language: language}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Available reports whether the tesseract binary can be found.
func (e *TesseractEngine) Available() bool {
	_, err := lookPath(e.binary)
	return err == nil
}

// Recognize writes img to a temporary PNG and returns tesseract's stdout.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	const op = "TesseractEngine.Recognize"

	path, err := lookPath(e.binary)
	if err != nil {
		return "", WrapOCRError(op, ErrEngineUnavailable, err.Error())
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", WrapOCRError(op, err, "")
	}

	tmp, err := os.CreateTemp("", "scanorder-ocr-*.png")
	if err != nil {
		return "", WrapOCRError(op, err, "create temp file")
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", WrapOCRError(op, err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return "", WrapOCRError(op, err, "close temp file")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, tmpPath, "stdout", "-l", e.language)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("%v: %s", err, strings.TrimSpace(stderr.String())))
	}

	return string(out), nil
}
