package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultPDFDPI is the rendering resolution used when none is configured.
const DefaultPDFDPI = 200

// PopplerRenderer rasterizes PDF pages with poppler's pdftoppm.
type PopplerRenderer struct {
	binary string
	dpi    int
}

// NewPopplerRenderer returns a renderer for pdftoppm on PATH at the given resolution.
func NewPopplerRenderer(dpi int) *PopplerRenderer {
	if dpi <= 0 {
		dpi = DefaultPDFDPI
	}
	return &PopplerRenderer{binary: "pdftoppm", dpi: dpi}
}

// Available reports whether pdftoppm can be found.
func (r *PopplerRenderer) Available() bool {
	_, err := lookPath(r.binary)
	return err == nil
}

// RenderFirstPage renders page 1 only.
func (r *PopplerRenderer) RenderFirstPage(ctx context.Context, path string) (image.Image, error) {
	const op = "PopplerRenderer.RenderFirstPage"

	bin, err := lookPath(r.binary)
	if err != nil {
		return nil, WrapOCRError(op, ErrRendererUnavailable, err.Error())
	}

	dir, err := os.MkdirTemp("", "scanorder-pdf-*")
	if err != nil {
		return nil, WrapOCRError(op, err, "create temp dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	// -singlefile writes <prefix>.png without a page number suffix
	prefix := filepath.Join(dir, "page")
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin,
		"-f", "1", "-l", "1",
		"-r", strconv.Itoa(r.dpi),
		"-png", "-singlefile",
		path, prefix,
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, WrapOCRError(op, ErrInvalidPDF, fmt.Sprintf("%v: %s", err, strings.TrimSpace(stderr.String())))
	}

	img, err := imaging.Open(prefix + ".png")
	if err != nil {
		return nil, WrapOCRError(op, ErrInvalidPDF, fmt.Sprintf("read rendered page: %v", err))
	}
	return img, nil
}
