package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ensureBinary skips the test when name is not reachable on PATH.
func ensureBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not installed in PATH", name)
	}
}

func withMissingBinaries(t *testing.T) {
	t.Helper()
	orig := lookPath
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Cleanup(func() { lookPath = orig })
}

func TestTesseractEngineMissingBinary(t *testing.T) {
	withMissingBinaries(t)

	engine := NewTesseractEngine("")
	assert.False(t, engine.Available())

	_, err := engine.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestPopplerRendererMissingBinary(t *testing.T) {
	withMissingBinaries(t)

	renderer := NewPopplerRenderer(0)
	assert.False(t, renderer.Available())

	_, err := renderer.RenderFirstPage(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrRendererUnavailable)
}

func TestMissingBinariesYieldDiagnostics(t *testing.T) {
	withMissingBinaries(t)
	ex := NewExtractor(NewTesseractEngine("eng"), NewPopplerRenderer(150))

	res, err := ex.Extract(context.Background(), filepath.Join(t.TempDir(), "scan.pdf"))
	require.NoError(t, err)
	assert.Equal(t, NotInstalledOCR, res.Text)
}

func TestPopplerRendererRejectsInvalidPDF(t *testing.T) {
	ensureBinary(t, "pdftoppm")

	_, err := NewPopplerRenderer(72).RenderFirstPage(context.Background(), writeTestFile(t, "junk.pdf", "not a pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPDF))
}

func TestTesseractEngineRecognize(t *testing.T) {
	ensureBinary(t, "tesseract")

	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString("PO: 12345")

	// basicfont glyphs are tiny; upscale so tesseract sees a readable x-height
	scaled := imaging.Resize(img, img.Bounds().Dx()*4, 0, imaging.NearestNeighbor)

	text, err := NewTesseractEngine("eng").Recognize(context.Background(), scaled)
	require.NoError(t, err)
	if !strings.Contains(text, "123") {
		t.Fatalf("unexpected OCR output: %q", text)
	}
}
