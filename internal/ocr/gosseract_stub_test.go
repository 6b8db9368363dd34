//go:build !gosseract

package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGosseractStubIsUnavailable(t *testing.T) {
	engine, err := NewEngine(context.Background(), EngineConfig{Name: "gosseract"})
	require.NoError(t, err)

	assert.Equal(t, "gosseract", engine.Name())
	assert.False(t, engine.Available())

	res, err := NewExtractor(engine, nil).Extract(context.Background(), writeTestImage(t, "scan.png", 2, 2))
	require.NoError(t, err)
	assert.Equal(t, NotInstalledOCR, res.Text)
}
