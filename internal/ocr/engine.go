package ocr

import (
	"context"
	"fmt"
	"image"

	"scanorder/internal/logger"
)

// EngineConfig selects and configures an Engine.
type EngineConfig struct {
	// Name is one of "tesseract", "gosseract", "vision" or "documentai".
	Name string

	// Language is the tesseract language code (e.g., "eng", "eng+deu").
	Language string

	// DocumentAI is only used by the documentai engine.
	DocumentAI DocumentAIConfig
}

// NewEngine builds the configured engine. A cloud engine whose client cannot
// be created is returned as an unavailable engine rather than an error, so
// requests receive the NotInstalledOCR diagnostic instead of failing.
func NewEngine(ctx context.Context, cfg EngineConfig) (Engine, error) {
	log := logger.WithComponent("ocr")

	switch cfg.Name {
	case "", "tesseract":
		return NewTesseractEngine(cfg.Language), nil
	case "gosseract":
		return NewGosseractEngine(cfg.Language), nil
	case "vision":
		engine, err := NewGoogleVisionEngine(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Vision engine unavailable")
			return unavailableEngine{name: "vision"}, nil
		}
		return engine, nil
	case "documentai":
		engine, err := NewDocumentAIEngine(ctx, cfg.DocumentAI)
		if err != nil {
			log.Warn().Err(err).Msg("Document AI engine unavailable")
			return unavailableEngine{name: "documentai"}, nil
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.Name)
	}
}

// unavailableEngine stands in for a backend that could not be initialized.
type unavailableEngine struct {
	name string
}

func (u unavailableEngine) Name() string    { return u.name }
func (u unavailableEngine) Available() bool { return false }

func (u unavailableEngine) Recognize(context.Context, image.Image) (string, error) {
	return "", NewOCRError(u.name+".Recognize", ErrEngineUnavailable, "")
}
