package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"scanorder/internal/logger"
)

// Supported OCR engines.
const (
	EngineTesseract  = "tesseract"
	EngineGosseract  = "gosseract"
	EngineVision     = "vision"
	EngineDocumentAI = "documentai"
)

type Config struct {
	// HTTP Server Configuration
	Addr        string
	UploadDir   string
	MaxUploadMB int64

	// OCR Configuration
	OCREngine   string
	OCRLanguage string
	OCREnhance  bool
	PDFDPI      int

	// Google Cloud Configuration (vision / documentai engines)
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Optional: Google Sheets sales order ledger
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		Addr:                  getEnv("ADDR", ":"+getEnv("PORT", "8080")),
		UploadDir:             getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadMB:           int64(getEnvInt("MAX_UPLOAD_MB", 32)),
		OCREngine:             strings.ToLower(getEnv("OCR_ENGINE", EngineTesseract)),
		OCRLanguage:           getEnv("OCR_LANGUAGE", "eng"),
		OCREnhance:            getEnvBool("OCR_ENHANCE", false),
		PDFDPI:                getEnvInt("PDF_DPI", 200),
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		GoogleSheetURL:        getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:  getEnv("GOOGLE_SHEET_WORKSHEET", "Sales_Orders"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCREngine {
	case EngineTesseract, EngineGosseract, EngineVision, EngineDocumentAI:
	default:
		return fmt.Errorf("OCR_ENGINE %q is not supported", c.OCREngine)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.PDFDPI <= 0 {
		return fmt.Errorf("PDF_DPI must be positive")
	}
	// Document AI cannot run without a processor; the engine would only ever report unavailable
	if c.OCREngine == EngineDocumentAI && c.DocumentAIProcessorID == "" {
		return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for OCR_ENGINE=documentai")
	}
	return nil
}

// MaxUploadBytes returns the request body limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
