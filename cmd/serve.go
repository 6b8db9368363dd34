package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"scanorder/internal/config"
	"scanorder/internal/logger"
	"scanorder/internal/ocr"
	"scanorder/internal/order"
	"scanorder/internal/server"
	"scanorder/internal/sheets"
	"scanorder/internal/storage"
	"scanorder/internal/validation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the purchase order upload form",
	Long: `Start the HTTP server with the three-step flow:

  GET  /        upload form
  POST /        store uploads, extract text, show it for review
  POST /submit  validate the reviewed text and create sales orders

Also served: /healthz (OCR and PDF capability) and /metrics (Prometheus).

Environment variables:
  OCR_ENGINE       tesseract (default), gosseract, vision or documentai
  OCR_LANGUAGE     tesseract language code (default: eng)
  OCR_ENHANCE      preprocess images before OCR (default: false)
  PDF_DPI          resolution for rendering PDF page 1 (default: 200)
  UPLOAD_DIR       directory for stored uploads (default: uploads)
  MAX_UPLOAD_MB    request body limit (default: 32)
  GOOGLE_SHEET_URL optional spreadsheet that records every sales order`,
	Example: `  # Serve on :8080 with the tesseract binary
  scanorder serve

  # Serve on another address with Google Cloud Vision
  OCR_ENGINE=vision scanorder serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: $ADDR or :$PORT)")
	serveCmd.Flags().String("upload-dir", "", "Upload directory (default: $UPLOAD_DIR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	c, err := loadedConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		c.Addr = addr
	}
	if dir, _ := cmd.Flags().GetString("upload-dir"); dir != "" {
		c.UploadDir = dir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractor, err := newExtractor(ctx, c, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := extractor.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close OCR engine")
		}
	}()

	var ledger order.Ledger
	if c.GoogleSheetURL != "" {
		sheetsService, err := sheets.NewSheetsService(ctx, c.GoogleSheetURL, c.GoogleSheetWorksheet)
		if err != nil {
			return fmt.Errorf("failed to create sales order ledger: %w", err)
		}
		ledger = sheetsService
		log.Info().Str("worksheet", c.GoogleSheetWorksheet).Msg("Recording sales orders in Google Sheets")
	}

	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(
		storage.NewStore(c.UploadDir),
		extractor,
		order.NewProcessor(validation.DefaultVerifier(), ledger),
		server.Options{MaxBodyBytes: c.MaxUploadBytes()},
	)

	log.Info().
		Str("addr", c.Addr).
		Str("upload_dir", c.UploadDir).
		Str("ocr_engine", extractor.EngineName()).
		Bool("ocr_available", extractor.OCRAvailable()).
		Bool("pdf_available", extractor.PDFAvailable()).
		Msg("Starting scanorder server")

	return srv.Run(ctx, c.Addr)
}

// newExtractor builds the OCR pipeline from configuration and warns about missing backends.
func newExtractor(ctx context.Context, c *config.Config, log zerolog.Logger) (*ocr.Extractor, error) {
	engine, err := ocr.NewEngine(ctx, ocr.EngineConfig{
		Name:     c.OCREngine,
		Language: c.OCRLanguage,
		DocumentAI: ocr.DocumentAIConfig{
			ProjectID:   c.GoogleCloudProject,
			Location:    c.GoogleCloudLocation,
			ProcessorID: c.DocumentAIProcessorID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}

	extractor := ocr.NewExtractor(engine, ocr.NewPopplerRenderer(c.PDFDPI), ocr.WithEnhance(c.OCREnhance))

	if !extractor.OCRAvailable() {
		log.Warn().Str("engine", engine.Name()).Msg("OCR engine not available; uploads will show a diagnostic instead of text")
	}
	if !extractor.PDFAvailable() {
		log.Warn().Msg("pdftoppm not found; PDF uploads will show a diagnostic instead of text")
	}
	return extractor, nil
}
