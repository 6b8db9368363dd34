package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"scanorder/internal/logger"
	"scanorder/internal/ocr"
	"scanorder/internal/storage"
	"scanorder/internal/validation"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [file]",
	Short: "Extract text from an image or PDF with the configured OCR engine",
	Long: `Run the same extraction the web form uses on a local file.

PNG, JPG and JPEG files are recognized directly. For PDF files only the first
page is rendered (with pdftoppm) and recognized. When the OCR engine or PDF
support is missing, the diagnostic text is printed instead, exactly as the
review page would show it.`,
	Example: `  # Print the text of a scanned order
  scanorder ocr order.png

  # Save extracted text and PO check as JSON
  scanorder ocr order.pdf --json -o result.json

  # Use Google Cloud Vision for a single run
  OCR_ENGINE=vision scanorder ocr photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

// OCROutput represents the JSON output structure when --json flag is used
type OCROutput struct {
	Text               string    `json:"text"`
	Status             string    `json:"status"`
	Engine             string    `json:"engine"`
	PONumber           string    `json:"po_number,omitempty"`
	POValid            bool      `json:"po_valid"`
	ProcessedAt        time.Time `json:"processed_at"`
	ProcessingDuration string    `json:"processing_duration"`
	FileName           string    `json:"file_name"`
	FileSize           int64     `json:"file_size"`
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ocrCmd.Flags().Bool("json", false, "Output as JSON")
	ocrCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	path := args[0]

	log.Info().
		Str("file", path).
		Str("output", outputPath).
		Bool("json", jsonOutput).
		Int("timeout", timeoutSecs).
		Msg("Starting OCR processing")

	fileInfo, err := validateInputFile(path, log)
	if err != nil {
		return err
	}

	c, err := loadedConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	extractor, err := newExtractor(ctx, c, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := extractor.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close OCR engine")
		}
	}()

	result, err := extractor.Extract(ctx, path)
	if err != nil {
		return handleOCRError(err, log)
	}

	return outputResults(result, fileInfo, outputPath, jsonOutput, log)
}

// validateInputFile checks that path is a readable, non-empty file with a supported extension
func validateInputFile(path string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", path).Msg("File not found")
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", path).Msg("Permission denied accessing file")
			return nil, fmt.Errorf("permission denied accessing file: %s", path)
		}
		return nil, fmt.Errorf("error accessing file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}

	if !storage.AllowedFile(path) {
		log.Error().Str("file", path).Msg("Unsupported file extension")
		return nil, fmt.Errorf("unsupported file type %q: expected png, jpg, jpeg or pdf", filepath.Ext(path))
	}

	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	return fileInfo, nil
}

// handleOCRError provides user-friendly error messages for OCR failures
func handleOCRError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("OCR processing failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("OCR processing timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("OCR processing was canceled")
	case errors.Is(err, ocr.ErrInvalidImage):
		return fmt.Errorf("the image could not be decoded. Please check the file integrity: %w", err)
	case errors.Is(err, ocr.ErrInvalidPDF):
		return fmt.Errorf("the first PDF page could not be rendered. Please check the file integrity: %w", err)
	case errors.Is(err, ocr.ErrMissingCredentials):
		return fmt.Errorf("Google Cloud authentication failed. Set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS: %w", err)
	default:
		return fmt.Errorf("OCR processing failed: %w", err)
	}
}

// outputResults formats and writes the OCR results
func outputResults(result ocr.Result, fileInfo os.FileInfo, outputPath string, jsonOutput bool, log zerolog.Logger) error {
	var outputData []byte

	if jsonOutput {
		po, _ := validation.ExtractPO(result.Text)
		data, err := json.MarshalIndent(OCROutput{
			Text:               result.Text,
			Status:             string(result.Status),
			Engine:             result.Engine,
			PONumber:           po,
			POValid:            validation.VerifyPO(result.Text),
			ProcessedAt:        result.ProcessedAt,
			ProcessingDuration: result.ProcessingDuration.String(),
			FileName:           filepath.Base(fileInfo.Name()),
			FileSize:           fileInfo.Size(),
		}, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		outputData = append(data, '\n')
	} else {
		text := result.Text
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		outputData = []byte(text)
	}

	if outputPath == "" {
		if _, err := os.Stdout.Write(outputData); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", outputPath).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(outputData)).
		Msg("OCR results written to file")

	return nil
}
