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

	"pim/internal/config"
	"pim/internal/logger"
	"pim/internal/ocr"
)

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Extract text from a payslip scan using Google Cloud OCR",
	Long: `Process a payslip file (PDF, JPEG or PNG) through Google Cloud OCR and
print the raw extracted text.

The default engine is Cloud Vision document text detection, which handles
both PDF scans and phone photos of holerites. When a Document AI processor
is configured, --engine documentai routes the file there instead.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Extract text from a scanned holerite
  pim scan holerite.pdf

  # Photo taken with a phone, JSON output with engine metadata
  pim scan holerite.jpg --json -o result.json

  # Use a configured Document AI processor
  pim scan holerite.pdf --engine documentai`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

// ScanOutput is the JSON output structure when --json is used.
type ScanOutput struct {
	Text               string   `json:"text"`
	PageCount          int      `json:"page_count,omitempty"`
	EngineConfidence   float32  `json:"engine_confidence,omitempty"`
	LanguageCodes      []string `json:"language_codes,omitempty"`
	ProcessingDuration string   `json:"processing_duration,omitempty"`
	FileName           string   `json:"file_name"`
	FileSize           int64    `json:"file_size"`
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	scanCmd.Flags().Bool("json", false, "Output as JSON with engine metadata")
	scanCmd.Flags().String("engine", "vision", "OCR engine: vision or documentai")
	scanCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	engine, _ := cmd.Flags().GetString("engine")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	filePath := args[0]

	log.Info().
		Str("file", filePath).
		Str("engine", engine).
		Bool("json", jsonOutput).
		Msg("Starting OCR scan")

	fileInfo, err := validateScanFile(filePath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	service, err := createOCRService(ctx, engine, log)
	if err != nil {
		return err
	}

	file, err := os.Open(filePath)
	if err != nil {
		log.Error().Err(err).Str("file", filePath).Msg("Failed to open file")
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close file")
		}
	}()

	result, err := service.ProcessDocumentWithMetadata(ctx, file, mimeTypeForPath(filePath))
	if err != nil {
		return handleOCRError(err, log)
	}

	log.Info().
		Int("page_count", result.PageCount).
		Float32("confidence", result.EngineConfidence).
		Dur("duration", result.ProcessingDuration).
		Int("text_length", len(result.Text)).
		Msg("OCR scan completed successfully")

	return outputScanResult(result, fileInfo, outputPath, jsonOutput, log)
}

// mimeTypeForPath guesses the MIME type from the file extension; the OCR
// layer sniffs magic bytes when this returns empty.
func mimeTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return ocr.MimePDF
	case ".jpg", ".jpeg":
		return ocr.MimeJPEG
	case ".png":
		return ocr.MimePNG
	default:
		return ""
	}
}

// validateScanFile checks that the file exists, is regular and within limits.
func validateScanFile(path string, log zerolog.Logger) (os.FileInfo, error) {
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
		log.Error().Str("file", path).Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}

	if fileInfo.Size() == 0 {
		log.Error().Str("file", path).Msg("File is empty")
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	if fileInfo.Size() > ocr.MaxFileSizeBytes {
		log.Error().
			Str("file", path).
			Int64("size", fileInfo.Size()).
			Msg("File exceeds maximum size limit")
		return nil, fmt.Errorf("file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), ocr.MaxFileSizeBytes)
	}

	return fileInfo, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// createOCRService creates the requested OCR engine.
func createOCRService(ctx context.Context, engine string, log zerolog.Logger) (ocr.Service, error) {
	hasCredentials := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" || os.Getenv("GOOGLE_CREDENTIALS") != ""
	if !hasCredentials {
		log.Error().Msg("Google Cloud credentials not configured")
		return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n" +
			"1. GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON\n" +
			"2. GOOGLE_CREDENTIALS with inline JSON\n" +
			"3. Application Default Credentials (gcloud auth application-default login)")
	}

	switch engine {
	case "documentai":
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return ocr.NewDocumentAIService(ctx, ocr.DocumentAIConfig{
			ProjectID:        cfg.GoogleCloudProject,
			Location:         cfg.GoogleCloudLocation,
			ProcessorID:      cfg.DocumentAIProcessorID,
			ProcessorVersion: cfg.DocumentAIProcessorVersion,
		})
	case "vision":
		service, err := ocr.NewGoogleVisionService(ctx)
		if err != nil {
			if errors.Is(err, ocr.ErrMissingCredentials) {
				log.Error().Err(err).Msg("Google Cloud credentials validation failed")
				return nil, fmt.Errorf("Google Cloud credentials validation failed: %w", err)
			}
			log.Error().Err(err).Msg("Failed to create OCR service")
			return nil, fmt.Errorf("failed to create OCR service: %w", err)
		}
		return service, nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q (expected vision or documentai)", engine)
	}
}

// handleOCRError provides user-friendly error messages for OCR failures
func handleOCRError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("OCR processing failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("OCR processing timed out. Try increasing --timeout or processing a smaller file")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("OCR processing was canceled")
	case errors.Is(err, ocr.ErrFileTooLarge):
		return fmt.Errorf("file is too large (maximum 20MB). Try compressing or splitting the file")
	case errors.Is(err, ocr.ErrTooManyPages):
		return fmt.Errorf("PDF has too many pages (maximum 5 pages). Try splitting into smaller files")
	case errors.Is(err, ocr.ErrUnsupportedFormat):
		return fmt.Errorf("unsupported file format. Upload a PDF, JPEG or PNG scan of the payslip")
	case errors.Is(err, ocr.ErrEmptyDocument):
		return fmt.Errorf("no readable text found in the document. Try a clearer, higher-resolution scan")
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "auth:"):
		return fmt.Errorf("Google Cloud authentication failed. Check your service account credentials: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED") ||
		strings.Contains(errStr, "permission"):
		return fmt.Errorf("permission denied. Ensure the service account has the Cloud Vision / Document AI role")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") ||
		strings.Contains(errStr, "quota"):
		return fmt.Errorf("Google Cloud API quota exceeded. Check your project quotas")
	case errors.Is(err, ocr.ErrOCRFailed):
		return fmt.Errorf("OCR processing failed. This may be due to network issues, API quota limits, or service unavailability: %w", err)
	default:
		return fmt.Errorf("OCR processing failed: %w", err)
	}
}

// outputScanResult formats and writes the OCR result.
func outputScanResult(result *ocr.Result, fileInfo os.FileInfo, outputPath string, jsonOutput bool, log zerolog.Logger) error {
	var outputData []byte
	var err error

	if jsonOutput {
		scanOutput := ScanOutput{
			Text:               result.Text,
			PageCount:          result.PageCount,
			EngineConfidence:   result.EngineConfidence,
			LanguageCodes:      result.LanguageCodes,
			ProcessingDuration: result.ProcessingDuration.String(),
			FileName:           filepath.Base(fileInfo.Name()),
			FileSize:           fileInfo.Size(),
		}

		outputData, err = json.MarshalIndent(scanOutput, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		outputData = []byte(result.Text)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			log.Error().Err(err).Str("output_file", outputPath).Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Scan results written to file")
		return nil
	}

	if _, err := os.Stdout.Write(outputData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !jsonOutput {
		fmt.Println()
	}
	return nil
}
