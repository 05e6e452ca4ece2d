package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"pim/internal/logger"
)

// DocumentAIConfig holds the processor coordinates for the Document AI engine.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
	Timeout          time.Duration
}

// DocumentAIService implements Service using a Google Document AI processor.
// It is the alternate engine for scans where Vision's layout handling falls
// short; only the raw document text and confidence are used — entity
// extraction stays in the payslip pipeline where the locale rules live.
type DocumentAIService struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIService creates the engine with credentials from the environment.
// Requires GOOGLE_CLOUD_PROJECT and DOCUMENT_AI_PROCESSOR_ID.
func NewDocumentAIService(ctx context.Context, config DocumentAIConfig) (Service, error) {
	const op = "NewDocumentAIService"

	if config.ProjectID == "" {
		return nil, WrapOCRError(op, ErrMissingCredentials, "GOOGLE_CLOUD_PROJECT is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapOCRError(op, ErrOCRFailed, "DOCUMENT_AI_PROCESSOR_ID is required for the documentai engine")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location %s", config.Location))
	}

	return &DocumentAIService{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}, nil
}

// ProcessDocument extracts text from a payslip scan.
func (s *DocumentAIService) ProcessDocument(ctx context.Context, data io.Reader, mimeType string) (string, error) {
	result, err := s.ProcessDocumentWithMetadata(ctx, data, mimeType)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ProcessDocumentWithMetadata extracts text with engine metadata.
func (s *DocumentAIService) ProcessDocumentWithMetadata(ctx context.Context, data io.Reader, mimeType string) (*Result, error) {
	const op = "ProcessDocumentWithMetadata"
	startTime := time.Now()

	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read document data")
	}
	if len(raw) > MaxFileSizeBytes {
		return nil, WrapOCRError(op, ErrFileTooLarge, fmt.Sprintf("file size: %d bytes", len(raw)))
	}
	if mimeType == "" {
		mimeType = SniffMimeType(raw)
	}
	if mimeType != MimePDF && mimeType != MimeJPEG && mimeType != MimePNG {
		return nil, WrapOCRError(op, ErrUnsupportedFormat, fmt.Sprintf("mime type %q", mimeType))
	}

	processCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: s.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  raw,
				MimeType: mimeType,
			},
		},
	}

	resp, err := s.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, s.handleProcessingError(op, err)
	}
	if resp.Document == nil || strings.TrimSpace(resp.Document.Text) == "" {
		return nil, WrapOCRError(op, ErrEmptyDocument, "no text in Document AI response")
	}

	doc := resp.Document
	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)
	for _, page := range doc.Pages {
		if page.Layout != nil && page.Layout.Confidence > 0 {
			confidenceSum += page.Layout.Confidence
			confidenceCount++
		}
		for _, lang := range page.DetectedLanguages {
			if lang.LanguageCode != "" {
				languageSet[lang.LanguageCode] = true
			}
		}
	}
	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	s.log.Debug().
		Int("pages", len(doc.Pages)).
		Float32("confidence", avgConfidence).
		Int("text_length", len(doc.Text)).
		Msg("Document AI processing completed")

	now := time.Now()
	return &Result{
		Text:               doc.Text,
		PageCount:          len(doc.Pages),
		EngineConfidence:   avgConfidence,
		LanguageCodes:      setToSlice(languageSet),
		ProcessedAt:        now,
		ProcessingDuration: now.Sub(startTime),
	}, nil
}

// processorName constructs the full processor resource name.
func (s *DocumentAIService) processorName() string {
	if s.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			s.config.ProjectID, s.config.Location, s.config.ProcessorID, s.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		s.config.ProjectID, s.config.Location, s.config.ProcessorID)
}

// handleProcessingError maps Document AI errors onto the package sentinels.
func (s *DocumentAIService) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapOCRError(op, ErrMissingCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("processor not found: %s", s.config.ProcessorID))
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return WrapOCRError(op, ErrUnsupportedFormat, "document format not supported or corrupted")
	default:
		return WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// Close closes the underlying Document AI client.
func (s *DocumentAIService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
