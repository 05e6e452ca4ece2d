// Package ocr provides OCR text extraction for uploaded payslips using
// Google Cloud APIs.
//
// Two engines are available behind the same interface: Cloud Vision document
// text detection (the default, handles PDF scans and phone photos of
// holerites) and Document AI (form-parser processors, when a processor ID is
// configured). Both return raw text plus an engine confidence; everything
// smarter than that — classification, field extraction, validation — happens
// downstream in the payslip package.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT: Google Cloud project ID (Document AI only)
//
// Cloud Vision API Limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Maximum pages: 5 pages for synchronous PDF processing
package ocr

import (
	"context"
	"io"
	"time"
)

// Service defines the interface for OCR text extraction engines.
type Service interface {
	// ProcessDocument extracts text from a payslip scan (PDF, JPEG or PNG).
	// Returns the concatenated text from all pages.
	ProcessDocument(ctx context.Context, data io.Reader, mimeType string) (string, error)

	// ProcessDocumentWithMetadata extracts text with engine metadata.
	ProcessDocumentWithMetadata(ctx context.Context, data io.Reader, mimeType string) (*Result, error)
}

// Result contains the raw OCR output handed to the extraction pipeline.
type Result struct {
	// Text is the extracted text content from all pages, in reading order.
	Text string `json:"text"`

	// PageCount is the number of pages that were processed.
	PageCount int `json:"page_count"`

	// EngineConfidence is the engine's average confidence over all detected
	// text (0.0 to 1.0). This is the OCR engine's own estimate; the pipeline
	// computes its own confidence for the extracted fields.
	EngineConfidence float32 `json:"engine_confidence"`

	// LanguageCodes contains the languages the engine detected.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// ProcessedAt is when OCR processing completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the OCR call took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// Supported MIME types for payslip uploads.
const (
	MimePDF  = "application/pdf"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// SniffMimeType guesses the MIME type of an upload from its magic bytes.
// Returns empty string for unsupported formats.
func SniffMimeType(data []byte) string {
	switch {
	case len(data) >= 4 && string(data[:4]) == "%PDF":
		return MimePDF
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return MimeJPEG
	case len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return MimePNG
	default:
		return ""
	}
}
