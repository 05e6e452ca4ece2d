package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const (
	// MaxFileSizeBytes is the maximum file size for synchronous processing (20MB)
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the maximum number of PDF pages for synchronous processing
	MaxPagesSync = 5
)

// GoogleVisionService implements Service using Google Cloud Vision API.
type GoogleVisionService struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionService creates an OCR service with credentials from the
// environment: GOOGLE_CREDENTIALS inline JSON, GOOGLE_APPLICATION_CREDENTIALS
// file path, or application default credentials.
func NewGoogleVisionService(ctx context.Context) (Service, error) {
	const op = "NewGoogleVisionService"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionService{client: client}, nil
}

// NewGoogleVisionServiceWithClient creates an OCR service with an explicit client (for testing).
func NewGoogleVisionServiceWithClient(client *vision.ImageAnnotatorClient) Service {
	return &GoogleVisionService{client: client}
}

// ProcessDocument extracts text from a payslip scan.
func (g *GoogleVisionService) ProcessDocument(ctx context.Context, data io.Reader, mimeType string) (string, error) {
	result, err := g.ProcessDocumentWithMetadata(ctx, data, mimeType)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ProcessDocumentWithMetadata extracts text from a payslip scan with engine metadata.
// PDFs go through file annotation; JPEG/PNG photos through image annotation.
func (g *GoogleVisionService) ProcessDocumentWithMetadata(ctx context.Context, data io.Reader, mimeType string) (*Result, error) {
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

	var result *Result
	switch mimeType {
	case MimePDF:
		result, err = g.annotatePDF(ctx, raw)
	case MimeJPEG, MimePNG:
		result, err = g.annotateImage(ctx, raw)
	default:
		return nil, WrapOCRError(op, ErrUnsupportedFormat, fmt.Sprintf("mime type %q", mimeType))
	}
	if err != nil {
		return nil, WrapOCRError(op, err, "")
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	return result, nil
}

// annotatePDF runs document text detection over an inline PDF.
func (g *GoogleVisionService) annotatePDF(ctx context.Context, pdfBytes []byte) (*Result, error) {
	const op = "annotatePDF"

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdfBytes,
					MimeType: MimePDF,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}

	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}
	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}

	return collectPages(fileResp)
}

// annotateImage runs document text detection over a single photo/scan image.
func (g *GoogleVisionService) annotateImage(ctx context.Context, imageBytes []byte) (*Result, error) {
	const op = "annotateImage"

	annotation, err := g.client.DetectDocumentText(ctx, &visionpb.Image{Content: imageBytes}, nil)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if annotation == nil || strings.TrimSpace(annotation.Text) == "" {
		return nil, ErrEmptyDocument
	}

	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)
	for _, page := range annotation.Pages {
		if page.Confidence > 0 {
			confidenceSum += page.Confidence
			confidenceCount++
		}
		if page.Property != nil {
			for _, lang := range page.Property.DetectedLanguages {
				if lang.LanguageCode != "" {
					languageSet[lang.LanguageCode] = true
				}
			}
		}
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	return &Result{
		Text:             annotation.Text,
		PageCount:        1,
		EngineConfidence: avgConfidence,
		LanguageCodes:    setToSlice(languageSet),
	}, nil
}

// collectPages aggregates text, confidence and languages across the pages of
// a file annotation response.
func collectPages(fileResp *visionpb.AnnotateFileResponse) (*Result, error) {
	if len(fileResp.Responses) == 0 {
		return nil, ErrEmptyDocument
	}

	pageCount := len(fileResp.Responses)
	if pageCount > MaxPagesSync {
		return nil, WrapOCRError("collectPages", ErrTooManyPages, fmt.Sprintf("document has %d pages", pageCount))
	}

	var allText strings.Builder
	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)

	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, fmt.Errorf("error processing page %d: %s", pageIdx+1, page.Error.Message)
		}
		if page.FullTextAnnotation == nil {
			continue
		}

		if pageIdx > 0 {
			allText.WriteString("\n\n")
		}
		allText.WriteString(page.FullTextAnnotation.Text)

		for _, pageInfo := range page.FullTextAnnotation.Pages {
			if pageInfo.Confidence > 0 {
				confidenceSum += pageInfo.Confidence
				confidenceCount++
			}
			if pageInfo.Property != nil {
				for _, lang := range pageInfo.Property.DetectedLanguages {
					if lang.LanguageCode != "" {
						languageSet[lang.LanguageCode] = true
					}
				}
			}
		}
	}

	extractedText := allText.String()
	if strings.TrimSpace(extractedText) == "" {
		return nil, ErrEmptyDocument
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	return &Result{
		Text:             extractedText,
		PageCount:        pageCount,
		EngineConfidence: avgConfidence,
		LanguageCodes:    setToSlice(languageSet),
	}, nil
}

func setToSlice(set map[string]bool) []string {
	var out []string
	for key := range set {
		out = append(out, key)
	}
	return out
}

// Close closes the underlying Vision client.
func (g *GoogleVisionService) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
