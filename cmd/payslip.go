package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"pim/internal/config"
	"pim/internal/logger"
	"pim/internal/payslip"
	"pim/internal/recommend"
	"pim/pkg/models"
)

var payslipCmd = &cobra.Command{
	Use:   "payslip [file]",
	Short: "Extract and validate payroll fields from a payslip",
	Long: `Run the full payslip pipeline on a document: OCR (unless --text is given),
classification, field extraction, numeric normalization, confidence scoring
and profile enrichment.

The output is a JSON record with the extracted identification, amounts,
benefits, employment status, confidence score and validation warnings.
With --recommend and an OPENAI_API_KEY, personalized salary-optimization
recommendations are appended to the record.`,
	Example: `  # Process a scanned holerite
  pim payslip holerite.pdf

  # Process already-extracted text, pin the reference month
  pim payslip --text "$(cat holerite.txt)" --reference-date 2025-06

  # French bulletin de paie with recommendations
  pim payslip bulletin.pdf --locale fr --recommend -o record.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPayslip,
}

func init() {
	rootCmd.AddCommand(payslipCmd)

	payslipCmd.Flags().String("text", "", "Process this text directly instead of running OCR on a file")
	payslipCmd.Flags().String("locale", "", "Locale hint: br or fr (default: auto-detect)")
	payslipCmd.Flags().String("reference-date", "", "Reference date for staleness checks, YYYY-MM or YYYY-MM-DD (default: today)")
	payslipCmd.Flags().Bool("recommend", false, "Generate salary-optimization recommendations via ChatGPT")
	payslipCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	payslipCmd.Flags().String("engine", "vision", "OCR engine: vision or documentai")
	payslipCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runPayslip(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("payslip")

	inlineText, _ := cmd.Flags().GetString("text")
	localeFlag, _ := cmd.Flags().GetString("locale")
	referenceDateFlag, _ := cmd.Flags().GetString("reference-date")
	withRecommend, _ := cmd.Flags().GetBool("recommend")
	outputPath, _ := cmd.Flags().GetString("output")
	engine, _ := cmd.Flags().GetString("engine")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if inlineText == "" && len(args) == 0 {
		return fmt.Errorf("provide a file to process or use --text")
	}
	if inlineText != "" && len(args) > 0 {
		return fmt.Errorf("--text and a file argument are mutually exclusive")
	}

	hint, err := parseLocaleHint(localeFlag)
	if err != nil {
		return err
	}

	referenceDate, err := parseReferenceDate(referenceDateFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	text := inlineText
	if text == "" {
		filePath := args[0]

		log.Info().Str("file", filePath).Str("engine", engine).Msg("Running OCR before extraction")

		if _, err := validateScanFile(filePath, log); err != nil {
			return err
		}

		service, err := createOCRService(ctx, engine, log)
		if err != nil {
			return err
		}

		file, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close file")
			}
		}()

		text, err = service.ProcessDocument(ctx, file, mimeTypeForPath(filePath))
		if err != nil {
			return handleOCRError(err, log)
		}
	}

	processor := payslip.NewProcessor(cfg.GetPipelineConfig())

	record, err := processor.Process(text, payslip.Options{
		LocaleHint:    hint,
		ReferenceDate: referenceDate,
	})
	if err != nil {
		return handlePipelineError(err)
	}

	log.Info().
		Str("status", string(record.EmploymentStatus)).
		Str("country", string(record.Country)).
		Float64("confidence", record.Confidence).
		Int("warnings", len(record.Warnings)).
		Msg("Payslip processing completed")

	if withRecommend {
		if err := attachRecommendations(cmd, cfg, record); err != nil {
			return err
		}
	}

	outputData, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payslip record: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().Str("output_file", outputPath).Msg("Payslip record written to file")
		return nil
	}

	fmt.Println(string(outputData))
	return nil
}

// parseLocaleHint maps the --locale flag onto a country hint.
func parseLocaleHint(flag string) (models.Country, error) {
	switch flag {
	case "":
		return models.CountryUnknown, nil
	case "br", "BR":
		return models.CountryBR, nil
	case "fr", "FR":
		return models.CountryFR, nil
	default:
		return models.CountryUnknown, fmt.Errorf("unknown locale %q (expected br or fr)", flag)
	}
}

// parseReferenceDate accepts YYYY-MM or YYYY-MM-DD; empty means today.
func parseReferenceDate(flag string) (time.Time, error) {
	if flag == "" {
		return time.Now(), nil
	}
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, flag); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --reference-date %q (expected YYYY-MM or YYYY-MM-DD)", flag)
}

// attachRecommendations calls ChatGPT for optimization suggestions and merges
// them into the record. Recommendation failures degrade to a log entry.
func attachRecommendations(cmd *cobra.Command, cfg *config.Config, record *models.PayslipRecord) error {
	log := logger.WithComponent("payslip")

	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("--recommend requires OPENAI_API_KEY to be set")
	}

	client := openai.NewClient(cfg.OpenAIAPIKey)
	service := recommend.NewChatGPTService(client)

	recommendations, err := service.Recommend(cmd.Context(), record)
	if err != nil {
		log.Warn().Err(err).Msg("Recommendation generation failed, continuing without recommendations")
		return nil
	}

	record.Recommendations = recommendations
	return nil
}

// handlePipelineError provides user-friendly messages for pipeline failures.
func handlePipelineError(err error) error {
	switch {
	case errors.Is(err, payslip.ErrEmptyDocument):
		return fmt.Errorf("the document contains no usable text. Try a clearer scan or pass the text with --text")
	default:
		return fmt.Errorf("payslip processing failed: %w", err)
	}
}
