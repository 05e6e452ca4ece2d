package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"pim/internal/config"
	"pim/internal/logger"
	"pim/internal/sheets"
	"pim/pkg/models"
)

var exportCmd = &cobra.Command{
	Use:   "export [record.json...]",
	Short: "Export processed payslip records to the dashboard Google Sheet",
	Long: `Append one or more payslip records (JSON files produced by "pim payslip")
to the configured Google Sheet. The worksheet is created with headers on
first use.

Required environment variables:
  GOOGLE_SHEET_URL - Full URL of the target spreadsheet
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - Service account`,
	Example: `  # Export a single processed record
  pim export record.json

  # Export a batch to a specific worksheet
  pim export out/*.json --worksheet "Holerites 2025"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("worksheet", "", "Worksheet name (default: GOOGLE_SHEET_WORKSHEET or \"Holerites\")")
	exportCmd.Flags().Int("timeout", 120, "Export timeout in seconds")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	worksheet, _ := cmd.Flags().GetString("worksheet")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL is not set")
	}
	if worksheet == "" {
		worksheet = cfg.GoogleSheetWorksheet
	}

	records, err := loadRecordFiles(args)
	if err != nil {
		return err
	}

	log.Info().
		Int("records", len(records)).
		Str("worksheet", worksheet).
		Msg("Exporting payslip records")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	service, err := sheets.NewService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		return fmt.Errorf("failed to create sheets service: %w", err)
	}

	if err := service.AppendRecords(ctx, records, worksheet); err != nil {
		return fmt.Errorf("failed to export records: %w", err)
	}

	fmt.Printf("Exported %d record(s) to worksheet %q\n", len(records), worksheet)
	return nil
}

// loadRecordFiles parses each JSON file into a PayslipRecord, keyed by file name.
func loadRecordFiles(paths []string) (map[string]*models.PayslipRecord, error) {
	records := make(map[string]*models.PayslipRecord, len(paths))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var record models.PayslipRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("%s is not a valid payslip record: %w", path, err)
		}

		records[filepath.Base(path)] = &record
	}

	return records, nil
}
