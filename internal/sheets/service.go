// Package sheets exports processed payslip records to a Google Sheet, the
// feed consumed by the salary dashboards.
package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"pim/internal/logger"
	"pim/pkg/models"
)

// Service handles Google Sheets operations
type Service struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// ExportRow is one payslip record flattened into a sheet row.
type ExportRow struct {
	Filename         string
	EmployeeName     string
	CompanyName      string
	Period           string
	EmploymentStatus string
	GrossSalary      float64
	NetSalary        float64
	TotalDeductions  float64
	INSS             float64
	IRRF             float64
	FGTS             float64
	Confidence       float64
	Warnings         string
	ProcessedAt      string
}

// NewService creates a Google Sheets export service for the given sheet URL.
func NewService(ctx context.Context, sheetURL string) (*Service, error) {
	const op = "NewService"

	log := logger.WithComponent("sheets")

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extract spreadsheet ID: %w", op, err)
	}

	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Extracted spreadsheet ID")

	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read credentials file: %w", op, err)
		}
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set", op)
	}

	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	client := config.Client(ctx)
	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return &Service{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

// extractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func extractSpreadsheetID(url string) (string, error) {
	re := regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	matches := re.FindStringSubmatch(url)

	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format")
	}

	return matches[1], nil
}

// AppendRecords appends processed payslip records to the named worksheet,
// creating it with headers if necessary.
func (s *Service) AppendRecords(ctx context.Context, records map[string]*models.PayslipRecord, sheetName string) error {
	const op = "AppendRecords"

	s.log.Info().
		Str("sheet", sheetName).
		Int("records", len(records)).
		Msg("Appending payslip records to Google Sheet")

	if err := s.ensureSheetWithHeaders(ctx, sheetName); err != nil {
		return fmt.Errorf("%s: failed to ensure sheet exists: %w", op, err)
	}

	var values [][]interface{}
	for filename, record := range records {
		values = append(values, rowToValues(convertRecord(filename, record)))
	}

	valueRange := &sheets.ValueRange{Values: values}

	_, err := s.sheetsService.Spreadsheets.Values.Append(
		s.spreadsheetID,
		sheetName+"!A:N",
		valueRange,
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()

	if err != nil {
		return fmt.Errorf("%s: failed to append values to sheet: %w", op, err)
	}

	s.log.Info().
		Int("rows_written", len(values)).
		Msg("Successfully wrote payslip records to Google Sheet")

	return nil
}

// convertRecord flattens a PayslipRecord into a sheet row.
func convertRecord(filename string, record *models.PayslipRecord) ExportRow {
	return ExportRow{
		Filename:         filename,
		EmployeeName:     record.Identification.EmployeeName,
		CompanyName:      record.Identification.CompanyName,
		Period:           record.Identification.Period,
		EmploymentStatus: string(record.EmploymentStatus),
		GrossSalary:      record.Amounts.GrossSalary,
		NetSalary:        record.Amounts.NetSalary,
		TotalDeductions:  record.Amounts.TotalDeductions,
		INSS:             record.Amounts.INSS,
		IRRF:             record.Amounts.IRRF,
		FGTS:             record.Amounts.FGTS,
		Confidence:       record.Confidence,
		Warnings:         strings.Join(record.Warnings, "; "),
		ProcessedAt:      record.ProcessedAt.Format("02/01/2006 15:04:05"),
	}
}

// rowToValues converts ExportRow to interface{} slice for Google Sheets
func rowToValues(row ExportRow) []interface{} {
	return []interface{}{
		row.Filename,         // A: Arquivo
		row.EmployeeName,     // B: Funcionário
		row.CompanyName,      // C: Empresa
		row.Period,           // D: Competência
		row.EmploymentStatus, // E: Regime
		row.GrossSalary,      // F: Bruto
		row.NetSalary,        // G: Líquido
		row.TotalDeductions,  // H: Descontos
		row.INSS,             // I: INSS
		row.IRRF,             // J: IRRF
		row.FGTS,             // K: FGTS
		row.Confidence,       // L: Confiança
		row.Warnings,         // M: Alertas
		row.ProcessedAt,      // N: Processado
	}
}

// ensureSheetWithHeaders ensures the worksheet exists and has proper headers
func (s *Service) ensureSheetWithHeaders(ctx context.Context, sheetName string) error {
	const op = "ensureSheetWithHeaders"

	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}

	var sheetExists bool
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == sheetName {
			sheetExists = true
			break
		}
	}

	if !sheetExists {
		s.log.Info().Str("sheet", sheetName).Msg("Creating new sheet")

		batchUpdateReq := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{
				{AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: sheetName},
				}},
			},
		}

		if _, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateReq).Context(ctx).Do(); err != nil {
			return fmt.Errorf("%s: failed to create sheet: %w", op, err)
		}
	}

	headerRange := fmt.Sprintf("%s!A1:N1", sheetName)
	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get headers: %w", op, err)
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		s.log.Info().Str("sheet", sheetName).Msg("Adding headers to sheet")

		headers := [][]interface{}{
			{
				"Arquivo", "Funcionário", "Empresa", "Competência", "Regime",
				"Bruto", "Líquido", "Descontos", "INSS", "IRRF", "FGTS",
				"Confiança", "Alertas", "Processado",
			},
		}

		valueRange := &sheets.ValueRange{Values: headers}
		_, err = s.sheetsService.Spreadsheets.Values.Update(
			s.spreadsheetID,
			headerRange,
			valueRange,
		).ValueInputOption("RAW").Context(ctx).Do()

		if err != nil {
			return fmt.Errorf("%s: failed to add headers: %w", op, err)
		}
	}

	return nil
}
