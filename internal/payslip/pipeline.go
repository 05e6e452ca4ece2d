package payslip

import (
	"time"

	"github.com/rs/zerolog"

	"pim/internal/logger"
	"pim/pkg/models"
)

// Config holds the tunable thresholds of the pipeline. The defaults were
// chosen empirically against sample documents; treat them as configuration,
// not business rules.
type Config struct {
	// KeywordDenominator is the number of distinct lexicon hits that yields
	// full classifier confidence.
	KeywordDenominator int

	// PayslipThreshold is the classifier confidence above which a document is
	// treated as a payslip. Deliberately low to favor recall.
	PayslipThreshold float64

	// ConsistencyTolerance is the relative tolerance for the
	// gross − deductions ≈ net check (an absolute floor of 1.00 always applies).
	ConsistencyTolerance float64

	// EfficiencyThreshold is the net/gross percentage below which the
	// low-efficiency warning fires.
	EfficiencyThreshold float64
}

// DefaultConfig returns the pipeline thresholds used in production.
func DefaultConfig() Config {
	return Config{
		KeywordDenominator:   8,
		PayslipThreshold:     0.2,
		ConsistencyTolerance: 0.01,
		EfficiencyThreshold:  75,
	}
}

// Options are per-invocation parameters for Process.
type Options struct {
	// LocaleHint overrides country detection when the caller already knows
	// the document locale.
	LocaleHint models.Country

	// ReferenceDate anchors staleness checks. Zero value means time.Now().
	ReferenceDate time.Time
}

// Processor runs the extraction pipeline. It is stateless between invocations
// and safe for concurrent use.
type Processor struct {
	cfg Config
	log zerolog.Logger
}

// NewProcessor creates a pipeline processor with the given thresholds.
func NewProcessor(cfg Config) *Processor {
	if cfg.KeywordDenominator <= 0 {
		cfg.KeywordDenominator = DefaultConfig().KeywordDenominator
	}
	return &Processor{
		cfg: cfg,
		log: logger.WithComponent("payslip-pipeline"),
	}
}

// Process runs the full pipeline on raw OCR text and returns the structured
// record.
//
// Only an empty document aborts. A document the classifier rejects still
// yields a record — confidence 0 plus a single explanatory warning — so the
// caller decides whether to reject it or show a low-confidence result.
// Field-level extraction failures degrade into warnings; partial results are
// always returned.
func (p *Processor) Process(rawText string, opts Options) (*models.PayslipRecord, error) {
	const op = "Process"

	referenceDate := opts.ReferenceDate
	if referenceDate.IsZero() {
		referenceDate = time.Now()
	}

	text := CleanText(rawText)
	if text == "" {
		return nil, WrapPipelineError(op, ErrEmptyDocument, "input empty after cleaning")
	}

	classification := p.Classify(text, opts.LocaleHint)

	record := &models.PayslipRecord{
		EmploymentStatus:          models.StatusUnknown,
		Country:                   classification.DetectedCountry,
		Warnings:                  []string{},
		OptimizationOpportunities: []string{},
		ProcessedAt:               referenceDate,
	}

	if !classification.IsPayslip {
		record.Warnings = append(record.Warnings,
			"Documento não reconhecido como holerite — envie uma imagem mais nítida ou outro documento")
		p.log.Info().
			Float64("confidence", classification.Confidence).
			Msg("Document rejected by classifier, returning low-confidence record")
		return record, nil
	}

	fields := p.Extract(text, classification.DetectedCountry)
	p.populateRecord(record, fields)
	record.Benefits = p.extractBenefits(text, classification.DetectedCountry)

	scored := p.Score(classification, fields)
	record.Confidence = scored.Confidence
	record.Warnings = append(record.Warnings, scored.Warnings...)

	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			record.Warnings = append(record.Warnings, missingFieldWarning(name))
		}
	}

	record.EmploymentStatus = p.DetectStatus(fields, text)
	p.Enrich(record, fields, text, referenceDate)

	p.log.Info().
		Str("country", string(record.Country)).
		Str("status", string(record.EmploymentStatus)).
		Float64("confidence", record.Confidence).
		Int("warnings", len(record.Warnings)).
		Msg("Payslip processed")

	return record, nil
}

// populateRecord copies extracted fields onto the output record.
func (p *Processor) populateRecord(record *models.PayslipRecord, fields FieldSet) {
	if f, ok := fields[FieldEmployeeName]; ok {
		record.Identification.EmployeeName = f.Value
	}
	if f, ok := fields[FieldCompanyName]; ok {
		record.Identification.CompanyName = f.Value
	}
	if f, ok := fields[FieldPosition]; ok {
		record.Identification.Position = f.Value
	}
	if f, ok := fields[FieldPeriod]; ok {
		record.Identification.Period = f.Value
	}
	if f, ok := fields[FieldGrossSalary]; ok {
		record.Amounts.GrossSalary = f.Amount
	}
	if f, ok := fields[FieldNetSalary]; ok {
		record.Amounts.NetSalary = f.Amount
	}
	if f, ok := fields[FieldTotalDeductions]; ok {
		record.Amounts.TotalDeductions = f.Amount
	}
	if f, ok := fields[FieldINSS]; ok {
		record.Amounts.INSS = f.Amount
	}
	if f, ok := fields[FieldIRRF]; ok {
		record.Amounts.IRRF = f.Amount
	}
	if f, ok := fields[FieldFGTS]; ok {
		record.Amounts.FGTS = f.Amount
	}
}

func missingFieldWarning(field string) string {
	labels := map[string]string{
		FieldGrossSalary:  "salário bruto",
		FieldNetSalary:    "salário líquido",
		FieldEmployeeName: "nome do funcionário",
		FieldCompanyName:  "nome da empresa",
	}
	label, ok := labels[field]
	if !ok {
		label = field
	}
	return "Campo não identificado no documento: " + label
}
