package payslip

import (
	"fmt"
	"math"
)

// requiredFields are present on virtually every real payslip layout; coverage
// of this set drives the extraction bonus.
var requiredFields = []string{
	FieldGrossSalary,
	FieldNetSalary,
	FieldEmployeeName,
	FieldCompanyName,
}

// extractionBonusWeight is the maximum confidence bonus for full coverage of
// the required field set.
const extractionBonusWeight = 0.5

// inconsistencyPenalty is applied when gross − deductions does not reconcile
// with net. Penalized, not nulled: partial noisy extraction is still useful to
// show the user alongside a visible warning.
const inconsistencyPenalty = 0.3

// ScoreResult carries the final confidence and any consistency warnings.
type ScoreResult struct {
	Confidence float64
	Warnings   []string
}

// Score combines classifier confidence, required-field coverage and internal
// consistency into a single 0..1 value.
//
// The score never exceeds classifier confidence by more than the extraction
// bonus, strictly increases with the number of required fields populated, and
// decreases on inconsistency.
func (p *Processor) Score(classification ClassificationResult, fields FieldSet) ScoreResult {
	result := ScoreResult{}

	populated := 0
	for _, name := range requiredFields {
		if _, ok := fields[name]; ok {
			populated++
		}
	}

	score := classification.Confidence
	score += extractionBonusWeight * float64(populated) / float64(len(requiredFields))

	gross, hasGross := fields[FieldGrossSalary]
	net, hasNet := fields[FieldNetSalary]
	deductions, hasDeductions := fields[FieldTotalDeductions]

	if hasGross && hasNet && net.Amount > gross.Amount {
		// Flagged, never silently corrected.
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Salário líquido (%.2f) maior que o salário bruto (%.2f) — verifique o documento", net.Amount, gross.Amount))
	}

	if hasGross && hasNet && hasDeductions {
		expected := gross.Amount - deductions.Amount
		diff := math.Abs(expected - net.Amount)
		// 1% relative or 1.00 absolute, whichever is larger.
		tolerance := math.Max(gross.Amount*p.cfg.ConsistencyTolerance, 1.0)
		if diff > tolerance {
			score -= inconsistencyPenalty
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Valores inconsistentes: bruto (%.2f) − descontos (%.2f) = %.2f, mas líquido extraído é %.2f",
					gross.Amount, deductions.Amount, expected, net.Amount))
		}
	}

	result.Confidence = clamp01(score)

	p.log.Debug().
		Float64("classifier_confidence", classification.Confidence).
		Int("required_populated", populated).
		Float64("final_confidence", result.Confidence).
		Int("warnings", len(result.Warnings)).
		Msg("Confidence scoring completed")

	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
