package payslip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numericField(name string, amount float64) ExtractedField {
	return ExtractedField{Name: name, Amount: amount, Numeric: true, Method: MethodRegex}
}

func textField(name, value string) ExtractedField {
	return ExtractedField{Name: name, Value: value, Method: MethodRegex}
}

func TestScore(t *testing.T) {
	p := newTestProcessor()

	classification := ClassificationResult{IsPayslip: true, Confidence: 0.5}

	t.Run("coverage bonus scales with required fields", func(t *testing.T) {
		fields := FieldSet{
			FieldGrossSalary: numericField(FieldGrossSalary, 5000),
			FieldNetSalary:   numericField(FieldNetSalary, 3800),
		}

		result := p.Score(classification, fields)

		// 0.5 classifier + 0.5 * (2 of 4 required)
		assert.InDelta(t, 0.75, result.Confidence, 0.001)
		assert.Empty(t, result.Warnings)
	})

	t.Run("full coverage with consistent amounts", func(t *testing.T) {
		fields := FieldSet{
			FieldGrossSalary:     numericField(FieldGrossSalary, 5000),
			FieldNetSalary:       numericField(FieldNetSalary, 3800),
			FieldTotalDeductions: numericField(FieldTotalDeductions, 1200),
			FieldEmployeeName:    textField(FieldEmployeeName, "João da Silva"),
			FieldCompanyName:     textField(FieldCompanyName, "Acme Ltda"),
		}

		result := p.Score(classification, fields)

		assert.Equal(t, 1.0, result.Confidence)
		assert.Empty(t, result.Warnings)
	})

	t.Run("no fields means classifier confidence only", func(t *testing.T) {
		result := p.Score(classification, FieldSet{})

		assert.InDelta(t, 0.5, result.Confidence, 0.001)
	})

	t.Run("inconsistent amounts are penalized and flagged", func(t *testing.T) {
		fields := FieldSet{
			FieldGrossSalary:     numericField(FieldGrossSalary, 5000),
			FieldNetSalary:       numericField(FieldNetSalary, 3800),
			FieldTotalDeductions: numericField(FieldTotalDeductions, 500),
		}

		result := p.Score(classification, fields)

		// 0.5 + 0.5*(2/4) − 0.3 penalty
		assert.InDelta(t, 0.45, result.Confidence, 0.001)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "inconsistentes")
	})

	t.Run("difference within tolerance passes", func(t *testing.T) {
		// Tolerance is max(1% of gross, 1.00) = 50.00 here.
		fields := FieldSet{
			FieldGrossSalary:     numericField(FieldGrossSalary, 5000),
			FieldNetSalary:       numericField(FieldNetSalary, 3760),
			FieldTotalDeductions: numericField(FieldTotalDeductions, 1200),
		}

		result := p.Score(classification, fields)

		assert.Empty(t, result.Warnings)
		assert.InDelta(t, 0.75, result.Confidence, 0.001)
	})

	t.Run("absolute tolerance floor for small amounts", func(t *testing.T) {
		// 1% of 50 is 0.50, so the 1.00 floor applies.
		fields := FieldSet{
			FieldGrossSalary:     numericField(FieldGrossSalary, 50),
			FieldNetSalary:       numericField(FieldNetSalary, 39.20),
			FieldTotalDeductions: numericField(FieldTotalDeductions, 10),
		}

		result := p.Score(classification, fields)

		assert.Empty(t, result.Warnings)
	})

	t.Run("net above gross is flagged but never corrected", func(t *testing.T) {
		fields := FieldSet{
			FieldGrossSalary: numericField(FieldGrossSalary, 3000),
			FieldNetSalary:   numericField(FieldNetSalary, 5000),
		}

		result := p.Score(classification, fields)

		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], "maior que o salário bruto")
	})

	t.Run("confidence never drops below zero", func(t *testing.T) {
		low := ClassificationResult{IsPayslip: true, Confidence: 0.25}
		fields := FieldSet{
			FieldGrossSalary:     numericField(FieldGrossSalary, 5000),
			FieldNetSalary:       numericField(FieldNetSalary, 100),
			FieldTotalDeductions: numericField(FieldTotalDeductions, 100),
		}

		result := p.Score(low, fields)

		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	})
}
