package payslip

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pim/pkg/models"
)

func TestExtractBrazilianPayslip(t *testing.T) {
	p := newTestProcessor()

	text := strings.Join([]string{
		"Empresa: Acme Indústria Ltda",
		"Nome do Funcionário: João da Silva",
		"Cargo: Analista de Sistemas",
		"Competência: 06/2025",
		"Salário Bruto: R$ 5.000,00",
		"INSS: R$ 550,00",
		"IRRF: R$ 320,00",
		"FGTS: R$ 400,00",
		"Total de Descontos: R$ 1.200,00",
		"Salário Líquido: R$ 3.800,00",
	}, "\n")

	fields := p.Extract(text, models.CountryBR)

	t.Run("identification fields keep original casing", func(t *testing.T) {
		require.Contains(t, fields, FieldEmployeeName)
		assert.Equal(t, "João da Silva", fields[FieldEmployeeName].Value)

		require.Contains(t, fields, FieldCompanyName)
		assert.Equal(t, "Acme Indústria Ltda", fields[FieldCompanyName].Value)

		require.Contains(t, fields, FieldPosition)
		assert.Equal(t, "Analista de Sistemas", fields[FieldPosition].Value)

		require.Contains(t, fields, FieldPeriod)
		assert.Equal(t, "06/2025", fields[FieldPeriod].Value)
	})

	t.Run("amounts are normalized", func(t *testing.T) {
		require.Contains(t, fields, FieldGrossSalary)
		assert.InDelta(t, 5000.00, fields[FieldGrossSalary].Amount, 0.001)
		assert.True(t, fields[FieldGrossSalary].Numeric)

		require.Contains(t, fields, FieldNetSalary)
		assert.InDelta(t, 3800.00, fields[FieldNetSalary].Amount, 0.001)

		require.Contains(t, fields, FieldTotalDeductions)
		assert.InDelta(t, 1200.00, fields[FieldTotalDeductions].Amount, 0.001)

		require.Contains(t, fields, FieldINSS)
		assert.InDelta(t, 550.00, fields[FieldINSS].Amount, 0.001)

		require.Contains(t, fields, FieldIRRF)
		assert.InDelta(t, 320.00, fields[FieldIRRF].Amount, 0.001)

		require.Contains(t, fields, FieldFGTS)
		assert.InDelta(t, 400.00, fields[FieldFGTS].Amount, 0.001)
	})

	t.Run("labeled extraction is marked as regex method", func(t *testing.T) {
		assert.Equal(t, MethodRegex, fields[FieldGrossSalary].Method)
	})
}

func TestExtractFrenchBulletin(t *testing.T) {
	p := newTestProcessor()

	text := strings.Join([]string{
		"Employeur: Société Dupont",
		"Nom du salarié: Jean Martin",
		"Période de paie: 06/2025",
		"Salaire brut: 3 000,00",
		"Total des cotisations: 700,00",
		"Net à payer: 2 300,00",
	}, "\n")

	fields := p.Extract(text, models.CountryFR)

	require.Contains(t, fields, FieldGrossSalary)
	assert.InDelta(t, 3000.00, fields[FieldGrossSalary].Amount, 0.001)

	require.Contains(t, fields, FieldNetSalary)
	assert.InDelta(t, 2300.00, fields[FieldNetSalary].Amount, 0.001)

	require.Contains(t, fields, FieldTotalDeductions)
	assert.InDelta(t, 700.00, fields[FieldTotalDeductions].Amount, 0.001)

	require.Contains(t, fields, FieldEmployeeName)
	assert.Equal(t, "Jean Martin", fields[FieldEmployeeName].Value)

	require.Contains(t, fields, FieldCompanyName)
	assert.Equal(t, "Société Dupont", fields[FieldCompanyName].Value)
}

func TestExtractEdgeCases(t *testing.T) {
	p := newTestProcessor()

	t.Run("missing fields stay absent", func(t *testing.T) {
		fields := p.Extract("Salário Bruto: R$ 5.000,00", models.CountryBR)

		assert.Contains(t, fields, FieldGrossSalary)
		assert.NotContains(t, fields, FieldNetSalary)
		assert.NotContains(t, fields, FieldEmployeeName)
	})

	t.Run("first occurrence wins on duplicated labels", func(t *testing.T) {
		text := "Salário Bruto: R$ 5.000,00\nSalário Bruto: R$ 9.999,99"

		fields := p.Extract(text, models.CountryBR)

		assert.InDelta(t, 5000.00, fields[FieldGrossSalary].Amount, 0.001)
	})

	t.Run("specific label beats its prefix", func(t *testing.T) {
		// "salario liquido" must win over bare "liquido" for the net field.
		text := "Salário Líquido: R$ 3.800,00\nLíquido Parcial: R$ 1.000,00"

		fields := p.Extract(text, models.CountryBR)

		assert.InDelta(t, 3800.00, fields[FieldNetSalary].Amount, 0.001)
	})

	t.Run("rate before amount is skipped", func(t *testing.T) {
		fields := p.Extract("INSS 11% 550,00", models.CountryBR)

		require.Contains(t, fields, FieldINSS)
		assert.InDelta(t, 550.00, fields[FieldINSS].Amount, 0.001)
	})

	t.Run("label embedded in a longer word does not match", func(t *testing.T) {
		fields := p.Extract("renomeado: x", models.CountryBR)

		assert.NotContains(t, fields, FieldEmployeeName)
	})
}

func TestExtractDeductionRows(t *testing.T) {
	p := newTestProcessor()

	lines := []string{
		"5561 INSS Mensal 11% 550,00",
		"5562 IRRF sobre salário 27,5% 320,00",
		"9901 FGTS do mês 400,00",
	}
	folded := make([]string, len(lines))
	for i, l := range lines {
		folded[i] = Fold(l)
	}

	fields := make(FieldSet)
	p.extractDeductionRows(fields, lines, folded, models.CountryBR)

	require.Contains(t, fields, FieldINSS)
	assert.InDelta(t, 550.00, fields[FieldINSS].Amount, 0.001)
	assert.Equal(t, MethodPositional, fields[FieldINSS].Method)

	require.Contains(t, fields, FieldIRRF)
	assert.InDelta(t, 320.00, fields[FieldIRRF].Amount, 0.001)

	require.Contains(t, fields, FieldFGTS)
	assert.InDelta(t, 400.00, fields[FieldFGTS].Amount, 0.001)
}

func TestExtractBenefits(t *testing.T) {
	p := newTestProcessor()

	t.Run("benefit line items", func(t *testing.T) {
		text := "Vale Refeição 880,00\nVale Transporte 220,00\nPlano de Saúde 350,00"

		benefits := p.extractBenefits(text, models.CountryBR)

		require.Len(t, benefits, 3)
		assert.Equal(t, "vale refeicao", benefits[0].Name)
		assert.InDelta(t, 880.00, benefits[0].Amount, 0.001)
	})

	t.Run("benefits are deduplicated", func(t *testing.T) {
		text := "Vale Refeição 880,00\nVale Refeição 880,00"

		benefits := p.extractBenefits(text, models.CountryBR)

		assert.Len(t, benefits, 1)
	})

	t.Run("french bulletins have no benefit items", func(t *testing.T) {
		benefits := p.extractBenefits("Vale Refeição 880,00", models.CountryFR)

		assert.Nil(t, benefits)
	})
}
