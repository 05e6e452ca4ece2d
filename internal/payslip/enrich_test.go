package payslip

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pim/pkg/models"
)

func TestDetectStatus(t *testing.T) {
	p := newTestProcessor()

	tests := []struct {
		name   string
		fields FieldSet
		text   string
		want   models.EmploymentStatus
	}{
		{
			name: "socio keyword means pj",
			text: "Recibo de pagamento\nSócio Administrador: Maria Souza",
			want: models.StatusPJ,
		},
		{
			name: "pro-labore means pj regardless of spelling",
			text: "Retirada de PRÓ-LABORE do mês",
			want: models.StatusPJ,
		},
		{
			name: "estagiario means intern",
			text: "Bolsa auxílio\nEstagiário: Pedro Lima",
			want: models.StatusIntern,
		},
		{
			name: "rpa means autonomo",
			text: "RPA - Recibo de Pagamento a Autônomo",
			want: models.StatusAutonomo,
		},
		{
			name: "inss plus fgts deductions mean clt",
			fields: FieldSet{
				FieldINSS: numericField(FieldINSS, 550),
				FieldFGTS: numericField(FieldFGTS, 400),
			},
			text: "Salário Bruto: R$ 5.000,00",
			want: models.StatusCLT,
		},
		{
			name: "ctps keyword means clt",
			text: "CTPS: 12345 Série 001",
			want: models.StatusCLT,
		},
		{
			name: "no signal stays unknown",
			text: "Salário Bruto: R$ 5.000,00\nLíquido: R$ 4.000,00",
			want: models.StatusUnknown,
		},
		{
			name: "position field is considered",
			fields: FieldSet{
				FieldPosition: textField(FieldPosition, "Sócio Gerente"),
			},
			text: "Recibo de pagamento",
			want: models.StatusPJ,
		},
		{
			name: "pj wins over clt signals",
			fields: FieldSet{
				FieldINSS: numericField(FieldINSS, 550),
				FieldFGTS: numericField(FieldFGTS, 400),
			},
			text: "Pró-labore do sócio",
			want: models.StatusPJ,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := tt.fields
			if fields == nil {
				fields = FieldSet{}
			}
			assert.Equal(t, tt.want, p.DetectStatus(fields, tt.text))
		})
	}
}

func TestEnrichPJ(t *testing.T) {
	p := newTestProcessor()
	reference := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	newPJRecord := func() *models.PayslipRecord {
		return &models.PayslipRecord{
			EmploymentStatus:          models.StatusPJ,
			Warnings:                  []string{},
			OptimizationOpportunities: []string{},
		}
	}

	t.Run("missing pro-labore is flagged", func(t *testing.T) {
		record := newPJRecord()

		p.Enrich(record, FieldSet{}, "Sócio: Maria Souza", reference)

		require.NotEmpty(t, record.Warnings)
		assert.Contains(t, record.Warnings[0], "pró-labore")
	})

	t.Run("present pro-labore is not flagged", func(t *testing.T) {
		record := newPJRecord()

		p.Enrich(record, FieldSet{}, "Pró-Labore: R$ 10.000,00\nINSS: R$ 1.100,00", reference)

		for _, w := range record.Warnings {
			assert.NotContains(t, w, "Nenhum lançamento de pró-labore")
		}
	})

	t.Run("missing inss contribution is flagged", func(t *testing.T) {
		record := newPJRecord()

		p.Enrich(record, FieldSet{}, "Pró-Labore: R$ 10.000,00", reference)

		found := false
		for _, w := range record.Warnings {
			if strings.Contains(w, "INSS") {
				found = true
			}
		}
		assert.True(t, found, "expected an INSS warning, got %v", record.Warnings)
	})

	t.Run("missing irpj becomes an optimization opportunity", func(t *testing.T) {
		record := newPJRecord()

		p.Enrich(record, FieldSet{}, "Pró-Labore: R$ 10.000,00\nINSS: R$ 1.100,00", reference)

		found := false
		for _, o := range record.OptimizationOpportunities {
			if strings.Contains(o, "IRPJ") {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("fixed pj suggestions are always appended", func(t *testing.T) {
		record := newPJRecord()

		p.Enrich(record, FieldSet{}, "Pró-Labore: R$ 10.000,00\nINSS: R$ 1.100,00\nIRPJ: R$ 500,00", reference)

		for _, suggestion := range pjOptimizations {
			assert.Contains(t, record.OptimizationOpportunities, suggestion)
		}
	})

	t.Run("stale period warning comes first", func(t *testing.T) {
		record := newPJRecord()
		fields := FieldSet{
			FieldPeriod: textField(FieldPeriod, "03/2023"),
		}

		p.Enrich(record, fields, "Sócio sem pró-labore", reference)

		require.NotEmpty(t, record.Warnings)
		assert.Contains(t, record.Warnings[0], "2023")
		assert.Contains(t, record.Warnings[0], "2025")
	})

	t.Run("current period produces no staleness warning", func(t *testing.T) {
		record := newPJRecord()
		fields := FieldSet{
			FieldPeriod: textField(FieldPeriod, "06/2025"),
		}

		p.Enrich(record, fields, "Pró-Labore: R$ 10.000,00\nINSS: R$ 1.100,00", reference)

		for _, w := range record.Warnings {
			assert.NotContains(t, w, "podem não ser comparáveis")
		}
	})

	t.Run("non-pj records get no pj enrichment", func(t *testing.T) {
		record := &models.PayslipRecord{
			EmploymentStatus:          models.StatusCLT,
			Warnings:                  []string{},
			OptimizationOpportunities: []string{},
		}

		p.Enrich(record, FieldSet{}, "Salário Bruto: R$ 5.000,00", reference)

		assert.Empty(t, record.OptimizationOpportunities)
	})
}

func TestEnrichEfficiency(t *testing.T) {
	p := newTestProcessor()
	reference := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("low efficiency is flagged", func(t *testing.T) {
		record := &models.PayslipRecord{EmploymentStatus: models.StatusCLT}
		fields := FieldSet{
			FieldGrossSalary: numericField(FieldGrossSalary, 10000),
			FieldNetSalary:   numericField(FieldNetSalary, 6500),
		}

		p.Enrich(record, fields, "", reference)

		require.Len(t, record.Warnings, 1)
		assert.Contains(t, record.Warnings[0], "65.0%")
	})

	t.Run("efficiency at threshold is not flagged", func(t *testing.T) {
		record := &models.PayslipRecord{EmploymentStatus: models.StatusCLT}
		fields := FieldSet{
			FieldGrossSalary: numericField(FieldGrossSalary, 10000),
			FieldNetSalary:   numericField(FieldNetSalary, 7500),
		}

		p.Enrich(record, fields, "", reference)

		assert.Empty(t, record.Warnings)
	})

	t.Run("zero gross does not divide", func(t *testing.T) {
		record := &models.PayslipRecord{EmploymentStatus: models.StatusCLT}
		fields := FieldSet{
			FieldGrossSalary: numericField(FieldGrossSalary, 0),
			FieldNetSalary:   numericField(FieldNetSalary, 100),
		}

		p.Enrich(record, fields, "", reference)

		assert.Empty(t, record.Warnings)
	})
}
