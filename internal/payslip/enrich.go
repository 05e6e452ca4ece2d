package payslip

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pim/pkg/models"
)

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// pjOptimizations is the fixed set of PJ-specific suggestions, appended to
// every PJ record and deduplicated against warnings already present.
var pjOptimizations = []string{
	"Simule a divisão ideal entre pró-labore e distribuição de lucros para reduzir a carga tributária",
	"Plano de saúde contratado pela empresa é despesa dedutível",
	"Previdência privada (PGBL) contratada pela empresa pode reduzir a base de cálculo do imposto",
	"Revise o enquadramento tributário (Simples Nacional vs Lucro Presumido) com seu contador",
}

// DetectStatus resolves the employment status from keywords in the extracted
// identification/position text and the document body. The status is terminal:
// determined once per record, first matching rule wins, and no match leaves
// UNKNOWN — never a guessed value.
func (p *Processor) DetectStatus(fields FieldSet, text string) models.EmploymentStatus {
	folded := Fold(text)
	if position, ok := fields[FieldPosition]; ok {
		folded = Fold(position.Value) + "\n" + folded
	}
	key := FoldKey(text)

	switch {
	case containsFoldedWord(folded, "socio") || strings.Contains(key, "prolabore"):
		return models.StatusPJ
	case containsFoldedWord(folded, "estagio") || containsFoldedWord(folded, "estagiario") || containsFoldedWord(folded, "estagiaria"):
		return models.StatusIntern
	case containsFoldedWord(folded, "autonomo") || containsFoldedWord(folded, "autonoma") || containsFoldedWord(folded, "rpa"):
		return models.StatusAutonomo
	case p.hasCLTDeductionCodes(fields, folded):
		return models.StatusCLT
	default:
		return models.StatusUnknown
	}
}

// hasCLTDeductionCodes reports whether the CLT-specific deduction lines are
// present: INSS plus FGTS is the signature of a carteira-assinada payslip.
func (p *Processor) hasCLTDeductionCodes(fields FieldSet, folded string) bool {
	_, hasINSS := fields[FieldINSS]
	_, hasFGTS := fields[FieldFGTS]
	if hasINSS && hasFGTS {
		return true
	}
	return containsFoldedWord(folded, "ctps") || containsFoldedWord(folded, "clt")
}

// Enrich applies status-specific post-processing to a record: missing
// mandatory line items, staleness of the reference period, net/gross
// efficiency, and the fixed optimization suggestions. Amount fields extracted
// earlier are never mutated here.
//
// referenceDate is passed in rather than read from the system clock so that
// staleness behavior is deterministic under test.
func (p *Processor) Enrich(record *models.PayslipRecord, fields FieldSet, text string, referenceDate time.Time) {
	if record.EmploymentStatus == models.StatusPJ {
		p.enrichPJ(record, fields, text, referenceDate)
	}

	p.enrichEfficiency(record, fields)
}

// enrichPJ checks the line items a pessoa-jurídica payslip is expected to
// carry and appends warnings/suggestions for the missing ones.
func (p *Processor) enrichPJ(record *models.PayslipRecord, fields FieldSet, text string, referenceDate time.Time) {
	key := FoldKey(text)

	if !strings.Contains(key, "prolabore") {
		record.Warnings = append(record.Warnings,
			"Nenhum lançamento de pró-labore encontrado — verifique se a retirada está registrada")
	}

	_, hasINSSField := fields[FieldINSS]
	if !hasINSSField && !strings.Contains(key, "inss") {
		record.Warnings = append(record.Warnings,
			"INSS sobre o pró-labore não encontrado nos descontos — contribuição obrigatória para sócios")
	}

	if !strings.Contains(key, "irpj") {
		record.OptimizationOpportunities = append(record.OptimizationOpportunities,
			"IRPJ não identificado no documento — revise a apuração de impostos da empresa")
	}

	if year, ok := periodYear(fields); ok && year != referenceDate.Year() {
		// Prepend: stale comparisons invalidate the warnings that follow.
		record.Warnings = append([]string{fmt.Sprintf(
			"Holerite de %d — salário mínimo e faixas de impostos podem não ser comparáveis com %d",
			year, referenceDate.Year())}, record.Warnings...)
	}

	for _, suggestion := range pjOptimizations {
		if !containsString(record.Warnings, suggestion) && !containsString(record.OptimizationOpportunities, suggestion) {
			record.OptimizationOpportunities = append(record.OptimizationOpportunities, suggestion)
		}
	}
}

// enrichEfficiency computes net/gross efficiency and warns below threshold.
func (p *Processor) enrichEfficiency(record *models.PayslipRecord, fields FieldSet) {
	gross, hasGross := fields[FieldGrossSalary]
	net, hasNet := fields[FieldNetSalary]
	if !hasGross || !hasNet || gross.Amount <= 0 {
		return
	}

	efficiency := net.Amount / gross.Amount * 100
	if efficiency < p.cfg.EfficiencyThreshold {
		record.Warnings = append(record.Warnings, fmt.Sprintf(
			"Eficiência salarial baixa: você recebe %.1f%% do valor bruto — há espaço para otimização",
			efficiency))
	}
}

// periodYear parses a 4-digit year out of the extracted period string.
func periodYear(fields FieldSet) (int, bool) {
	period, ok := fields[FieldPeriod]
	if !ok {
		return 0, false
	}
	m := yearPattern.FindStringSubmatch(period.Value)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || year < 1900 || year > 2200 {
		return 0, false
	}
	return year, true
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
