package payslip

import (
	"pim/pkg/models"
)

// Canonical field names produced by the extractor.
const (
	FieldEmployeeName    = "employee_name"
	FieldCompanyName     = "company_name"
	FieldPosition        = "position"
	FieldPeriod          = "period"
	FieldGrossSalary     = "gross_salary"
	FieldNetSalary       = "net_salary"
	FieldTotalDeductions = "total_deductions"
	FieldINSS            = "inss"
	FieldIRRF            = "irrf"
	FieldFGTS            = "fgts"
)

// ExtractionMethod records which strategy produced a field value, for
// downstream confidence weighting.
type ExtractionMethod string

const (
	MethodRegex      ExtractionMethod = "regex"
	MethodPositional ExtractionMethod = "positional"
	MethodFallback   ExtractionMethod = "fallback"
)

// fieldRule is one row of the per-locale extraction table: a field name plus
// the folded label variants that may precede its value on a line. Labels are
// tried in order; longer variants must come before their prefixes ("salario
// liquido" before "liquido") so the most specific label wins.
type fieldRule struct {
	field   string
	labels  []string
	numeric bool
}

// Extraction rule tables. Adding a locale means adding a table, not new code
// paths. Labels are written folded (no diacritics, lowercase).
var (
	rulesBR = []fieldRule{
		{FieldGrossSalary, []string{"salario bruto", "total de vencimentos", "total vencimentos", "total de proventos", "salario base", "vencimentos"}, true},
		{FieldNetSalary, []string{"salario liquido", "liquido a receber", "valor liquido", "total liquido", "liquido"}, true},
		{FieldTotalDeductions, []string{"total de descontos", "total descontos", "descontos"}, true},
		{FieldINSS, []string{"inss"}, true},
		{FieldIRRF, []string{"irrf", "imposto de renda"}, true},
		{FieldFGTS, []string{"fgts"}, true},
		{FieldEmployeeName, []string{"nome do funcionario", "funcionario", "colaborador", "empregado", "nome"}, false},
		{FieldCompanyName, []string{"razao social", "empregador", "empresa"}, false},
		{FieldPosition, []string{"cargo", "funcao"}, false},
		{FieldPeriod, []string{"competencia", "mes de referencia", "periodo", "referencia"}, false},
	}

	rulesFR = []fieldRule{
		{FieldGrossSalary, []string{"salaire brut", "total brut", "brut"}, true},
		{FieldNetSalary, []string{"net a payer", "salaire net", "net paye"}, true},
		{FieldTotalDeductions, []string{"total cotisations", "total des cotisations", "cotisations salariales"}, true},
		{FieldEmployeeName, []string{"nom du salarie", "salarie", "nom"}, false},
		{FieldCompanyName, []string{"raison sociale", "employeur", "societe"}, false},
		{FieldPosition, []string{"emploi", "qualification"}, false},
		{FieldPeriod, []string{"periode de paie", "periode"}, false},
	}

	// benefitKeywordsBR are benefit line-item labels recognized on BR payslips.
	benefitKeywordsBR = []string{
		"vale refeicao",
		"vale alimentacao",
		"vale transporte",
		"plano de saude",
		"assistencia medica",
		"auxilio creche",
		"auxilio home office",
		"seguro de vida",
	}
)

// rulesFor selects the extraction table for a detected country. BR is the
// default template when the country is unknown — its labels are the primary
// market's and a zero-hit document extracts nothing either way.
func rulesFor(country models.Country) []fieldRule {
	if country == models.CountryFR {
		return rulesFR
	}
	return rulesBR
}
