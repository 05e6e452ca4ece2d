package models

import "time"

// EmploymentStatus is the legal employment regime detected on a payslip.
type EmploymentStatus string

const (
	StatusCLT      EmploymentStatus = "CLT"      // Standard salaried employment (Consolidação das Leis do Trabalho)
	StatusPJ       EmploymentStatus = "PJ"       // Contractor billing through a legal entity (Pessoa Jurídica)
	StatusIntern   EmploymentStatus = "INTERN"   // Estágio / internship
	StatusAutonomo EmploymentStatus = "AUTONOMO" // Self-employed / RPA
	StatusUnknown  EmploymentStatus = "UNKNOWN"  // No status keyword matched — never guessed
)

// Country is the payslip locale template detected by the classifier.
type Country string

const (
	CountryBR      Country = "BR"
	CountryFR      Country = "FR"
	CountryUnknown Country = "unknown"
)

// Identification holds the who/where/when fields of a payslip.
type Identification struct {
	EmployeeName string `json:"employeeName"`
	CompanyName  string `json:"companyName"`
	Position     string `json:"position"`
	Period       string `json:"period"` // As printed on the document, e.g. "05/2025" or "Maio/2025"
}

// Amounts holds the monetary fields of a payslip.
// Values are canonical decimals with two-decimal precision; a zero value means
// the field was not extracted (a missing-field warning accompanies it).
type Amounts struct {
	GrossSalary     float64 `json:"grossSalary"`
	NetSalary       float64 `json:"netSalary"`
	TotalDeductions float64 `json:"totalDeductions"`
	INSS            float64 `json:"inss"`
	IRRF            float64 `json:"irrf"`
	FGTS            float64 `json:"fgts"`
}

// Benefit is a single benefit line item (vale-refeição, plano de saúde, ...).
type Benefit struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Recommendation is a structured optimization recommendation produced by the
// LLM recommendation service for a processed payslip.
type Recommendation struct {
	Category    string `json:"category"` // "tax", "benefits", "investment", ...
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"` // "high", "medium", "low"
}

// PayslipRecord is the final structured output of the extraction pipeline.
// It is handed to the storage/export layer and never mutated afterwards.
type PayslipRecord struct {
	Identification Identification `json:"identification"`
	Amounts        Amounts        `json:"amounts"`
	Benefits       []Benefit      `json:"benefits"`

	EmploymentStatus EmploymentStatus `json:"employmentStatus"`
	Country          Country          `json:"country"`

	// Confidence combines classifier confidence, extraction coverage and
	// internal consistency into a single 0..1 value.
	Confidence float64 `json:"confidence"`

	Warnings                  []string `json:"warnings"`
	OptimizationOpportunities []string `json:"optimizationOpportunities"`

	// Recommendations are attached by the recommendation service when requested.
	Recommendations []Recommendation `json:"recommendations,omitempty"`

	ProcessedAt time.Time `json:"processedAt"`
}
