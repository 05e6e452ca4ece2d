package payslip

import (
	"regexp"
	"strings"

	"pim/pkg/models"
)

// ExtractedField is one recognized payroll attribute pulled out of the text.
type ExtractedField struct {
	Name     string
	RawMatch string
	Value    string  // normalized textual value (names, period)
	Amount   float64 // normalized numeric value when Numeric is true
	Numeric  bool
	Method   ExtractionMethod
}

// FieldSet maps canonical field names to their extracted values. Fields the
// extractor could not populate are absent — never fabricated.
type FieldSet map[string]ExtractedField

var (
	// moneyPattern matches a monetary value with optional currency prefix on a
	// folded line. The amount group tolerates dot/comma/space grouping.
	moneyPattern = regexp.MustCompile(`(?:r\$|brl|eur|€|\$)?\s*(-?\d(?:[\d.,\s\x{00a0}\x{202f}]*\d)?(?:[.,]\d{1,2})?)`)

	// deductionRowPattern matches tabular deduction rows as emitted by OCR on
	// BR payslips: a numeric event code, a description, an optional rate and a
	// trailing amount. Used by the positional strategy for INSS/IRRF.
	deductionRowPattern = regexp.MustCompile(`^(\d{3,4})\s+(.+?)\s+(?:(\d{1,2}(?:[.,]\d{1,2})?)\s*%\s+)?(\d[\d.,]*\d|\d)$`)

	// labelSeparator strips the punctuation between a label and its value.
	labelSeparator = regexp.MustCompile(`^[\s:\-]+`)

	// ratePrefix matches a leading contribution rate ("11%", "7,5 %") so that
	// on tabular lines like "INSS 11% 550,00" the amount is captured, not the
	// rate.
	ratePrefix = regexp.MustCompile(`^-?\d{1,2}(?:[.,]\d{1,2})?\s*%\s*`)
)

// Extract applies the per-locale rule table to the normalized text and returns
// the set of successfully extracted fields.
//
// Strategy order per field: labeled-line regex first, then the positional
// deduction-row heuristic for tax fields, then fallback (field left unset).
// When a label appears on multiple lines — a duplicated page the normalizer
// did not catch — only the first match is taken, avoiding conflicting values.
func (p *Processor) Extract(text string, country models.Country) FieldSet {
	lines := strings.Split(text, "\n")
	folded := make([]string, len(lines))
	for i, line := range lines {
		folded[i] = Fold(line)
	}

	fields := make(FieldSet)

	for _, rule := range rulesFor(country) {
		if _, done := fields[rule.field]; done {
			continue
		}
		if f, ok := p.extractLabeled(rule, lines, folded, country); ok {
			fields[rule.field] = f
		}
	}

	// Positional pass for tax rows the labeled pass missed.
	if country != models.CountryFR {
		p.extractDeductionRows(fields, lines, folded, country)
	}

	p.log.Debug().
		Int("fields", len(fields)).
		Str("country", string(country)).
		Msg("Field extraction completed")

	return fields
}

// extractLabeled scans lines for the first occurrence of any of the rule's
// labels followed by a value.
func (p *Processor) extractLabeled(rule fieldRule, lines, folded []string, country models.Country) (ExtractedField, bool) {
	for _, label := range rule.labels {
		for i, fl := range folded {
			idx := labelIndex(fl, label)
			if idx < 0 {
				continue
			}
			rest := fl[idx+len(label):]
			sep := labelSeparator.FindString(rest)
			rest = rest[len(sep):]

			if rule.numeric {
				rest = ratePrefix.ReplaceAllString(rest, "")
				loc := moneyPattern.FindStringSubmatchIndex(rest)
				if loc == nil || loc[2] < 0 {
					continue
				}
				raw := rest[loc[2]:loc[3]]
				amount, ok := ParseAmount(raw, country)
				if !ok {
					continue
				}
				return ExtractedField{
					Name:     rule.field,
					RawMatch: raw,
					Amount:   amount,
					Numeric:  true,
					Method:   MethodRegex,
				}, true
			}

			value := textValueFromLine(lines[i], fl, idx+len(label)+len(sep))
			if value == "" {
				continue
			}
			return ExtractedField{
				Name:     rule.field,
				RawMatch: value,
				Value:    value,
				Method:   MethodRegex,
			}, true
		}
	}
	return ExtractedField{}, false
}

// extractDeductionRows applies the positional heuristic: tabular rows with a
// numeric event code and a trailing amount, classified by their description.
func (p *Processor) extractDeductionRows(fields FieldSet, lines, folded []string, country models.Country) {
	targets := map[string]string{
		"inss": FieldINSS,
		"irrf": FieldIRRF,
		"fgts": FieldFGTS,
	}

	for _, fl := range folded {
		m := deductionRowPattern.FindStringSubmatch(fl)
		if m == nil {
			continue
		}
		desc := m[2]
		for keyword, field := range targets {
			if _, done := fields[field]; done {
				continue
			}
			if !strings.Contains(desc, keyword) {
				continue
			}
			amount, ok := ParseAmount(m[4], country)
			if !ok {
				continue
			}
			fields[field] = ExtractedField{
				Name:     field,
				RawMatch: m[4],
				Amount:   amount,
				Numeric:  true,
				Method:   MethodPositional,
			}
		}
	}
}

// extractBenefits scans for known benefit line items with trailing amounts.
func (p *Processor) extractBenefits(text string, country models.Country) []models.Benefit {
	if country == models.CountryFR {
		// Benefit line items are a BR payslip concept; FR bulletins list them
		// inside cotisations and are not itemized here.
		return nil
	}

	var benefits []models.Benefit
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		fl := Fold(line)
		for _, keyword := range benefitKeywordsBR {
			if seen[keyword] || !strings.Contains(fl, keyword) {
				continue
			}
			rest := fl[strings.Index(fl, keyword)+len(keyword):]
			loc := moneyPattern.FindStringSubmatchIndex(rest)
			if loc == nil || loc[2] < 0 {
				continue
			}
			amount, ok := ParseAmount(rest[loc[2]:loc[3]], country)
			if !ok || amount == 0 {
				continue
			}
			seen[keyword] = true
			benefits = append(benefits, models.Benefit{Name: keyword, Amount: amount})
		}
	}
	return benefits
}

// labelIndex finds a label occurrence that starts at a word boundary, so
// "nome" does not match inside "renomeado".
func labelIndex(folded, label string) int {
	start := 0
	for start < len(folded) {
		idx := strings.Index(folded[start:], label)
		if idx < 0 {
			return -1
		}
		idx += start
		if idx == 0 || !isWordRune(folded[idx-1]) {
			end := idx + len(label)
			if end == len(folded) || !isWordRune(folded[end]) {
				return idx
			}
		}
		start = idx + 1
	}
	return -1
}

// textValueFromLine recovers the original-cased value from the source line.
// Folding preserves rune counts for Latin text, so the folded offset maps to
// the same rune offset in the original; if OCR produced something exotic and
// the counts diverge, the folded value is used instead.
func textValueFromLine(original, folded string, foldedByteOffset int) string {
	foldedRunes := []rune(folded)
	originalRunes := []rune(original)
	runeOffset := len([]rune(folded[:foldedByteOffset]))

	var value string
	if len(foldedRunes) == len(originalRunes) && runeOffset <= len(originalRunes) {
		value = string(originalRunes[runeOffset:])
	} else {
		value = folded[foldedByteOffset:]
	}

	value = strings.TrimSpace(value)
	// Values sometimes carry trailing tabular noise; cut at a run of 2+ spaces.
	if idx := strings.Index(value, "  "); idx > 0 {
		value = value[:idx]
	}
	return strings.Trim(value, " :-")
}
