package payslip

import (
	"strings"

	"pim/pkg/models"
)

// ClassificationResult is the outcome of deciding whether a text blob is a
// payslip and which country template it resembles.
type ClassificationResult struct {
	IsPayslip           bool
	DetectedCountry     models.Country
	MatchedKeywordCount int
	Confidence          float64
}

// Keyword lexicons per supported country. Matching happens on folded text, so
// entries are written without diacritics.
var (
	lexiconBR = []string{
		"salario",
		"holerite",
		"inss",
		"irrf",
		"fgts",
		"vencimentos",
		"descontos",
		"liquido",
		"proventos",
		"folha de pagamento",
		"salario bruto",
		"ctps",
		"contracheque",
		"salario liquido",
	}
	lexiconFR = []string{
		"bulletin de paie",
		"bulletin de salaire",
		"salaire brut",
		"net a payer",
		"cotisations",
		"urssaf",
		"smic",
		"securite sociale",
		"prelevement a la source",
		"net imposable",
	}
)

// Classify scores the normalized text against the per-country keyword lexicons.
//
// Confidence is hits/denominator clamped to 1.0, with the denominator tuned so
// that a handful of distinct domain terms yields full confidence. The payslip
// threshold is deliberately low to favor recall: non-payslips that slip through
// fail to populate fields downstream and end up with a low final confidence
// anyway. Zero hits is a normal result, not an error.
func (p *Processor) Classify(text string, hint models.Country) ClassificationResult {
	folded := Fold(text)

	hitsBR := countLexiconHits(folded, lexiconBR)
	hitsFR := countLexiconHits(folded, lexiconFR)

	var country models.Country
	var hits int
	switch {
	case hint == models.CountryBR || hint == models.CountryFR:
		// An explicit locale hint from the caller overrides detection but
		// keeps that locale's hit count for the confidence score.
		country = hint
		hits = hitsBR
		if hint == models.CountryFR {
			hits = hitsFR
		}
	case hitsFR > hitsBR:
		country = models.CountryFR
		hits = hitsFR
	default:
		// Ties (including 0-0) break toward BR, the primary market.
		country = models.CountryBR
		hits = hitsBR
	}

	confidence := float64(hits) / float64(p.cfg.KeywordDenominator)
	if confidence > 1.0 {
		confidence = 1.0
	}

	result := ClassificationResult{
		IsPayslip:           confidence > p.cfg.PayslipThreshold,
		DetectedCountry:     country,
		MatchedKeywordCount: hits,
		Confidence:          confidence,
	}
	if hits == 0 && hint != models.CountryBR && hint != models.CountryFR {
		result.DetectedCountry = models.CountryUnknown
	}

	p.log.Debug().
		Int("hits_br", hitsBR).
		Int("hits_fr", hitsFR).
		Str("country", string(result.DetectedCountry)).
		Float64("confidence", result.Confidence).
		Bool("is_payslip", result.IsPayslip).
		Msg("Document classified")

	return result
}

// countLexiconHits counts distinct lexicon entries present in the folded text.
func countLexiconHits(folded string, lexicon []string) int {
	hits := 0
	for _, keyword := range lexicon {
		if containsFoldedWord(folded, keyword) {
			hits++
		}
	}
	return hits
}

// containsFoldedWord reports whether keyword occurs in folded text. Multi-word
// keywords match as substrings; single words must not be embedded in a longer
// word ("inss" should not match "reinssercao").
func containsFoldedWord(folded, keyword string) bool {
	start := 0
	for start < len(folded) {
		idx := strings.Index(folded[start:], keyword)
		if idx < 0 {
			return false
		}
		idx += start
		before := idx == 0 || !isWordRune(folded[idx-1])
		end := idx + len(keyword)
		after := end == len(folded) || !isWordRune(folded[end])
		if before && after {
			return true
		}
		start = idx + 1
	}
	return false
}

func isWordRune(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
