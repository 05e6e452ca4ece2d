// Package payslip implements the payslip field-extraction and validation
// pipeline: raw OCR text in, a normalized and validated PayslipRecord out.
//
// The pipeline is pure computation — it performs no I/O, holds no state between
// invocations, and is safe to run concurrently from multiple goroutines. OCR,
// storage and LLM calls are the caller's responsibility.
//
// Stages, in order:
//  1. Text normalization (cleanup, duplicate-page dedup)
//  2. Document classification (payslip? which country template?)
//  3. Field extraction (per-locale rule tables + positional heuristics)
//  4. Numeric normalization (locale number formats to canonical decimals)
//  5. Confidence scoring (coverage + internal consistency)
//  6. Profile enrichment (employment-status heuristics, warnings, suggestions)
package payslip

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// duplicateLineThreshold is the fraction of matching lines between the two
// halves of a document above which the second half is treated as a duplicate
// scan of the first and dropped.
const duplicateLineThreshold = 0.8

// foldTransformer strips diacritics: NFD decompose, drop combining marks, recompose.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes text for matching: diacritics stripped, lowercased.
// Classifier, extractor and enrichment all match against folded text so that
// "Salário", "salario" and "SALARIO" behave identically.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the raw string.
		folded = s
	}
	return strings.ToLower(folded)
}

// FoldKey folds and additionally strips hyphens, dots and whitespace, so that
// "PRÓ-LABORE", "pro labore" and "prolabore" all collapse to the same key.
func FoldKey(s string) string {
	folded := Fold(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '-' || r == '.':
		case unicode.IsSpace(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanText normalizes raw OCR output: control characters are removed,
// whitespace runs collapsed, and duplicate page blocks dropped.
// Returns the empty string when nothing readable remains; callers translate
// that into ErrEmptyDocument.
func CleanText(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == '\r':
			// Bare CR becomes LF
			b.WriteRune('\n')
		case unicode.IsControl(r) || r == '�':
			// Drop control chars and replacement characters from bad encodings
		default:
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	cleaned := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = collapseSpaces(line)
		if line == "" {
			blank++
			// Collapse runs of blank lines to a single separator
			if blank > 1 || len(cleaned) == 0 {
				continue
			}
		} else {
			blank = 0
		}
		cleaned = append(cleaned, line)
	}
	// Trim trailing blank line
	for len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
		cleaned = cleaned[:len(cleaned)-1]
	}

	cleaned = dropDuplicateHalf(cleaned)

	return strings.Join(cleaned, "\n")
}

// collapseSpaces collapses runs of spaces and tabs into a single space and trims.
func collapseSpaces(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// dropDuplicateHalf detects the "same payslip scanned twice" case: if the
// second half of the document repeats the line sequence of the first half
// almost exactly, only the first half is kept.
func dropDuplicateHalf(lines []string) []string {
	content := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			content = append(content, l)
		}
	}
	if len(content) < 4 || len(content)%2 != 0 {
		return lines
	}

	half := len(content) / 2
	matches := 0
	for i := 0; i < half; i++ {
		if lineSignature(content[i]) == lineSignature(content[half+i]) {
			matches++
		}
	}
	if float64(matches)/float64(half) <= duplicateLineThreshold {
		return lines
	}

	// Keep the original lines (with blank separators) up to the end of the
	// first content half.
	seen := 0
	for i, l := range lines {
		if l != "" {
			seen++
		}
		if seen == half {
			return lines[:i+1]
		}
	}
	return lines
}

// lineSignature is the comparison key for duplicate-page detection:
// folded text with all whitespace removed, so OCR spacing jitter between the
// two scans does not defeat the match.
func lineSignature(line string) string {
	return FoldKey(line)
}
