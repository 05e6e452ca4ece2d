package payslip

import (
	"math"
	"strconv"
	"strings"

	"pim/pkg/models"
)

// currencyTokens are stripped from raw matches before numeric parsing.
var currencyTokens = []string{"R$", "r$", "BRL", "EUR", "€", "$"}

// ParseAmount converts a locale-formatted numeric string ("15.345,00",
// "R$ 1.518,00", "3 800.50") into a canonical decimal with two-decimal
// precision.
//
// BR and FR both use comma as the decimal separator with dot or space as
// thousands grouping. For an unknown locale the rightmost of '.'/',' followed
// by exactly two digits is taken as the decimal separator.
//
// Returns ok=false when the cleaned string does not parse — the field stays
// unset rather than aborting the pipeline.
func ParseAmount(raw string, country models.Country) (float64, bool) {
	s := raw
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	// OCR output frequently contains NBSP and narrow NBSP as group separators.
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
	negative := false
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		negative = true
		s = strings.Trim(s, "-")
	}
	s = strings.Trim(s, ".,")
	if s == "" {
		return 0, false
	}

	var normalized string
	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		// Both separators present: the rightmost one is the decimal separator
		// regardless of locale ("1.234,56" and "1,234.56" both parse).
		normalized = normalizeRightmostDecimal(s)
	case country == models.CountryBR || country == models.CountryFR:
		// Comma is decimal, dot is thousands.
		normalized = strings.ReplaceAll(s, ".", "")
		normalized = strings.ReplaceAll(normalized, ",", ".")
	default:
		normalized = normalizeBySeparatorPosition(s)
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		value = -value
	}
	return round2(value), true
}

// normalizeRightmostDecimal treats the rightmost of '.'/',' as the decimal
// separator and strips the other as grouping.
func normalizeRightmostDecimal(s string) string {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	sep := lastDot
	if lastComma > sep {
		sep = lastComma
	}
	intPart := strings.Map(dropSeparators, s[:sep])
	return intPart + "." + s[sep+1:]
}

// normalizeBySeparatorPosition resolves separator ambiguity without a locale
// hint: the rightmost '.' or ',' followed by exactly two digits is the decimal
// separator; every other '.'/',' is grouping.
func normalizeBySeparatorPosition(s string) string {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	sep := lastDot
	if lastComma > sep {
		sep = lastComma
	}
	if sep >= 0 && len(s)-sep-1 == 2 {
		intPart := strings.Map(dropSeparators, s[:sep])
		return intPart + "." + s[sep+1:]
	}
	// No two-digit decimal tail — treat all separators as grouping.
	return strings.Map(dropSeparators, s)
}

func dropSeparators(r rune) rune {
	if r == '.' || r == ',' {
		return -1
	}
	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
