package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonNumericDot   = regexp.MustCompile(`[^0-9.]`)
	nonNumericComma = regexp.MustCompile(`[^0-9,]`)
)

// ParsePrice interpreta preços no formato americano ("$1,299.99").
// Faixas como "$10.99 - $20.00" ou "10 to 20" usam o menor valor.
func ParsePrice(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	if i := strings.Index(text, "to"); i > 0 {
		text = text[:i]
	}
	if i := strings.Index(text, "-"); i > 0 {
		text = text[:i]
	}

	clean := nonNumericDot.ReplaceAllString(text, "")
	return parsePositive(clean)
}

// ParseBRL interpreta preços no formato brasileiro ("R$ 1.234,56")
func ParseBRL(text string) (float64, bool) {
	clean := nonNumericComma.ReplaceAllString(strings.TrimSpace(text), "")
	clean = strings.ReplaceAll(clean, ",", ".")
	return parsePositive(clean)
}

func parsePositive(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
