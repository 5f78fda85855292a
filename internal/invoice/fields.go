package invoice

import (
	"regexp"
	"strings"

	"github.com/a3tai/invoice-extractor/internal/pdf/layout"
)

const (
	invoiceValueMarker = "INVOICE VALUE"
	exchangeRateMarker = "EXCHANGE RATE"
	rupeeMarker        = "INR"
)

var (
	invoiceIDPattern    = regexp.MustCompile(`EXP-\d+\s+\d{2}/\d{2}/\d{4}`)
	decimalPattern      = regexp.MustCompile(`^\d+(\.\d+)?$`)
	exchangeRatePattern = regexp.MustCompile(`(?i)1\s*(USD|EUR)\s*INR\s*\d+(\.\d+)?`)
	trailingCPattern    = regexp.MustCompile(`\bC$`)
	multiSpacePattern   = regexp.MustCompile(`\s{2,}`)
)

// FlatText collapses every whitespace run, line breaks included, to one space.
func FlatText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// InvoiceIdentifier returns the first "EXP-<digits> <dd/mm/yyyy>" in flat.
func InvoiceIdentifier(flat string) string {
	return invoiceIDPattern.FindString(flat)
}

// BuyerAddress cleans the text of the buyer crop into one line. Lines holding
// a noise marker are dropped; the rest are repaired and joined by spaces.
func BuyerAddress(cropText string, tmpl Template) string {
	var lines []string
	for _, line := range strings.Split(cropText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || hasNoiseMarker(line, tmpl.NoiseMarkers) {
			continue
		}

		for _, r := range tmpl.Replacements {
			line = strings.ReplaceAll(line, r.From, r.To)
		}
		line = trailingCPattern.ReplaceAllString(line, "")
		line = multiSpacePattern.ReplaceAllString(line, " ")

		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}

func hasNoiseMarker(line string, markers []string) bool {
	upper := strings.ToUpper(line)
	for _, m := range markers {
		if m != "" && strings.Contains(upper, strings.ToUpper(m)) {
			return true
		}
	}
	return false
}

// InvoiceValue returns the first purely numeric cell in the row that follows
// an "INVOICE VALUE" row. The first match across all tables wins.
func InvoiceValue(tables []layout.Table) string {
	for _, table := range tables {
		for i, row := range table {
			if !strings.Contains(strings.ToUpper(row.Joined()), invoiceValueMarker) {
				continue
			}
			if i+1 >= len(table) {
				continue
			}
			for _, cell := range table[i+1] {
				if v := strings.TrimSpace(cell); decimalPattern.MatchString(v) {
					return v
				}
			}
		}
	}
	return ""
}

// ExchangeRate looks for "1 <USD|EUR> INR <number>" in table rows that
// mention an exchange rate or rupees, then falls back to the flat text.
func ExchangeRate(tables []layout.Table, flat string) string {
	for _, table := range tables {
		for _, row := range table {
			text := strings.ToUpper(row.Joined())
			if !strings.Contains(text, exchangeRateMarker) && !strings.Contains(text, rupeeMarker) {
				continue
			}
			if m := exchangeRatePattern.FindString(text); m != "" {
				return m
			}
		}
	}
	return exchangeRatePattern.FindString(flat)
}
