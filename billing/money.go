/*
Package billing derives payment schedules from commercial contract terms.

PURPOSE:
  This package contains the money/date utilities and the installment
  calculator: given a contract type, billing form, total value and start
  date, it produces the ordered list of installments that an external
  collaborator later turns into invoices.

KEY CONCEPTS IN THIS FILE (money.go):
  - Currency parsing: accepts both machine-decimal ("1234.56") and
    locale-formatted ("1.234,56", "R$ 1.234,56") strings
  - Zero-on-failure: a string that fails to parse numerically resolves
    to zero, never to an error (upstream screens pre-validate)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift
  2. Purity: No state, no I/O - parse and format only
  3. Tolerance: Malformed money input degrades to zero by contract

SEE ALSO:
  - installments.go: Schedule computation using these values
  - duration.go: Hour-string parsing ("8h", "1h30min")
*/
package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY PARSING
// =============================================================================

// ParseCurrency converts a currency string into a decimal value.
//
// Accepted forms:
//   "1234.56"       machine decimal
//   "1.234,56"      locale form (thousands ".", decimal ",")
//   "R$ 1.234,56"   locale form with currency symbol
//   "1234,56"       locale decimal without thousands separator
//
// A string that fails to parse numerically resolves to zero. Callers that
// need a hard failure must validate the field before parsing.
func ParseCurrency(s string) decimal.Decimal {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "R$")
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	if cleaned == "" {
		return decimal.Zero
	}

	// A comma marks the locale form: "." is a thousands separator and ","
	// the decimal separator. Without a comma the string is machine-decimal.
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatCurrency renders a decimal value in the locale form used across the
// application: thousands separated by "." and cents after ",".
//
//   1234.5  -> "1.234,50"
//   0       -> "0,00"
func FormatCurrency(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// MustDecimal parses a machine-decimal string, resolving to zero on failure.
// Mirrors the currency contract: schedule math never aborts on bad input.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
