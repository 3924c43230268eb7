package tally

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/alfredxing/calc/compute"
	"github.com/shopspring/decimal"
)

var (
	plainAmount = regexp.MustCompile(`^[\-+]?\d+(?:\.\d+)?$`)
	exprAmount  = regexp.MustCompile(`^[0-9+\-*/^%. ()]+$`)
	numberRun   = regexp.MustCompile(`[0-9.]+`)
	numberToken = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// ParseAmount reads an amount typed by a user or found in a statement cell.
// Thousands separators are dropped; anything that is not a plain number is
// evaluated as an arithmetic expression, e.g. "(1200 * 3)".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if plainAmount.MatchString(s) {
		return decimal.NewFromString(s)
	}
	if !exprAmount.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	for _, tok := range numberRun.FindAllString(s, -1) {
		if !numberToken.MatchString(tok) {
			return decimal.Zero, fmt.Errorf("%w: malformed number %q", ErrInvalidAmount, tok)
		}
	}
	v, err := compute.Evaluate(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return decimal.NewFromFloat(v), nil
}

// RoundAmount rounds to the two decimal places Tally keeps.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders an amount the way Tally expects it on the wire.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// DeemedPositive is the ISDEEMEDPOSITIVE flag for an amount: "Yes" for
// negative amounts, "No" otherwise.
func DeemedPositive(d decimal.Decimal) string {
	if d.IsNegative() {
		return "Yes"
	}
	return "No"
}
