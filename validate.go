package tally

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var validate = validator.New()

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	openBracket  = regexp.MustCompile(`\s*\(\s*`)
	closeBracket = regexp.MustCompile(`\s*\)`)
)

// headerProblems maps invoice fields to the message shown for a failed rule.
var headerProblems = map[string]string{
	"VoucherNo":  "Voucher number is required",
	"PartyName":  "Party name is required",
	"MainLedger": "Sales/purchase ledger is required",
	"Items":      "At least one item is required",
}

// ValidationResult lists every problem found, not only the first.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Err returns a *ValidationError for an invalid result, nil otherwise.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &ValidationError{Problems: r.Errors}
}

// NormalizeStockName trims, collapses inner whitespace, normalises the
// spacing around brackets and upper-cases a stock item name, so that
// "widget( 5 kg )" and "WIDGET (5 kg)" compare equal.
func NormalizeStockName(s string) string {
	s = spaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	s = openBracket.ReplaceAllString(s, " (")
	s = closeBracket.ReplaceAllString(s, ")")
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// ValidateInvoice checks inv before it is sent to Tally. Stock item names are
// compared against knownStockItems after normalisation on both sides.
func ValidateInvoice(inv Invoice, knownStockItems []string) ValidationResult {
	problems := []string{}

	header := inv
	header.VoucherNo = strings.TrimSpace(inv.VoucherNo)
	header.PartyName = strings.TrimSpace(inv.PartyName)
	header.MainLedger = strings.TrimSpace(inv.MainLedger)
	if err := validate.Struct(header); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			problems = append(problems, err.Error())
		}
		for _, fe := range verrs {
			msg, ok := headerProblems[fe.StructField()]
			if !ok {
				msg = fmt.Sprintf("%s is invalid", fe.Field())
			}
			problems = append(problems, msg)
		}
	}

	known := make(map[string]bool, len(knownStockItems))
	for _, n := range knownStockItems {
		known[NormalizeStockName(n)] = true
	}

	for i, item := range inv.Items {
		pos := i + 1
		name := strings.TrimSpace(item.StockItemName)
		switch {
		case name == "":
			problems = append(problems, fmt.Sprintf("Item %d: stock item name is required", pos))
		case !known[NormalizeStockName(name)]:
			problems = append(problems, fmt.Sprintf("Item %d: stock item %q does not exist in Tally", pos, name))
		}
		if !item.Quantity.IsPositive() {
			problems = append(problems, fmt.Sprintf("Item %d: quantity must be greater than zero", pos))
		}
		if !item.Rate.IsPositive() {
			problems = append(problems, fmt.Sprintf("Item %d: rate must be greater than zero", pos))
		}
	}

	return ValidationResult{IsValid: len(problems) == 0, Errors: problems}
}
