package tally

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingLedgerName    = errors.New("ledger name is required")
	ErrMissingParentGroup   = errors.New("ledger parent group is required")
	ErrUnknownVoucherType   = errors.New("unknown voucher type")
	ErrZeroAmount           = errors.New("amount must not be zero")
	ErrUnbalancedVoucher    = errors.New("voucher does not balance to zero")
	ErrNeedAtLeastTwoLegs   = errors.New("voucher needs at least two ledger legs")
	ErrInvalidTallyDate     = errors.New("tally date must be exactly 8 digits (YYYYMMDD)")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrNoLineItems          = errors.New("invoice has no line items")
	ErrMissingBankingLedger = errors.New("bank and party ledgers are required")
)

// DateParseError is returned when a value matches none of the accepted date
// shapes.
type DateParseError struct {
	Input string
	Err   error
}

func (e *DateParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unable to parse date(%s): %s", e.Input, e.Err)
	}
	return fmt.Sprintf("unable to parse date(%s)", e.Input)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// ValidationError carries every problem found in an invoice.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid invoice: " + strings.Join(e.Problems, "; ")
}
