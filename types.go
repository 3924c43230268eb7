package tally

import (
	"github.com/shopspring/decimal"
)

// VoucherType is the Tally voucher type name.
type VoucherType string

const (
	VoucherSales    VoucherType = "Sales"
	VoucherPurchase VoucherType = "Purchase"
	VoucherPayment  VoucherType = "Payment"
	VoucherReceipt  VoucherType = "Receipt"
)

// LineItem is one inventory line of an invoice.
type LineItem struct {
	StockItemName                string          `json:"stockItemName"`
	Description                  string          `json:"description,omitempty"`
	Quantity                     decimal.Decimal `json:"quantity"`
	Unit                         string          `json:"unit,omitempty"`
	Rate                         decimal.Decimal `json:"rate"`
	DiscountPercentage           decimal.Decimal `json:"discountPercentage"`
	AdditionalDiscountPercentage decimal.Decimal `json:"additionalDiscountPercentage"`
}

// LedgerAllocation is a free-form leg of a voucher outside the item lines.
// The sign of Amount decides its debit/credit orientation.
type LedgerAllocation struct {
	LedgerName string          `json:"ledgerName"`
	Amount     decimal.Decimal `json:"amount"`
}

// TaxAllocation is a tax leg. Amount is derived from Percentage, see SyncTaxes.
type TaxAllocation struct {
	LedgerName string          `json:"ledgerName"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// Totals holds the derived sums of an invoice.
type Totals struct {
	ItemTotal   decimal.Decimal `json:"itemTotal"`
	LedgerTotal decimal.Decimal `json:"ledgerTotal"`
	TaxTotal    decimal.Decimal `json:"taxTotal"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}

// Invoice is a sales or purchase invoice as the UI hands it over. Date may be
// in any shape accepted by ToTallyDate.
type Invoice struct {
	Company    string             `json:"company,omitempty"`
	Date       string             `json:"date"`
	VoucherNo  string             `json:"voucherNo" validate:"required"`
	PartyName  string             `json:"partyName" validate:"required"`
	MainLedger string             `json:"mainLedger" validate:"required"`
	Narration  string             `json:"narration,omitempty"`
	Reference  string             `json:"reference,omitempty"`
	Items      []LineItem         `json:"items" validate:"min=1"`
	Ledgers    []LedgerAllocation `json:"ledgers,omitempty"`
	Taxes      []TaxAllocation    `json:"taxes,omitempty"`
}

// BankingRequest describes a two-leg Payment or Receipt voucher.
type BankingRequest struct {
	Company     string          `json:"company,omitempty"`
	VoucherType VoucherType     `json:"voucherType" validate:"required,oneof=Payment Receipt"`
	Date        string          `json:"date" validate:"required"`
	VoucherNo   string          `json:"voucherNo,omitempty"`
	BankLedger  string          `json:"bankLedger" validate:"required"`
	PartyLedger string          `json:"partyLedger" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Narration   string          `json:"narration,omitempty"`
}

// LedgerMaster is the input of a ledger creation request. Optional GST fields
// are only sent when set.
type LedgerMaster struct {
	Company             string `json:"company,omitempty"`
	Name                string `json:"name"`
	ParentGroup         string `json:"parentGroup"`
	State               string `json:"state,omitempty"`
	GSTRegistrationType string `json:"gstRegistrationType,omitempty"`
	PartyGSTIN          string `json:"partyGstin,omitempty"`
}

// TaxLedger is a ledger under Duties & Taxes. Rate is nil when the ledger
// carries no configured rate.
type TaxLedger struct {
	Name string           `json:"name"`
	Rate *decimal.Decimal `json:"rate,omitempty"`
}

// Company is an entry of Tally's company list.
type Company struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}
