package tally

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// InventoryEntry is one rendered item line. Amount is the signed net amount.
type InventoryEntry struct {
	StockItemName string
	Description   string
	Unit          string
	Quantity      decimal.Decimal
	Rate          decimal.Decimal
	Discount      decimal.Decimal
	Amount        decimal.Decimal
	Ledger        string
}

// DeemedPositive is the ISDEEMEDPOSITIVE flag of the line.
func (e InventoryEntry) DeemedPositive() string {
	return DeemedPositive(e.Amount)
}

// LedgerEntry is one accounting leg of a voucher.
type LedgerEntry struct {
	LedgerName     string
	Amount         decimal.Decimal
	DeemedPositive string
	IsParty        bool
	// BillRef is the "New Ref" bill the party leg opens.
	BillRef string
}

// Voucher is the outbound wire entity: built once, rendered, sent, dropped.
// Entries are kept in the order Tally imports them.
type Voucher struct {
	Type       VoucherType
	Company    string
	Date       string
	VoucherNo  string
	PartyName  string
	MainLedger string
	Narration  string
	Reference  string
	Inventory  []InventoryEntry
	Entries    []LedgerEntry
}

// IsBalanced returns nil if all legs of the voucher, as rendered on the wire,
// sum to zero.
func (v *Voucher) IsBalanced() error {
	if len(v.Inventory)+len(v.Entries) < 2 {
		return ErrNeedAtLeastTwoLegs
	}
	bal := decimal.Zero
	for _, inv := range v.Inventory {
		bal = bal.Add(RoundAmount(inv.Amount))
	}
	for _, e := range v.Entries {
		bal = bal.Add(RoundAmount(e.Amount))
	}
	if !bal.IsZero() {
		return fmt.Errorf("%w: off by %s", ErrUnbalancedVoucher, bal.String())
	}
	return nil
}

// NewVoucher builds a Sales or Purchase voucher from an invoice. Items, free
// ledger allocations and taxes keep their own sign; the party leg carries the
// negated grand total and opens a bill named after the voucher number. Both
// voucher types share this orientation.
func NewVoucher(inv Invoice, vt VoucherType) (Voucher, error) {
	if vt != VoucherSales && vt != VoucherPurchase {
		return Voucher{}, fmt.Errorf("%w: %q", ErrUnknownVoucherType, vt)
	}
	if len(inv.Items) == 0 {
		return Voucher{}, ErrNoLineItems
	}
	d, err := ToTallyDate(inv.Date)
	if err != nil {
		return Voucher{}, err
	}

	v := Voucher{
		Type:       vt,
		Company:    inv.Company,
		Date:       d,
		VoucherNo:  strings.TrimSpace(inv.VoucherNo),
		PartyName:  strings.TrimSpace(inv.PartyName),
		MainLedger: strings.TrimSpace(inv.MainLedger),
		Narration:  inv.Narration,
		Reference:  inv.Reference,
	}

	sum := decimal.Zero
	for _, item := range inv.Items {
		amount := RoundAmount(LineNet(item))
		sum = sum.Add(amount)
		v.Inventory = append(v.Inventory, InventoryEntry{
			StockItemName: strings.TrimSpace(item.StockItemName),
			Description:   item.Description,
			Unit:          item.Unit,
			Quantity:      item.Quantity,
			Rate:          item.Rate,
			Discount:      EffectiveDiscount(item),
			Amount:        amount,
			Ledger:        v.MainLedger,
		})
	}

	var legs []LedgerEntry
	for _, l := range inv.Ledgers {
		legs = append(legs, newLedgerEntry(l.LedgerName, l.Amount))
	}
	for _, tx := range inv.Taxes {
		legs = append(legs, newLedgerEntry(tx.LedgerName, tx.Amount))
	}
	for _, l := range legs {
		sum = sum.Add(l.Amount)
	}

	// The party leg absorbs the rounding of the other legs.
	party := sum.Neg()
	v.Entries = append(v.Entries, LedgerEntry{
		LedgerName:     v.PartyName,
		Amount:         party,
		DeemedPositive: DeemedPositive(party),
		IsParty:        true,
		BillRef:        v.VoucherNo,
	})
	v.Entries = append(v.Entries, legs...)

	if err := v.IsBalanced(); err != nil {
		return Voucher{}, err
	}
	return v, nil
}

func newLedgerEntry(name string, amount decimal.Decimal) LedgerEntry {
	amount = RoundAmount(amount)
	return LedgerEntry{
		LedgerName:     name,
		Amount:         amount,
		DeemedPositive: DeemedPositive(amount),
	}
}

type bankingLeg struct {
	sign           int64
	deemedPositive string
}

// bankingLegs is the Payment/Receipt sign table. Reversing it posts the
// mirror image of the transaction, so it is spelled out instead of derived.
var bankingLegs = map[VoucherType]struct {
	bank  bankingLeg
	party bankingLeg
}{
	VoucherPayment: {
		bank:  bankingLeg{sign: -1, deemedPositive: "Yes"},
		party: bankingLeg{sign: 1, deemedPositive: "No"},
	},
	VoucherReceipt: {
		bank:  bankingLeg{sign: 1, deemedPositive: "No"},
		party: bankingLeg{sign: -1, deemedPositive: "Yes"},
	},
}

// ValidateBankingRequest checks the preconditions of a banking voucher.
func ValidateBankingRequest(req BankingRequest) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			switch fe.StructField() {
			case "VoucherType":
				return fmt.Errorf("%w: %q", ErrUnknownVoucherType, req.VoucherType)
			case "Date":
				return &DateParseError{Input: req.Date}
			default:
				return ErrMissingBankingLedger
			}
		}
	}
	if req.Amount.IsZero() {
		return ErrZeroAmount
	}
	return nil
}

// NewBankingVoucher builds the two-leg Payment or Receipt voucher: bank leg
// first, party leg second, signs taken from the banking sign table applied to
// the absolute amount.
func NewBankingVoucher(req BankingRequest) (Voucher, error) {
	if err := ValidateBankingRequest(req); err != nil {
		return Voucher{}, err
	}
	legs, ok := bankingLegs[req.VoucherType]
	if !ok {
		return Voucher{}, fmt.Errorf("%w: %q", ErrUnknownVoucherType, req.VoucherType)
	}
	d, err := ToTallyDate(req.Date)
	if err != nil {
		return Voucher{}, err
	}

	amount := RoundAmount(req.Amount.Abs())
	if amount.IsZero() {
		return Voucher{}, ErrZeroAmount
	}
	v := Voucher{
		Type:      req.VoucherType,
		Company:   req.Company,
		Date:      d,
		VoucherNo: strings.TrimSpace(req.VoucherNo),
		PartyName: strings.TrimSpace(req.PartyLedger),
		Narration: req.Narration,
		Entries: []LedgerEntry{
			{
				LedgerName:     strings.TrimSpace(req.BankLedger),
				Amount:         amount.Mul(decimal.NewFromInt(legs.bank.sign)),
				DeemedPositive: legs.bank.deemedPositive,
			},
			{
				LedgerName:     strings.TrimSpace(req.PartyLedger),
				Amount:         amount.Mul(decimal.NewFromInt(legs.party.sign)),
				DeemedPositive: legs.party.deemedPositive,
			},
		},
	}
	if err := v.IsBalanced(); err != nil {
		return Voucher{}, err
	}
	return v, nil
}

// ParseVoucherType accepts a voucher type name in any case.
func ParseVoucherType(s string) (VoucherType, error) {
	for _, vt := range []VoucherType{VoucherSales, VoucherPurchase, VoucherPayment, VoucherReceipt} {
		if strings.EqualFold(strings.TrimSpace(s), string(vt)) {
			return vt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVoucherType, s)
}
