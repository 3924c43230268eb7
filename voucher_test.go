package tally

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBalanced(t *testing.T) {
	tests := []struct {
		name    string
		v       *Voucher
		wantErr error
	}{
		{
			name: "errors on too few legs",
			v: &Voucher{
				Entries: []LedgerEntry{{LedgerName: "Bank", Amount: d("10")}},
			},
			wantErr: ErrNeedAtLeastTwoLegs,
		},
		{
			name: "errors when legs do not cancel",
			v: &Voucher{
				Entries: []LedgerEntry{
					{LedgerName: "Bank", Amount: d("10")},
					{LedgerName: "Party", Amount: d("-5")},
				},
			},
			wantErr: ErrUnbalancedVoucher,
		},
		{
			name: "errors when rounded legs do not cancel",
			v: &Voucher{
				Entries: []LedgerEntry{
					{LedgerName: "Bank", Amount: d("86.625")},
					{LedgerName: "Party", Amount: d("-86.62")},
				},
			},
			wantErr: ErrUnbalancedVoucher,
		},
		{
			name: "inventory and ledger legs",
			v: &Voucher{
				Inventory: []InventoryEntry{{StockItemName: "Widget", Amount: d("100")}},
				Entries:   []LedgerEntry{{LedgerName: "Acme", Amount: d("-100")}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.IsBalanced()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewVoucher(t *testing.T) {
	inv := validInvoice()
	inv.Items = []LineItem{discountedItem()}
	inv.Ledgers = []LedgerAllocation{{LedgerName: "Discount", Amount: d("-50")}}
	inv.Taxes = []TaxAllocation{{LedgerName: "GST", Percentage: d("10"), Amount: d("81")}}

	v, err := NewVoucher(inv, VoucherSales)
	require.NoError(t, err)
	assert.Equal(t, "20240315", v.Date)
	require.Len(t, v.Inventory, 1)
	assert.Equal(t, "Sales A/c", v.Inventory[0].Ledger)
	assert.True(t, d("19").Equal(v.Inventory[0].Discount))

	require.Len(t, v.Entries, 3)
	party := v.Entries[0]
	assert.True(t, party.IsParty)
	assert.Equal(t, "INV-1", party.BillRef)
	assert.True(t, d("-841").Equal(party.Amount))
	assert.Equal(t, "Yes", party.DeemedPositive)
	assert.Equal(t, "Discount", v.Entries[1].LedgerName)
	assert.Equal(t, "Yes", v.Entries[1].DeemedPositive)
	assert.Equal(t, "GST", v.Entries[2].LedgerName)
	assert.Equal(t, "No", v.Entries[2].DeemedPositive)
}

func TestNewVoucherRoundsLegs(t *testing.T) {
	item := LineItem{StockItemName: "Widget", Quantity: d("1"), Rate: d("99"), DiscountPercentage: d("12.5")}
	inv := validInvoice()
	inv.Items = []LineItem{item, item}
	inv.Taxes = []TaxAllocation{{LedgerName: "GST", Percentage: d("5"), Amount: d("8.6625")}}

	v, err := NewVoucher(inv, VoucherSales)
	require.NoError(t, err)
	require.NoError(t, v.IsBalanced())

	wire := decimal.Zero
	for _, e := range v.Inventory {
		assert.Equal(t, "86.63", FormatAmount(e.Amount))
		wire = wire.Add(decimal.RequireFromString(FormatAmount(e.Amount)))
	}
	for _, e := range v.Entries {
		wire = wire.Add(decimal.RequireFromString(FormatAmount(e.Amount)))
	}
	assert.True(t, wire.IsZero(), "wire legs sum to %s", wire)
	assert.Equal(t, "-181.92", FormatAmount(v.Entries[0].Amount))
	assert.Equal(t, "8.66", FormatAmount(v.Entries[1].Amount))
}

func TestNewVoucherErrors(t *testing.T) {
	_, err := NewVoucher(validInvoice(), VoucherPayment)
	assert.ErrorIs(t, err, ErrUnknownVoucherType)

	inv := validInvoice()
	inv.Items = nil
	_, err = NewVoucher(inv, VoucherSales)
	assert.ErrorIs(t, err, ErrNoLineItems)
}

func TestNewBankingVoucher(t *testing.T) {
	tests := []struct {
		vt        VoucherType
		bank      string
		bankFlag  string
		party     string
		partyFlag string
	}{
		{VoucherPayment, "-2500", "Yes", "2500", "No"},
		{VoucherReceipt, "2500", "No", "-2500", "Yes"},
	}
	for _, tt := range tests {
		t.Run(string(tt.vt), func(t *testing.T) {
			for _, amount := range []string{"2500", "-2500"} {
				v, err := NewBankingVoucher(BankingRequest{
					VoucherType: tt.vt,
					Date:        "2024-03-15",
					BankLedger:  " HDFC Bank ",
					PartyLedger: "ABC Traders",
					Amount:      d(amount),
				})
				require.NoError(t, err)
				require.Len(t, v.Entries, 2)
				assert.Equal(t, "HDFC Bank", v.Entries[0].LedgerName)
				assert.True(t, d(tt.bank).Equal(v.Entries[0].Amount))
				assert.Equal(t, tt.bankFlag, v.Entries[0].DeemedPositive)
				assert.Equal(t, "ABC Traders", v.Entries[1].LedgerName)
				assert.True(t, d(tt.party).Equal(v.Entries[1].Amount))
				assert.Equal(t, tt.partyFlag, v.Entries[1].DeemedPositive)
				assert.Empty(t, v.Inventory)
			}
		})
	}
}

func TestValidateBankingRequest(t *testing.T) {
	ok := BankingRequest{
		VoucherType: VoucherReceipt,
		Date:        "20240315",
		BankLedger:  "Bank",
		PartyLedger: "Party",
		Amount:      decimal.NewFromInt(1),
	}
	assert.NoError(t, ValidateBankingRequest(ok))

	bad := ok
	bad.PartyLedger = ""
	assert.ErrorIs(t, ValidateBankingRequest(bad), ErrMissingBankingLedger)

	bad = ok
	bad.VoucherType = VoucherSales
	assert.ErrorIs(t, ValidateBankingRequest(bad), ErrUnknownVoucherType)

	bad = ok
	bad.Date = ""
	var derr *DateParseError
	assert.ErrorAs(t, ValidateBankingRequest(bad), &derr)

	bad = ok
	bad.Amount = decimal.Zero
	assert.ErrorIs(t, ValidateBankingRequest(bad), ErrZeroAmount)
}

func TestParseVoucherType(t *testing.T) {
	vt, err := ParseVoucherType(" receipt ")
	require.NoError(t, err)
	assert.Equal(t, VoucherReceipt, vt)

	_, err = ParseVoucherType("Journal")
	assert.ErrorIs(t, err, ErrUnknownVoucherType)
}
