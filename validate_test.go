package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validInvoice() Invoice {
	return Invoice{
		Date:       "2024-03-15",
		VoucherNo:  "INV-1",
		PartyName:  "Acme",
		MainLedger: "Sales A/c",
		Items:      []LineItem{{StockItemName: "Widget (5 kg)", Quantity: d("2"), Rate: d("50")}},
	}
}

func TestNormalizeStockName(t *testing.T) {
	tests := map[string]string{
		"widget( 5 kg )":      "WIDGET (5 KG)",
		"  Widget   (5 kg)  ": "WIDGET (5 KG)",
		"Blue\tPen":           "BLUE PEN",
		"Box(Large)Pack":      "BOX (LARGE)PACK",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeStockName(in), in)
	}
}

func TestValidateInvoiceValid(t *testing.T) {
	res := ValidateInvoice(validInvoice(), []string{"WIDGET(5 KG)", "Gadget"})
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestValidateInvoiceCollectsEveryProblem(t *testing.T) {
	inv := validInvoice()
	inv.Items = []LineItem{
		{StockItemName: "Unknown thing", Quantity: d("1"), Rate: d("10")},
		{StockItemName: "", Quantity: d("1"), Rate: d("10")},
	}
	res := ValidateInvoice(inv, []string{"Widget (5 kg)"})
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{
		`Item 1: stock item "Unknown thing" does not exist in Tally`,
		"Item 2: stock item name is required",
	}, res.Errors)

	var verr *ValidationError
	assert.ErrorAs(t, res.Err(), &verr)
	assert.Len(t, verr.Problems, 2)
}

func TestValidateInvoiceHeader(t *testing.T) {
	inv := Invoice{VoucherNo: "  ", PartyName: "", MainLedger: "\t"}
	res := ValidateInvoice(inv, nil)
	assert.False(t, res.IsValid)
	assert.ElementsMatch(t, []string{
		"Voucher number is required",
		"Party name is required",
		"Sales/purchase ledger is required",
		"At least one item is required",
	}, res.Errors)
}

func TestValidateInvoiceQuantityAndRate(t *testing.T) {
	inv := validInvoice()
	inv.Items[0].Quantity = d("0")
	inv.Items[0].Rate = d("-1")
	res := ValidateInvoice(inv, []string{"widget (5 kg)"})
	assert.Equal(t, []string{
		"Item 1: quantity must be greater than zero",
		"Item 1: rate must be greater than zero",
	}, res.Errors)
}
