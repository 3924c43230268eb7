package tally

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineNet is quantity*rate with the two discounts applied one after the
// other: the additional discount works on the already discounted amount.
// The result is not rounded.
func LineNet(item LineItem) decimal.Decimal {
	gross := item.Quantity.Mul(item.Rate)
	afterFirst := gross.Mul(hundred.Sub(item.DiscountPercentage)).Div(hundred)
	return afterFirst.Mul(hundred.Sub(item.AdditionalDiscountPercentage)).Div(hundred)
}

// EffectiveDiscount folds both discounts into the single percentage Tally
// stores on an inventory entry. 10% then 10% is 19%.
func EffectiveDiscount(item LineItem) decimal.Decimal {
	remaining := hundred.Sub(item.DiscountPercentage).Mul(hundred.Sub(item.AdditionalDiscountPercentage)).Div(hundred)
	return hundred.Sub(remaining)
}

// ComputeTotals sums the three kinds of voucher legs.
func ComputeTotals(items []LineItem, ledgers []LedgerAllocation, taxes []TaxAllocation) Totals {
	t := Totals{
		ItemTotal:   decimal.Zero,
		LedgerTotal: decimal.Zero,
		TaxTotal:    decimal.Zero,
	}
	for _, it := range items {
		t.ItemTotal = t.ItemTotal.Add(LineNet(it))
	}
	for _, l := range ledgers {
		t.LedgerTotal = t.LedgerTotal.Add(l.Amount)
	}
	for _, tx := range taxes {
		t.TaxTotal = t.TaxTotal.Add(tx.Amount)
	}
	t.GrandTotal = t.ItemTotal.Add(t.LedgerTotal).Add(t.TaxTotal)
	return t
}

// SyncTaxes returns a copy of taxes with every amount recomputed as
// subtotal*percentage/100.
func SyncTaxes(taxes []TaxAllocation, subtotal decimal.Decimal) []TaxAllocation {
	if taxes == nil {
		return nil
	}
	out := make([]TaxAllocation, len(taxes))
	for i, tx := range taxes {
		tx.Amount = subtotal.Mul(tx.Percentage).Div(hundred)
		out[i] = tx
	}
	return out
}

// Totals of the invoice as it stands.
func (inv Invoice) Totals() Totals {
	return ComputeTotals(inv.Items, inv.Ledgers, inv.Taxes)
}

// Recalculate returns a copy of inv whose tax amounts follow the current
// item total.
func (inv Invoice) Recalculate() Invoice {
	itemTotal := ComputeTotals(inv.Items, nil, nil).ItemTotal
	inv.Taxes = SyncTaxes(inv.Taxes, itemTotal)
	return inv
}
