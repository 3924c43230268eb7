package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogBuilder(t *testing.T) {
	rate := d("18")
	b := NewCatalogBuilder(DefaultGroups)
	b.Add("ABC Traders", "Sundry Debtors", nil)
	b.Add("XYZ Supplies", "sundry creditors", nil)
	b.Add("Sales A/c", "Sales Accounts", nil)
	b.Add("Purchase A/c", "Purchase Accounts", nil)
	b.Add("Output GST", "Duties & Taxes", &rate)
	b.Add("HDFC Bank", "Bank Accounts", nil)
	b.Add("Cash", "Cash-in-Hand", nil)
	b.Add("Rent", "Indirect Expenses", nil)
	b.Add("ABC Traders", "Sundry Debtors", nil)
	b.Add("  ", "Sundry Debtors", nil)

	cat := b.Catalog()
	assert.Equal(t, 8, b.Len())
	assert.Equal(t, []string{"ABC Traders", "XYZ Supplies"}, cat.PartyLedgers)
	assert.Equal(t, []string{"Sales A/c"}, cat.SalesLedgers)
	assert.Equal(t, []string{"Purchase A/c"}, cat.PurchaseLedgers)
	assert.Equal(t, []string{"HDFC Bank", "Cash"}, cat.BankLedgers)
	assert.Equal(t, []string{"Output GST"}, cat.TaxLedgerNames())
	assert.Contains(t, cat.AllLedgers, "Rent")

	got, ok := cat.TaxRate("output gst")
	require.True(t, ok)
	assert.True(t, rate.Equal(got))
	_, ok = cat.TaxRate("Sales A/c")
	assert.False(t, ok)
}

func TestEmptyCatalogHasEmptyPartitions(t *testing.T) {
	cat := NewCatalogBuilder(DefaultGroups).Catalog()
	assert.NotNil(t, cat.AllLedgers)
	assert.Empty(t, cat.AllLedgers)
	assert.NotNil(t, cat.TaxLedgers)
}

func TestWithLedgerDoesNotMutate(t *testing.T) {
	b := NewCatalogBuilder(DefaultGroups)
	b.Add("Sales A/c", "Sales Accounts", nil)
	orig := b.Catalog()

	next := orig.WithLedger("ABC Traders", "Sundry Debtors", DefaultGroups)
	assert.Equal(t, []string{"Sales A/c"}, orig.AllLedgers)
	assert.Empty(t, orig.PartyLedgers)
	assert.Equal(t, []string{"Sales A/c", "ABC Traders"}, next.AllLedgers)
	assert.Equal(t, []string{"ABC Traders"}, next.PartyLedgers)
	assert.True(t, next.Has("abc traders"))

	same := next.WithLedger("ABC Traders", "Sundry Debtors", DefaultGroups)
	assert.Len(t, same.AllLedgers, 2)
}

func TestGroupTable(t *testing.T) {
	assert.True(t, DefaultGroups.IsBankGroup("Bank OD A/c"))
	assert.True(t, DefaultGroups.IsBankGroup("current assets"))
	assert.False(t, DefaultGroups.IsBankGroup("Sundry Debtors"))
	assert.Equal(t, RoleOther, DefaultGroups.Role(""))

	custom := GroupTable{Tax: []string{"GST Payable"}}.Merge(DefaultGroups)
	assert.Equal(t, RoleTax, custom.Role("gst payable"))
	assert.Equal(t, RoleOther, custom.Role("Duties & Taxes"))
	assert.Equal(t, RoleParty, custom.Role("Sundry Debtors"))
}

func TestStockItemCatalog(t *testing.T) {
	s := NewStockItemCatalog([]string{"Widget", " ", "Bolt", "Widget", "Anchor"})
	assert.Equal(t, StockItemCatalog{"Anchor", "Bolt", "Widget"}, s)
	assert.True(t, s.Contains(" widget "))
	assert.False(t, s.Contains("Gizmo"))
}
