package tally

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// LedgerCatalog is a read-only view of a company's ledgers at fetch time.
// Every name found in a role partition is also in AllLedgers.
type LedgerCatalog struct {
	AllLedgers      []string    `json:"allLedgers"`
	PartyLedgers    []string    `json:"partyLedgers"`
	SalesLedgers    []string    `json:"salesLedgers"`
	PurchaseLedgers []string    `json:"purchaseLedgers"`
	TaxLedgers      []TaxLedger `json:"taxLedgers"`
	BankLedgers     []string    `json:"bankLedgers"`
}

// CatalogBuilder accumulates ledger records in arrival order.
type CatalogBuilder struct {
	groups GroupTable
	cat    LedgerCatalog
	seen   map[string]bool
}

// NewCatalogBuilder returns a builder classifying with groups.
func NewCatalogBuilder(groups GroupTable) *CatalogBuilder {
	return &CatalogBuilder{
		groups: groups,
		cat: LedgerCatalog{
			AllLedgers:      []string{},
			PartyLedgers:    []string{},
			SalesLedgers:    []string{},
			PurchaseLedgers: []string{},
			TaxLedgers:      []TaxLedger{},
			BankLedgers:     []string{},
		},
		seen: make(map[string]bool),
	}
}

// Add records one ledger. Blank and repeated names are ignored. rate is only
// kept for tax ledgers.
func (b *CatalogBuilder) Add(name, parent string, rate *decimal.Decimal) {
	name = strings.TrimSpace(name)
	if name == "" || b.seen[name] {
		return
	}
	b.seen[name] = true
	b.cat.AllLedgers = append(b.cat.AllLedgers, name)

	switch b.groups.Role(parent) {
	case RoleParty:
		b.cat.PartyLedgers = append(b.cat.PartyLedgers, name)
	case RoleSales:
		b.cat.SalesLedgers = append(b.cat.SalesLedgers, name)
	case RolePurchase:
		b.cat.PurchaseLedgers = append(b.cat.PurchaseLedgers, name)
	case RoleTax:
		b.cat.TaxLedgers = append(b.cat.TaxLedgers, TaxLedger{Name: name, Rate: rate})
	case RoleBank:
		b.cat.BankLedgers = append(b.cat.BankLedgers, name)
	}
}

// Len is the number of distinct ledgers added so far.
func (b *CatalogBuilder) Len() int {
	return len(b.cat.AllLedgers)
}

// Catalog returns the accumulated catalog.
func (b *CatalogBuilder) Catalog() LedgerCatalog {
	return b.cat.Clone()
}

// Clone returns a deep copy of c.
func (c LedgerCatalog) Clone() LedgerCatalog {
	out := LedgerCatalog{
		AllLedgers:      slices.Clone(c.AllLedgers),
		PartyLedgers:    slices.Clone(c.PartyLedgers),
		SalesLedgers:    slices.Clone(c.SalesLedgers),
		PurchaseLedgers: slices.Clone(c.PurchaseLedgers),
		BankLedgers:     slices.Clone(c.BankLedgers),
	}
	if c.TaxLedgers != nil {
		out.TaxLedgers = make([]TaxLedger, len(c.TaxLedgers))
		for i, t := range c.TaxLedgers {
			out.TaxLedgers[i] = TaxLedger{Name: t.Name}
			if t.Rate != nil {
				r := *t.Rate
				out.TaxLedgers[i].Rate = &r
			}
		}
	}
	return out
}

// WithLedger returns a copy of c with one more ledger, classified by parent.
// It is the client-side append done after a successful ledger creation.
func (c LedgerCatalog) WithLedger(name, parent string, groups GroupTable) LedgerCatalog {
	b := NewCatalogBuilder(groups)
	b.cat = c.Clone()
	for _, n := range b.cat.AllLedgers {
		b.seen[n] = true
	}
	b.Add(name, parent, nil)
	return b.cat
}

// Has reports whether a ledger named name exists, ignoring case.
func (c LedgerCatalog) Has(name string) bool {
	name = strings.TrimSpace(name)
	for _, n := range c.AllLedgers {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// TaxRate returns the configured rate of a tax ledger.
func (c LedgerCatalog) TaxRate(name string) (decimal.Decimal, bool) {
	for _, t := range c.TaxLedgers {
		if strings.EqualFold(t.Name, name) && t.Rate != nil {
			return *t.Rate, true
		}
	}
	return decimal.Zero, false
}

// TaxLedgerNames lists the names of the tax partition.
func (c LedgerCatalog) TaxLedgerNames() []string {
	names := make([]string, len(c.TaxLedgers))
	for i, t := range c.TaxLedgers {
		names[i] = t.Name
	}
	return names
}

// StockItemCatalog is the sorted list of a company's stock item names.
type StockItemCatalog []string

// NewStockItemCatalog sorts and de-duplicates names.
func NewStockItemCatalog(names []string) StockItemCatalog {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return StockItemCatalog(slices.Compact(out))
}

// Contains compares normalised names, see NormalizeStockName.
func (s StockItemCatalog) Contains(name string) bool {
	want := NormalizeStockName(name)
	for _, n := range s {
		if NormalizeStockName(n) == want {
			return true
		}
	}
	return false
}
