package tally

import "strings"

// Role is the part a ledger plays in a voucher, derived from its parent group.
type Role string

const (
	RoleOther    Role = ""
	RoleParty    Role = "party"
	RoleSales    Role = "sales"
	RolePurchase Role = "purchase"
	RoleTax      Role = "tax"
	RoleBank     Role = "bank"
)

// GroupTable maps Tally parent group names to roles. Names are compared
// lower-cased. It is the one table used by both invoicing and banking flows.
type GroupTable struct {
	Bank     []string `toml:"bank" json:"bank"`
	Party    []string `toml:"party" json:"party"`
	Sales    []string `toml:"sales" json:"sales"`
	Purchase []string `toml:"purchase" json:"purchase"`
	Tax      []string `toml:"tax" json:"tax"`
}

// DefaultGroups is the canonical group table.
var DefaultGroups = GroupTable{
	Bank: []string{
		"bank accounts",
		"bank account",
		"cash-in-hand",
		"bank od a/c",
		"bank cc a/c",
		"current assets",
	},
	Party:    []string{"sundry debtors", "sundry creditors"},
	Sales:    []string{"sales accounts"},
	Purchase: []string{"purchase accounts"},
	Tax:      []string{"duties & taxes"},
}

// Role classifies a parent group name.
func (g GroupTable) Role(parent string) Role {
	p := strings.ToLower(strings.TrimSpace(parent))
	if p == "" {
		return RoleOther
	}
	switch {
	case containsFold(g.Party, p):
		return RoleParty
	case containsFold(g.Sales, p):
		return RoleSales
	case containsFold(g.Purchase, p):
		return RolePurchase
	case containsFold(g.Tax, p):
		return RoleTax
	case containsFold(g.Bank, p):
		return RoleBank
	}
	return RoleOther
}

// IsBankGroup reports whether parent is a bank or cash group.
func (g GroupTable) IsBankGroup(parent string) bool {
	return g.Role(parent) == RoleBank
}

// Merge returns g with every empty list taken from def.
func (g GroupTable) Merge(def GroupTable) GroupTable {
	if len(g.Bank) == 0 {
		g.Bank = def.Bank
	}
	if len(g.Party) == 0 {
		g.Party = def.Party
	}
	if len(g.Sales) == 0 {
		g.Sales = def.Sales
	}
	if len(g.Purchase) == 0 {
		g.Purchase = def.Purchase
	}
	if len(g.Tax) == 0 {
		g.Tax = def.Tax
	}
	return g
}

func containsFold(list []string, lower string) bool {
	for _, s := range list {
		if strings.ToLower(strings.TrimSpace(s)) == lower {
			return true
		}
	}
	return false
}
