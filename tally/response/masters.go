package response

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/xmltree"
)

// Known locations of master records, most common first. FindAll walks
// repeated TALLYMESSAGE elements, so one message and many messages read the
// same way.
var masterPaths = [][]string{
	{"ENVELOPE", "BODY", "IMPORTDATA", "REQUESTDATA", "TALLYMESSAGE"},
	{"ENVELOPE", "BODY", "DATA", "TALLYMESSAGE"},
	{"ENVELOPE", "BODY", "DATA", "COLLECTION"},
	{"ENVELOPE", "COLLECTION"},
}

var companyPaths = [][]string{
	{"ENVELOPE", "BODY", "IMPORTDATA", "REQUESTDESC", "STATICVARIABLES", "SVCURRENTCOMPANY"},
	{"ENVELOPE", "BODY", "EXPORTDATA", "REQUESTDESC", "STATICVARIABLES", "SVCURRENTCOMPANY"},
	{"ENVELOPE", "BODY", "DESC", "STATICVARIABLES", "SVCURRENTCOMPANY"},
}

var rateFields = []string{"RATEOFTAXCALCULATION", "GSTRATE", "TAXRATE"}

// CompanyName returns the company a reply was produced for.
func CompanyName(doc *xmltree.Node) (string, bool) {
	for _, p := range companyPaths {
		if v := doc.Find(p...).Value(); v != "" {
			return v, true
		}
	}
	return "", false
}

// records returns the master elements called kind. When none sit at a known
// path the whole tree is searched and the shape drift is logged.
func records(doc *xmltree.Node, kind string) []*xmltree.Node {
	for _, p := range masterPaths {
		if found := doc.FindAll(append(slices.Clone(p), kind)...); len(found) > 0 {
			return found
		}
	}

	found := collect(doc, kind, nil)
	if len(found) > 0 {
		tally.Logger().WithFields(logrus.Fields{
			"root":    doc.Root().Name,
			"kind":    kind,
			"records": len(found),
		}).Warn("master records found outside the known reply paths")
	}
	return found
}

// collect gathers named elements called kind without descending into them.
func collect(n *xmltree.Node, kind string, found []*xmltree.Node) []*xmltree.Node {
	if n == nil {
		return found
	}
	for _, c := range n.Children {
		if c.Name == kind && recordName(c) != "" {
			found = append(found, c)
			continue
		}
		found = collect(c, kind, found)
	}
	return found
}

// recordName reads NAME from the attribute or, depending on the Tally
// configuration, from a NAME or NAME.LIST/NAME child.
func recordName(n *xmltree.Node) string {
	if v, ok := n.Attr("NAME"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v := n.ChildValue("NAME"); v != "" {
		return v
	}
	return n.Find("NAME.LIST", "NAME").Value()
}

func taxRate(n *xmltree.Node) *decimal.Decimal {
	for _, f := range rateFields {
		v := strings.TrimSpace(strings.TrimSuffix(n.ChildValue(f), "%"))
		if v == "" {
			continue
		}
		r, err := decimal.NewFromString(v)
		if err != nil {
			continue
		}
		return &r
	}
	return nil
}

// LedgerCatalog partitions the LEDGER records of a reply by parent group.
func LedgerCatalog(doc *xmltree.Node, groups tally.GroupTable) tally.LedgerCatalog {
	b := tally.NewCatalogBuilder(groups)
	for _, l := range records(doc, "LEDGER") {
		parent := l.ChildValue("PARENT")
		if parent == "" {
			parent, _ = l.Attr("PARENT")
		}
		var rate *decimal.Decimal
		if groups.Role(parent) == tally.RoleTax {
			rate = taxRate(l)
		}
		b.Add(recordName(l), parent, rate)
	}
	tally.Logger().WithField("ledgers", b.Len()).Debug("ledger catalog parsed")
	return b.Catalog()
}

// StockItems lists the STOCKITEM names of a reply, sorted.
func StockItems(doc *xmltree.Node) tally.StockItemCatalog {
	var names []string
	for _, s := range records(doc, "STOCKITEM") {
		names = append(names, recordName(s))
	}
	return tally.NewStockItemCatalog(names)
}

// Companies lists the companies of a "List of Companies" reply. The id is the
// GUID, else the company number, else the name.
func Companies(doc *xmltree.Node) []tally.Company {
	out := []tally.Company{}
	seen := map[string]bool{}
	for _, c := range records(doc, "COMPANY") {
		name := recordName(c)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		id := c.ChildValue("GUID")
		if id == "" {
			id = c.ChildValue("COMPANYNUMBER")
		}
		if id == "" {
			id = name
		}
		out = append(out, tally.Company{Name: name, ID: id})
	}
	return out
}
