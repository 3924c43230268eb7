package request

import (
	"strings"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/xmltree"
)

// CreateLedger builds a ledger master "Create" request. Name and parent group
// are checked before anything is built; GST fields are only written when set.
func CreateLedger(m tally.LedgerMaster) (string, error) {
	name := strings.TrimSpace(m.Name)
	parent := strings.TrimSpace(m.ParentGroup)
	if name == "" {
		return "", tally.ErrMissingLedgerName
	}
	if parent == "" {
		return "", tally.ErrMissingParentGroup
	}

	ledger := xmltree.El("LEDGER",
		xmltree.El("NAME.LIST",
			xmltree.Leaf("NAME", name),
		).WithAttr("TYPE", "String"),
		xmltree.Leaf("PARENT", parent),
		optional("LEDSTATENAME", m.State),
		optional("GSTREGISTRATIONTYPE", m.GSTRegistrationType),
		optional("PARTYGSTIN", strings.ToUpper(strings.TrimSpace(m.PartyGSTIN))),
	).WithAttr("NAME", name).WithAttr("ACTION", "Create")

	return xmltree.Marshal(importData("All Masters", m.Company, tallyMessage(ledger))), nil
}
