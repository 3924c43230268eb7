package request

import (
	"github.com/vouchrit/tally/tally/xmltree"
)

// FetchLedgers asks for the ledger masters of company.
func FetchLedgers(company string) string {
	return xmltree.Marshal(exportData("List of Accounts", company,
		xmltree.Leaf("ACCOUNTTYPE", "Ledgers"),
	))
}

// FetchStockItems asks for the stock item masters of company.
func FetchStockItems(company string) string {
	return xmltree.Marshal(exportData("List of Accounts", company,
		xmltree.Leaf("ACCOUNTTYPE", "Stock Items"),
	))
}

// FetchCompanies asks for the companies loaded in Tally.
func FetchCompanies() string {
	collection := xmltree.El("COLLECTION",
		xmltree.Leaf("TYPE", "Company"),
		xmltree.Leaf("NATIVEMETHOD", "Name"),
		xmltree.Leaf("NATIVEMETHOD", "GUID"),
		xmltree.Leaf("NATIVEMETHOD", "CompanyNumber"),
	).WithAttr("NAME", "List of Companies").WithAttr("ISMODIFY", "No")

	return xmltree.Marshal(xmltree.El("ENVELOPE",
		xmltree.El("HEADER",
			xmltree.Leaf("VERSION", "1"),
			xmltree.Leaf("TALLYREQUEST", "Export"),
			xmltree.Leaf("TYPE", "Collection"),
			xmltree.Leaf("ID", "List of Companies"),
		),
		xmltree.El("BODY",
			xmltree.El("DESC",
				xmltree.El("STATICVARIABLES",
					xmltree.Leaf("SVEXPORTFORMAT", exportFormat),
				),
				xmltree.El("TDL",
					xmltree.El("TDLMESSAGE", collection),
				),
			),
		),
	).WithAttr("xmlns:UDF", UDFNamespace))
}
