// Package request builds the XML documents sent to Tally Prime. Every
// builder is a pure function of its arguments. Element names and their order
// are what Tally's importer expects and must not change.
package request

import (
	"strings"

	"github.com/vouchrit/tally/tally/xmltree"
)

const (
	// UDFNamespace is declared on every request.
	UDFNamespace = "TallyUDF"

	exportFormat = "$$SysName:XML"
)

// exportData wraps an "Export Data" request for a built-in report. The company
// selector is left out when company is empty so Tally answers for the company
// currently open.
func exportData(report, company string, vars ...*xmltree.Node) *xmltree.Node {
	static := xmltree.El("STATICVARIABLES",
		xmltree.Leaf("SVEXPORTFORMAT", exportFormat),
		optional("SVCURRENTCOMPANY", company),
	)
	static.Append(vars...)

	return xmltree.El("ENVELOPE",
		xmltree.El("HEADER",
			xmltree.Leaf("TALLYREQUEST", "Export Data"),
		),
		xmltree.El("BODY",
			xmltree.El("EXPORTDATA",
				xmltree.El("REQUESTDESC",
					xmltree.Leaf("REPORTNAME", report),
					static,
				),
			),
		),
	).WithAttr("xmlns:UDF", UDFNamespace)
}

// importData wraps TALLYMESSAGE blocks in an "Import Data" request.
func importData(report, company string, messages ...*xmltree.Node) *xmltree.Node {
	desc := xmltree.El("REQUESTDESC", xmltree.Leaf("REPORTNAME", report))
	if strings.TrimSpace(company) != "" {
		desc.Append(xmltree.El("STATICVARIABLES", xmltree.Leaf("SVCURRENTCOMPANY", company)))
	}
	return xmltree.El("ENVELOPE",
		xmltree.El("HEADER",
			xmltree.Leaf("TALLYREQUEST", "Import Data"),
		),
		xmltree.El("BODY",
			xmltree.El("IMPORTDATA",
				desc,
				xmltree.El("REQUESTDATA", messages...),
			),
		),
	)
}

func tallyMessage(children ...*xmltree.Node) *xmltree.Node {
	return xmltree.El("TALLYMESSAGE", children...).WithAttr("xmlns:UDF", UDFNamespace)
}

// optional returns nil for a blank value; Append skips nil children, so the
// element is absent rather than empty.
func optional(name, value string) *xmltree.Node {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return xmltree.Leaf(name, value)
}
