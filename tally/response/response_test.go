package response

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/xmltree"
)

func parse(t *testing.T, s string) *xmltree.Node {
	t.Helper()
	doc, err := xmltree.ParseString(s)
	require.NoError(t, err)
	return doc
}

const oneLedger = `<ENVELOPE>
 <HEADER><TALLYREQUEST>Import Data</TALLYREQUEST></HEADER>
 <BODY><IMPORTDATA>
  <REQUESTDESC><REPORTNAME>All Masters</REPORTNAME>
   <STATICVARIABLES><SVCURRENTCOMPANY>Demo Co</SVCURRENTCOMPANY></STATICVARIABLES>
  </REQUESTDESC>
  <REQUESTDATA>
   <TALLYMESSAGE xmlns:UDF="TallyUDF">
    <LEDGER NAME="ABC Traders" RESERVEDNAME=""><PARENT>Sundry Debtors</PARENT></LEDGER>
   </TALLYMESSAGE>
  </REQUESTDATA>
 </IMPORTDATA></BODY>
</ENVELOPE>`

const manyLedgers = `<ENVELOPE><BODY><IMPORTDATA><REQUESTDATA>
 <TALLYMESSAGE><LEDGER NAME="ABC Traders"><PARENT>Sundry Debtors</PARENT></LEDGER></TALLYMESSAGE>
 <TALLYMESSAGE><LEDGER><NAME.LIST TYPE="String"><NAME>Sales A/c</NAME></NAME.LIST><PARENT>Sales Accounts</PARENT></LEDGER></TALLYMESSAGE>
 <TALLYMESSAGE><LEDGER><NAME>Purchase A/c</NAME><PARENT>Purchase Accounts</PARENT></LEDGER></TALLYMESSAGE>
 <TALLYMESSAGE><LEDGER NAME="Output GST"><PARENT>Duties &amp; Taxes</PARENT><RATEOFTAXCALCULATION> 18% </RATEOFTAXCALCULATION></LEDGER></TALLYMESSAGE>
 <TALLYMESSAGE><LEDGER NAME="Cess"><PARENT>Duties &amp; Taxes</PARENT></LEDGER></TALLYMESSAGE>
 <TALLYMESSAGE><LEDGER NAME="HDFC Bank"><PARENT>Bank Accounts</PARENT></LEDGER></TALLYMESSAGE>
 <TALLYMESSAGE><LEDGER NAME="Rent"><PARENT>Indirect Expenses</PARENT></LEDGER></TALLYMESSAGE>
</REQUESTDATA></IMPORTDATA></BODY></ENVELOPE>`

func TestLedgerCatalogSingleLedger(t *testing.T) {
	cat := LedgerCatalog(parse(t, oneLedger), tally.DefaultGroups)
	assert.Equal(t, []string{"ABC Traders"}, cat.AllLedgers)
	assert.Equal(t, []string{"ABC Traders"}, cat.PartyLedgers)
	assert.Empty(t, cat.SalesLedgers)
	assert.Empty(t, cat.PurchaseLedgers)
	assert.Empty(t, cat.TaxLedgers)
}

func TestLedgerCatalogManyMessages(t *testing.T) {
	cat := LedgerCatalog(parse(t, manyLedgers), tally.DefaultGroups)
	assert.Equal(t, []string{"ABC Traders", "Sales A/c", "Purchase A/c", "Output GST", "Cess", "HDFC Bank", "Rent"}, cat.AllLedgers)
	assert.Equal(t, []string{"ABC Traders"}, cat.PartyLedgers)
	assert.Equal(t, []string{"Sales A/c"}, cat.SalesLedgers)
	assert.Equal(t, []string{"Purchase A/c"}, cat.PurchaseLedgers)
	assert.Equal(t, []string{"HDFC Bank"}, cat.BankLedgers)
	require.Len(t, cat.TaxLedgers, 2)
	require.NotNil(t, cat.TaxLedgers[0].Rate)
	assert.Equal(t, "18", cat.TaxLedgers[0].Rate.String())
	assert.Nil(t, cat.TaxLedgers[1].Rate)
}

func TestOneAndTwoMessagesShareShape(t *testing.T) {
	two := `<ENVELOPE><BODY><DATA>
 <TALLYMESSAGE><LEDGER NAME="ABC Traders"><PARENT>Sundry Debtors</PARENT></LEDGER></TALLYMESSAGE>
 <TALLYMESSAGE><LEDGER NAME="XYZ Supplies"><PARENT>Sundry Creditors</PARENT></LEDGER></TALLYMESSAGE>
</DATA></BODY></ENVELOPE>`
	one := `<ENVELOPE><BODY><DATA>
 <TALLYMESSAGE><LEDGER NAME="ABC Traders"><PARENT>Sundry Debtors</PARENT></LEDGER></TALLYMESSAGE>
</DATA></BODY></ENVELOPE>`

	a := LedgerCatalog(parse(t, one), tally.DefaultGroups)
	b := LedgerCatalog(parse(t, two), tally.DefaultGroups)
	assert.Equal(t, []string{"ABC Traders"}, a.PartyLedgers)
	assert.Equal(t, []string{"ABC Traders", "XYZ Supplies"}, b.PartyLedgers)
	assert.NotNil(t, a.SalesLedgers)
	assert.NotNil(t, b.SalesLedgers)
}

func TestLedgerCatalogFallbackLogsDrift(t *testing.T) {
	hook := test.NewLocal(tally.Logger())
	defer hook.Reset()

	doc := parse(t, `<ENVELOPE><BODY><DATA><LISTOFACCOUNTS>
 <LEDGER NAME="Sales A/c"><PARENT>Sales Accounts</PARENT></LEDGER>
 <GROUP NAME="Misc"><LEDGER><NAME>Rent</NAME><PARENT>Indirect Expenses</PARENT></LEDGER></GROUP>
 <LEDGER><PARENT>Sales Accounts</PARENT></LEDGER>
</LISTOFACCOUNTS></DATA></BODY></ENVELOPE>`)

	cat := LedgerCatalog(doc, tally.DefaultGroups)
	assert.Equal(t, []string{"Sales A/c", "Rent"}, cat.AllLedgers)
	assert.Equal(t, []string{"Sales A/c"}, cat.SalesLedgers)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "ENVELOPE", entry.Data["root"])
	assert.Equal(t, "LEDGER", entry.Data["kind"])
}

func TestLedgerCatalogEmptyReply(t *testing.T) {
	cat := LedgerCatalog(parse(t, `<ENVELOPE><BODY/></ENVELOPE>`), tally.DefaultGroups)
	assert.Empty(t, cat.AllLedgers)
	assert.NotNil(t, cat.AllLedgers)

	assert.Empty(t, LedgerCatalog(nil, tally.DefaultGroups).AllLedgers)
}

func TestCompanyName(t *testing.T) {
	name, ok := CompanyName(parse(t, oneLedger))
	assert.True(t, ok)
	assert.Equal(t, "Demo Co", name)

	_, ok = CompanyName(parse(t, manyLedgers))
	assert.False(t, ok)
}

func TestStockItems(t *testing.T) {
	doc := parse(t, `<ENVELOPE><BODY><IMPORTDATA><REQUESTDATA>
 <TALLYMESSAGE><STOCKITEM NAME="Widget"><PARENT/></STOCKITEM></TALLYMESSAGE>
 <TALLYMESSAGE><STOCKITEM><NAME.LIST><NAME>Anchor Bolt</NAME></NAME.LIST></STOCKITEM></TALLYMESSAGE>
 <TALLYMESSAGE><STOCKITEM NAME="Widget"/></TALLYMESSAGE>
</REQUESTDATA></IMPORTDATA></BODY></ENVELOPE>`)
	assert.Equal(t, tally.StockItemCatalog{"Anchor Bolt", "Widget"}, StockItems(doc))
}

func TestCompanies(t *testing.T) {
	doc := parse(t, `<ENVELOPE><BODY><DATA><COLLECTION>
 <COMPANY NAME="Demo Co"><GUID>0f8fad5b-d9cb-469f-a165-70867728950e</GUID><COMPANYNUMBER>10000</COMPANYNUMBER></COMPANY>
 <COMPANY><NAME>Second Co</NAME><COMPANYNUMBER>10001</COMPANYNUMBER></COMPANY>
 <COMPANY NAME="Bare Co"/>
 <COMPANY NAME="Demo Co"/>
</COLLECTION></DATA></BODY></ENVELOPE>`)
	assert.Equal(t, []tally.Company{
		{Name: "Demo Co", ID: "0f8fad5b-d9cb-469f-a165-70867728950e"},
		{Name: "Second Co", ID: "10001"},
		{Name: "Bare Co", ID: "Bare Co"},
	}, Companies(doc))

	assert.Equal(t, []tally.Company{}, Companies(parse(t, `<ENVELOPE/>`)))
}

func TestIsSuccessAndDescribeError(t *testing.T) {
	tests := []struct {
		name    string
		xml     string
		success bool
		message string
	}{
		{
			name:    "created",
			xml:     `<RESPONSE><CREATED>1</CREATED><ALTERED>0</ALTERED></RESPONSE>`,
			success: true,
		},
		{
			name:    "status one",
			xml:     `<RESPONSE><STATUS>1</STATUS></RESPONSE>`,
			success: true,
		},
		{
			name:    "unknown masters",
			xml:     `<RESPONSE><STATUS>0</STATUS><EXCEPTIONS>1</EXCEPTIONS></RESPONSE>`,
			message: MissingMastersMessage,
		},
		{
			name:    "line error",
			xml:     `<RESPONSE><CREATED>0</CREATED><LINEERROR>Voucher totals do not match!</LINEERROR></RESPONSE>`,
			message: "Voucher totals do not match!",
		},
		{
			name: "enveloped import result",
			xml: `<ENVELOPE><HEADER><VERSION>1</VERSION><STATUS>1</STATUS></HEADER><BODY><DATA>
 <IMPORTRESULT><CREATED>0</CREATED><ERRORS>1</ERRORS><LINEERROR>Ledger 'Acme' does not exist!</LINEERROR></IMPORTRESULT>
</DATA></BODY></ENVELOPE>`,
			message: "Ledger 'Acme' does not exist!",
		},
		{
			name:    "enveloped created",
			xml:     `<ENVELOPE><HEADER><STATUS>1</STATUS></HEADER><BODY><DATA><IMPORTRESULT><CREATED>2</CREATED><LASTVCHID>17</LASTVCHID></IMPORTRESULT></DATA></BODY></ENVELOPE>`,
			success: true,
		},
		{
			name:    "header status only",
			xml:     `<ENVELOPE><HEADER><STATUS>1</STATUS></HEADER><BODY><DATA/></BODY></ENVELOPE>`,
			success: true,
		},
		{
			name:    "data line error",
			xml:     `<ENVELOPE><HEADER><STATUS>0</STATUS></HEADER><BODY><DATA><LINEERROR>Could not set 'SVCurrentCompany'</LINEERROR></DATA></BODY></ENVELOPE>`,
			message: "Could not set 'SVCurrentCompany'",
		},
		{
			name:    "desc",
			xml:     `<ENVELOPE><HEADER><STATUS>0</STATUS></HEADER><BODY><DESC><CMPINFO><ERROR>Company not open</ERROR></CMPINFO></DESC></BODY></ENVELOPE>`,
			message: "Company not open",
		},
		{
			name:    "bare response text",
			xml:     `<RESPONSE>Unknown Request, cannot be processed</RESPONSE>`,
			message: "Unknown Request, cannot be processed",
		},
		{
			name:    "nothing to go on",
			xml:     `<ENVELOPE><HEADER><STATUS>0</STATUS></HEADER></ENVELOPE>`,
			message: unspecifiedError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.xml)
			assert.Equal(t, tt.success, IsSuccess(doc))
			if !tt.success {
				assert.Equal(t, tt.message, DescribeError(doc))
			}
		})
	}
}

func TestNilReplyNeverPanics(t *testing.T) {
	assert.False(t, IsSuccess(nil))
	assert.Equal(t, unspecifiedError, DescribeError(nil))
	assert.Equal(t, Result{}, ImportResult(nil))
	assert.Empty(t, StockItems(nil))
}

func TestImportResult(t *testing.T) {
	doc := parse(t, `<ENVELOPE><BODY><DATA><IMPORTRESULT>
 <CREATED>3</CREATED><ALTERED>1</ALTERED><DELETED>0</DELETED><LASTVCHID>42</LASTVCHID>
 <COMBINED>0</COMBINED><IGNORED>2</IGNORED><ERRORS>1</ERRORS><CANCELLED>0</CANCELLED><EXCEPTIONS>x</EXCEPTIONS>
</IMPORTRESULT></DATA></BODY></ENVELOPE>`)
	assert.Equal(t, Result{Created: 3, Altered: 1, Ignored: 2, Errors: 1, LastVchID: "42"}, ImportResult(doc))
}
