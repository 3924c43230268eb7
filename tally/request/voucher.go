package request

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/xmltree"
)

const invoiceView = "Invoice Voucher View"

var ErrEmptyBatch = errors.New("batch has no vouchers")

// SalesVoucher builds the import request of a sales invoice.
func SalesVoucher(inv tally.Invoice) (string, error) {
	return invoiceRequest(inv, tally.VoucherSales)
}

// PurchaseVoucher builds the import request of a purchase invoice.
func PurchaseVoucher(inv tally.Invoice) (string, error) {
	return invoiceRequest(inv, tally.VoucherPurchase)
}

func invoiceRequest(inv tally.Invoice, vt tally.VoucherType) (string, error) {
	v, err := tally.NewVoucher(inv, vt)
	if err != nil {
		return "", err
	}
	return Voucher(v), nil
}

// BankingVoucher builds the import request of a two-leg Payment or Receipt.
func BankingVoucher(req tally.BankingRequest) (string, error) {
	v, err := tally.NewBankingVoucher(req)
	if err != nil {
		return "", err
	}
	return Voucher(v), nil
}

// BatchVouchers puts one TALLYMESSAGE per invoice into a single request. The
// company of the first invoice selects the target company.
func BatchVouchers(invoices []tally.Invoice, vt tally.VoucherType) (string, error) {
	if len(invoices) == 0 {
		return "", ErrEmptyBatch
	}
	messages := make([]*xmltree.Node, 0, len(invoices))
	for i, inv := range invoices {
		v, err := tally.NewVoucher(inv, vt)
		if err != nil {
			return "", fmt.Errorf("voucher %d (%s): %w", i+1, inv.VoucherNo, err)
		}
		messages = append(messages, tallyMessage(VoucherNode(v)))
	}
	return xmltree.Marshal(importData("Vouchers", invoices[0].Company, messages...)), nil
}

// Voucher renders an already built voucher as a complete import request.
func Voucher(v tally.Voucher) string {
	return xmltree.Marshal(importData("Vouchers", v.Company, tallyMessage(VoucherNode(v))))
}

// VoucherNode renders the VOUCHER element: header fields, inventory entries,
// then the ledger entries in voucher order.
func VoucherNode(v tally.Voucher) *xmltree.Node {
	isInvoice := len(v.Inventory) > 0

	vch := xmltree.El("VOUCHER").
		WithAttr("VCHTYPE", string(v.Type)).
		WithAttr("ACTION", "Create")
	if isInvoice {
		vch.WithAttr("OBJVIEW", invoiceView)
	}

	vch.Append(
		xmltree.Leaf("DATE", v.Date),
		xmltree.Leaf("VOUCHERTYPENAME", string(v.Type)),
		optional("VOUCHERNUMBER", v.VoucherNo),
		optional("REFERENCE", v.Reference),
		xmltree.Leaf("PARTYLEDGERNAME", v.PartyName),
	)
	if isInvoice {
		vch.Append(
			xmltree.Leaf("PERSISTEDVIEW", invoiceView),
			xmltree.Leaf("ISINVOICE", "Yes"),
		)
	}
	vch.Append(optional("NARRATION", v.Narration))

	for _, e := range v.Inventory {
		vch.Append(inventoryEntry(e))
	}

	list := "ALLLEDGERENTRIES.LIST"
	if isInvoice {
		list = "LEDGERENTRIES.LIST"
	}
	for _, e := range v.Entries {
		vch.Append(ledgerEntry(list, e))
	}
	return vch
}

func inventoryEntry(e tally.InventoryEntry) *xmltree.Node {
	amount := tally.FormatAmount(e.Amount)
	qty := withUnit(e.Quantity.String(), e.Unit, " ")

	var desc *xmltree.Node
	if strings.TrimSpace(e.Description) != "" {
		desc = xmltree.El("BASICUSERDESCRIPTION.LIST",
			xmltree.Leaf("BASICUSERDESCRIPTION", e.Description),
		).WithAttr("TYPE", "String")
	}

	return xmltree.El("ALLINVENTORYENTRIES.LIST",
		xmltree.Leaf("STOCKITEMNAME", e.StockItemName),
		desc,
		xmltree.Leaf("ISDEEMEDPOSITIVE", e.DeemedPositive()),
		xmltree.Leaf("RATE", withUnit(tally.FormatAmount(e.Rate), e.Unit, "/")),
		xmltree.Leaf("DISCOUNT", e.Discount.String()),
		xmltree.Leaf("AMOUNT", amount),
		xmltree.Leaf("ACTUALQTY", qty),
		xmltree.Leaf("BILLEDQTY", qty),
		xmltree.El("ACCOUNTINGALLOCATIONS.LIST",
			xmltree.Leaf("LEDGERNAME", e.Ledger),
			xmltree.Leaf("ISDEEMEDPOSITIVE", e.DeemedPositive()),
			xmltree.Leaf("AMOUNT", amount),
		),
	)
}

func ledgerEntry(list string, e tally.LedgerEntry) *xmltree.Node {
	amount := tally.FormatAmount(e.Amount)
	n := xmltree.El(list,
		xmltree.Leaf("LEDGERNAME", e.LedgerName),
		xmltree.Leaf("ISDEEMEDPOSITIVE", e.DeemedPositive),
	)
	if e.IsParty {
		n.Append(xmltree.Leaf("ISPARTYLEDGER", "Yes"))
	}
	n.Append(xmltree.Leaf("AMOUNT", amount))
	if e.BillRef != "" {
		n.Append(xmltree.El("BILLALLOCATIONS.LIST",
			xmltree.Leaf("NAME", e.BillRef),
			xmltree.Leaf("BILLTYPE", "New Ref"),
			xmltree.Leaf("AMOUNT", amount),
		))
	}
	return n
}

func withUnit(value, unit, sep string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return value
	}
	return value + sep + unit
}
