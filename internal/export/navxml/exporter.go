// Package navxml renders a canonical invoice into the Hungarian tax authority
// (NAV) data-export XML. The artifact is generated locally and uploaded by
// hand on the government portal; there is no network I/O here. Rendering is
// deterministic: the same invoice renders to byte-identical output.
package navxml

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
)

const (
	// Namespace is the government schema namespace in force.
	Namespace = "http://schemas.nav.gov.hu/OSA/3.0/data"

	dateLayout = "2006-01-02"

	reverseChargeNote  = "A számla fordított adózás alá esik."
	cashAccountingNote = "Pénzforgalmi elszámolás."
)

// Exporter renders invoices into NAV data-export XML documents.
type Exporter struct{}

// NewExporter creates an Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

func renderErr(field string) error {
	return ierr.NewErrorf("invoice is missing mandatory field %s", field).
		WithHint("The invoice reached the exporter in an invalid state").
		WithReportableDetails(map[string]any{"field": field}).
		Mark(ierr.ErrRender)
}

// validate checks the mandatory fields of the export schema. A failure here
// means an upstream invariant was violated; it is reported, never retried.
func validate(inv *model.Invoice, settings *model.CompanySettings) error {
	switch {
	case settings == nil || settings.CompanyName == "":
		return renderErr("supplier name")
	case settings.TaxNumber == "":
		return renderErr("supplier tax number")
	case inv.Number == "":
		return renderErr("invoice number")
	case inv.Customer == nil || inv.Customer.Name == "":
		return renderErr("customer")
	case inv.IssueDate.IsZero():
		return renderErr("issue date")
	case inv.DeliveryDate.IsZero():
		return renderErr("delivery date")
	case inv.PaymentDeadline.IsZero():
		return renderErr("payment deadline")
	case inv.Currency == "":
		return renderErr("currency")
	case !inv.ExchangeRate.IsPositive():
		return renderErr("exchange rate")
	case len(inv.Items) == 0:
		return renderErr("items")
	}
	return nil
}

func addText(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(value)
	return el
}

func addAmount(parent *etree.Element, tag string, d decimal.Decimal) {
	addText(parent, tag, d.StringFixed(2))
}

func addDate(parent *etree.Element, tag string, t time.Time) {
	addText(parent, tag, t.Format(dateLayout))
}

func addAddress(parent *etree.Element, tag, postalCode, city, street, country string) {
	addr := parent.CreateElement(tag)
	if country == "" {
		country = "HU"
	}
	addText(addr, "countryCode", country)
	addText(addr, "postalCode", postalCode)
	addText(addr, "city", city)
	addText(addr, "additionalAddressDetail", street)
}

// Render produces the UTF-8, indented compliance XML for the invoice.
// Amounts are taken verbatim from the computed fields; nothing is recomputed
// here.
func (e *Exporter) Render(inv *model.Invoice, settings *model.CompanySettings) ([]byte, error) {
	if err := validate(inv, settings); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("InvoiceData")
	root.CreateAttr("xmlns", Namespace)
	addText(root, "invoiceNumber", inv.Number)
	addDate(root, "invoiceIssueDate", inv.IssueDate)

	supplier := root.CreateElement("supplierInfo")
	addText(supplier, "supplierName", settings.CompanyName)
	addText(supplier, "supplierTaxNumber", settings.TaxNumber)
	addAddress(supplier, "supplierAddress", settings.PostalCode, settings.City, settings.Address, settings.Country)
	if settings.BankAccount != "" {
		addText(supplier, "supplierBankAccountNumber", settings.BankAccount)
	}

	customer := root.CreateElement("customerInfo")
	addText(customer, "customerName", inv.Customer.Name)
	if inv.Customer.TaxNumber != "" {
		addText(customer, "customerTaxNumber", inv.Customer.TaxNumber)
	}
	addAddress(customer, "customerAddress", inv.Customer.PostalCode, inv.Customer.City, inv.Customer.Address, inv.Customer.Country)

	header := root.CreateElement("invoiceHeader")
	addDate(header, "invoiceDeliveryDate", inv.DeliveryDate)
	addDate(header, "paymentDate", inv.PaymentDeadline)
	addText(header, "paymentMethod", inv.PaymentMethod.String())
	addText(header, "currencyCode", inv.Currency)
	// Mandatory in every export, "1.000000" for HUF invoices. Compliance
	// rule, not a convenience default.
	addText(header, "exchangeRate", inv.ExchangeRate.StringFixed(6))
	if inv.ReverseCharge || inv.CashAccounting || inv.Notes != "" {
		extra := header.CreateElement("additionalInvoiceData")
		if inv.ReverseCharge {
			addText(extra, "invoiceComment", reverseChargeNote)
		}
		if inv.CashAccounting {
			addText(extra, "invoiceComment", cashAccountingNote)
		}
		if inv.Notes != "" {
			addText(extra, "invoiceComment", inv.Notes)
		}
	}

	lines := root.CreateElement("invoiceLines")
	for i := range inv.Items {
		it := &inv.Items[i]
		line := lines.CreateElement("line")
		addText(line, "lineNumber", fmt.Sprintf("%d", it.LineNumber))
		addText(line, "lineDescription", it.Description)
		addText(line, "unitOfMeasure", it.Unit)
		addText(line, "quantity", it.Quantity.String())
		addAmount(line, "unitPrice", it.UnitPrice)
		if it.Vat.IsExempt() {
			exemption := line.CreateElement("lineVatExemption")
			addText(exemption, "case", it.Vat.ExemptionCode())
			addText(exemption, "reason", it.Vat.ExemptionReason())
		} else {
			addText(line, "lineVatRate", it.Vat.Rate().StringFixed(2))
		}
		if it.Amounts.Discount.IsPositive() {
			discount := line.CreateElement("lineDiscountData")
			addText(discount, "discountRate", it.DiscountPercent.StringFixed(2))
			addAmount(discount, "discountValue", it.Amounts.Discount)
		}
		addAmount(line, "lineNetAmount", it.Amounts.Net)
		addAmount(line, "lineVatAmount", it.Amounts.VAT)
		addAmount(line, "lineGrossAmount", it.Amounts.Gross)
	}

	summary := root.CreateElement("invoiceSummary")
	addAmount(summary, "invoiceNetAmount", inv.Totals.Net)
	addAmount(summary, "invoiceVatAmount", inv.Totals.VAT)
	addAmount(summary, "invoiceGrossAmount", inv.Totals.Gross)

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrRender)
	}
	return out, nil
}
