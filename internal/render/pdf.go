// Package render produces the printable invoice document. The engine treats
// the renderer as opaque: it consumes an invoice plus company settings and
// yields bytes.
package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
)

// Renderer turns an invoice into a printable document.
type Renderer interface {
	Render(inv *model.Invoice, settings *model.CompanySettings) ([]byte, error)
}

// PDF renders a simple A4 invoice with gofpdf.
type PDF struct{}

// NewPDF creates the PDF renderer.
func NewPDF() *PDF {
	return &PDF{}
}

// Render produces the PDF bytes. Amounts are printed verbatim from the
// computed fields.
func (p *PDF) Render(inv *model.Invoice, settings *model.CompanySettings) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Hungarian descriptions carry accented characters
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1250")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 8, tr(settings.CompanyName))
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 5, tr(fmt.Sprintf("%s %s, %s", settings.PostalCode, settings.City, settings.Address)))
	pdf.Ln(4)
	pdf.Cell(0, 5, tr("Adószám: "+settings.TaxNumber))
	pdf.Ln(4)
	if settings.BankAccount != "" {
		pdf.Cell(0, 5, tr("Bankszámlaszám: "+settings.BankAccount))
		pdf.Ln(4)
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 10, tr("SZÁMLA"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(95, 6, tr("Számlaszám: "+inv.Number))
	pdf.Cell(95, 6, tr("Kelt: "+inv.IssueDate.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(95, 6, tr("Teljesítés: "+inv.DeliveryDate.Format("2006-01-02")))
	pdf.Cell(95, 6, tr("Fizetési határidő: "+inv.PaymentDeadline.Format("2006-01-02")))
	pdf.Ln(10)

	if inv.Customer != nil {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, tr("Vevő"))
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 5, tr(inv.Customer.Name))
		pdf.Ln(4)
		pdf.Cell(0, 5, tr(fmt.Sprintf("%s %s, %s", inv.Customer.PostalCode, inv.Customer.City, inv.Customer.Address)))
		pdf.Ln(4)
		if inv.Customer.TaxNumber != "" {
			pdf.Cell(0, 5, tr("Adószám: "+inv.Customer.TaxNumber))
			pdf.Ln(4)
		}
		pdf.Ln(6)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(70, 7, tr("Megnevezés"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, tr("Mennyiség"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, tr("Egységár"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(15, 7, tr("ÁFA"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, tr("Nettó"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, tr("Bruttó"), "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i := range inv.Items {
		it := &inv.Items[i]
		pdf.CellFormat(70, 6, tr(it.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, tr(it.Quantity.String()+" "+it.Unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, it.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(15, 6, tr(it.Vat.String()), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, it.Amounts.Net.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, it.Amounts.Gross.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Nettó összesen: %s %s", inv.Totals.Net.StringFixed(2), inv.Currency)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("ÁFA összesen: %s %s", inv.Totals.VAT.StringFixed(2), inv.Currency)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Fizetendő: %s %s", inv.Totals.Gross.StringFixed(2), inv.Currency)))
	pdf.Ln(8)

	if inv.Footer != "" {
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(0, 5, tr(inv.Footer))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, ierr.WithError(err).
			WithHint("PDF rendering failed").
			Mark(ierr.ErrRender)
	}
	return buf.Bytes(), nil
}
