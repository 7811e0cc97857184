// Package money implements the monetary calculation rules for invoice lines
// and document totals. All amounts are rounded half-up to 2 fractional digits
// at each step, line by line; document totals are sums of already-rounded line
// amounts. The rounding points are load-bearing for compliance output and must
// not be consolidated into a single end-to-end rounding.
package money

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// Round rounds half-up to 2 fractional digits
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromString parses a decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses a decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Amounts holds the computed amounts of a single invoice line.
type Amounts struct {
	Net      decimal.Decimal `json:"net"`
	VAT      decimal.Decimal `json:"vat"`
	Gross    decimal.Decimal `json:"gross"`
	Discount decimal.Decimal `json:"discount"`
}

// Totals holds document-level sums of line amounts.
type Totals struct {
	Net   decimal.Decimal `json:"net"`
	VAT   decimal.Decimal `json:"vat"`
	Gross decimal.Decimal `json:"gross"`
}

// Line computes the amounts of one invoice line:
//
//	base     = round(quantity * unitPrice, 2)
//	discount = round(base * discountPercent / 100, 2)   (skipped when 0)
//	net      = base - discount
//	vat      = 0 if exempt, else round(net * rate / 100, 2)
//	gross    = net + vat
//
// Negative quantity or unit price yields all-zero amounts; the UI blocks
// submission earlier, so this is a guard, not an error path.
func Line(quantity, unitPrice, discountPercent decimal.Decimal, vat VatTreatment) Amounts {
	if quantity.IsNegative() || unitPrice.IsNegative() {
		return Amounts{Net: Zero, VAT: Zero, Gross: Zero, Discount: Zero}
	}

	base := Round(quantity.Mul(unitPrice))

	discount := Zero
	net := base
	if discountPercent.IsPositive() {
		discount = Round(base.Mul(discountPercent).Div(hundred))
		net = base.Sub(discount)
	}

	vatAmount := Zero
	if !vat.IsExempt() {
		vatAmount = Round(net.Mul(vat.Rate()).Div(hundred))
	}

	return Amounts{
		Net:      net,
		VAT:      vatAmount,
		Gross:    net.Add(vatAmount),
		Discount: discount,
	}
}

// Sum aggregates already-rounded line amounts into document totals.
func Sum(lines []Amounts) Totals {
	t := Totals{Net: Zero, VAT: Zero, Gross: Zero}
	for _, a := range lines {
		t.Net = t.Net.Add(a.Net)
		t.VAT = t.VAT.Add(a.VAT)
		t.Gross = t.Gross.Add(a.Gross)
	}
	return t
}
