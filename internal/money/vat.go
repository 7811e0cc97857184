package money

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// VatTreatment is a tagged union: a line is either rated (VAT percentage
// applied) or exempt (code + reason, rate never applied). The zero value is
// rated at 0%.
type VatTreatment struct {
	rate         decimal.Decimal
	exemptCode   string
	exemptReason string
	exempt       bool
}

// Rated returns a treatment applying the given VAT percentage.
func Rated(rate decimal.Decimal) VatTreatment {
	return VatTreatment{rate: rate}
}

// RatedPercent is a convenience constructor for whole-number rates.
func RatedPercent(percent int64) VatTreatment {
	return VatTreatment{rate: decimal.NewFromInt(percent)}
}

// Exempt returns a treatment carrying an exemption code and reason.
// The rate is never applied, whatever a form or import file had in it.
func Exempt(code, reason string) VatTreatment {
	return VatTreatment{exemptCode: code, exemptReason: reason, exempt: true}
}

// IsExempt reports whether the line is VAT-exempt.
func (v VatTreatment) IsExempt() bool {
	return v.exempt
}

// Rate returns the VAT percentage; zero for exempt lines.
func (v VatTreatment) Rate() decimal.Decimal {
	if v.exempt {
		return Zero
	}
	return v.rate
}

// ExemptionCode returns the exemption code ("AAM", "TAM", ...), empty when rated.
func (v VatTreatment) ExemptionCode() string {
	return v.exemptCode
}

// ExemptionReason returns the free-text exemption reason, empty when rated.
func (v VatTreatment) ExemptionReason() string {
	return v.exemptReason
}

// String renders the treatment the way invoice documents print it: the
// percentage for rated lines, the exemption code for exempt ones.
func (v VatTreatment) String() string {
	if v.exempt {
		return v.exemptCode
	}
	return v.rate.StringFixed(0) + "%"
}

type vatTreatmentJSON struct {
	Rate            *decimal.Decimal `json:"rate,omitempty"`
	ExemptionCode   string           `json:"exemption_code,omitempty"`
	ExemptionReason string           `json:"exemption_reason,omitempty"`
}

// MarshalJSON encodes either the rate or the exemption, never both.
func (v VatTreatment) MarshalJSON() ([]byte, error) {
	if v.exempt {
		return json.Marshal(vatTreatmentJSON{
			ExemptionCode:   v.exemptCode,
			ExemptionReason: v.exemptReason,
		})
	}
	rate := v.rate
	return json.Marshal(vatTreatmentJSON{Rate: &rate})
}

// UnmarshalJSON decodes the union; a present exemption code wins over a rate.
func (v *VatTreatment) UnmarshalJSON(data []byte) error {
	var raw vatTreatmentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ExemptionCode != "" || raw.ExemptionReason != "" {
		*v = Exempt(raw.ExemptionCode, raw.ExemptionReason)
		return nil
	}
	if raw.Rate != nil {
		*v = Rated(*raw.Rate)
		return nil
	}
	*v = VatTreatment{}
	return nil
}
