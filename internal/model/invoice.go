// Package model holds the canonical billing documents: Invoice, InvoiceItem,
// Customer and CompanySettings, together with the invoice status state machine
// and the issuance preconditions. All monetary fields are derived through
// internal/money and never hand-set.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/money"
)

// InvoiceItem is one billed line, owned exclusively by its invoice.
// LineNumber is 1-based and dense; Recalculate reassigns it.
type InvoiceItem struct {
	ID              string             `json:"id"`
	LineNumber      int                `json:"line_number"`
	Description     string             `json:"description"`
	Unit            string             `json:"unit"`
	Quantity        decimal.Decimal    `json:"quantity"`
	UnitPrice       decimal.Decimal    `json:"unit_price"`
	Vat             money.VatTreatment `json:"vat"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	Amounts         money.Amounts      `json:"amounts"`
}

// Calculate recomputes the line amounts from the current inputs.
func (it *InvoiceItem) Calculate() {
	it.Amounts = money.Line(it.Quantity, it.UnitPrice, it.DiscountPercent, it.Vat)
}

// Invoice is one billing document.
type Invoice struct {
	ID     string `json:"id"`
	Number string `json:"number,omitempty"` // assigned exactly once, immutable after

	Customer *Customer `json:"customer,omitempty"`

	IssueDate       time.Time  `json:"issue_date"`
	DeliveryDate    time.Time  `json:"delivery_date"`
	PaymentDeadline time.Time  `json:"payment_deadline"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`

	PaymentMethod PaymentMethod   `json:"payment_method"`
	Currency      string          `json:"currency"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"` // mandatory, 1 for HUF invoices

	Totals money.Totals  `json:"totals"`
	Status InvoiceStatus `json:"status"`
	Paid   bool          `json:"paid"`

	ExternalSent bool       `json:"external_sent"`
	ExternalID   string     `json:"external_id,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`

	ReverseCharge  bool `json:"reverse_charge"`
	CashAccounting bool `json:"cash_accounting"`

	Notes  string `json:"notes,omitempty"`
	Footer string `json:"footer,omitempty"`

	Items []InvoiceItem `json:"items"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewInvoice creates a draft with no number and the compliance default
// exchange rate of 1.
func NewInvoice(now time.Time) *Invoice {
	return &Invoice{
		ID:           GenerateID(IDPrefixInvoice),
		Status:       StatusDraft,
		Currency:     "HUF",
		ExchangeRate: decimal.NewFromInt(1),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AddItem appends a line, assigns its identifiers and recalculates.
func (inv *Invoice) AddItem(item InvoiceItem) {
	if item.ID == "" {
		item.ID = GenerateID(IDPrefixInvoiceItem)
	}
	inv.Items = append(inv.Items, item)
	inv.Recalculate()
}

// Recalculate renumbers lines densely, recomputes every line amount and the
// document totals. Must run after any item mutation, before persistence.
func (inv *Invoice) Recalculate() {
	amounts := make([]money.Amounts, len(inv.Items))
	for i := range inv.Items {
		inv.Items[i].LineNumber = i + 1
		inv.Items[i].Calculate()
		amounts[i] = inv.Items[i].Amounts
	}
	inv.Totals = money.Sum(amounts)
}

// Editable reports whether economic fields may still change.
func (inv *Invoice) Editable() bool {
	return inv.Status == StatusDraft
}

// CanDelete reports whether the invoice may be deleted instead of cancelled.
func (inv *Invoice) CanDelete() bool {
	return inv.Status == StatusDraft
}

// IsOverdue reports the derived display state: unpaid and past deadline.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Paid || inv.Status == StatusPaid || inv.Status == StatusCancelled || inv.Status == StatusDraft {
		return false
	}
	return !inv.PaymentDeadline.IsZero() && inv.PaymentDeadline.Before(now)
}

// DisplayStatus returns the status shown to users, substituting OVERDUE where
// it applies. Never persisted.
func (inv *Invoice) DisplayStatus(now time.Time) InvoiceStatus {
	if inv.IsOverdue(now) {
		return StatusOverdue
	}
	return inv.Status
}

// ValidateIssue checks every issuance precondition except the invoice number,
// which is allocated only after this passes so that a failed validation never
// burns a number.
func (inv *Invoice) ValidateIssue() error {
	var missing []string

	if inv.Customer == nil || inv.Customer.Name == "" {
		missing = append(missing, "customer")
	}
	if inv.IssueDate.IsZero() {
		missing = append(missing, "issue_date")
	}
	if inv.DeliveryDate.IsZero() {
		missing = append(missing, "delivery_date")
	}
	if inv.PaymentDeadline.IsZero() {
		missing = append(missing, "payment_deadline")
	}
	if inv.PaymentMethod == "" {
		missing = append(missing, "payment_method")
	}
	if inv.Currency == "" {
		missing = append(missing, "currency")
	}
	if !inv.ExchangeRate.IsPositive() {
		missing = append(missing, "exchange_rate")
	}
	if len(inv.Items) == 0 {
		missing = append(missing, "items")
	}

	if len(missing) > 0 {
		return ierr.NewError("invoice is not ready to be issued").
			WithHint("Fill in the missing invoice fields before issuing").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"missing":    missing,
			}).
			Mark(ierr.ErrValidation)
	}

	if inv.PaymentMethod != "" {
		if err := inv.PaymentMethod.Validate(); err != nil {
			return err
		}
	}

	if !inv.Totals.Net.IsPositive() {
		return ierr.NewError("invoice net amount must be positive").
			WithHint("An invoice must bill a positive net amount").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"net":        inv.Totals.Net,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// TransitionTo applies a status transition with its side effects, or fails
// without mutation. Issuing additionally requires the number to be assigned.
func (inv *Invoice) TransitionTo(to InvoiceStatus, now time.Time) error {
	if err := to.Validate(); err != nil {
		return err
	}

	if !inv.Status.CanTransitionTo(to) {
		return ierr.NewErrorf("cannot transition invoice from %s to %s", inv.Status, to).
			WithHint("The requested status change is not allowed").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"from":       inv.Status,
				"to":         to,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	if to == StatusIssued && inv.Number == "" {
		return ierr.NewError("cannot issue an invoice without a number").
			WithHint("Allocate an invoice number before issuing").
			WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
			Mark(ierr.ErrInvalidTransition)
	}

	inv.Status = to
	inv.UpdatedAt = now

	switch to {
	case StatusSent:
		inv.ExternalSent = true
		if inv.SentAt == nil {
			t := now
			inv.SentAt = &t
		}
	case StatusPaid:
		inv.Paid = true
		if inv.PaymentDate == nil {
			t := now
			inv.PaymentDate = &t
		}
	case StatusCancelled:
		t := now
		inv.CancelledAt = &t
	}

	return nil
}
