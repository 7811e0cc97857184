package model

import (
	"github.com/samber/lo"

	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
)

// InvoiceStatus represents the persisted state of an invoice in its lifecycle.
// OVERDUE is intentionally absent: it is a derived display state, never stored.
type InvoiceStatus string

const (
	// StatusDraft indicates the invoice can still be freely edited or deleted
	StatusDraft InvoiceStatus = "DRAFT"
	// StatusIssued indicates the invoice has a number and is economically immutable
	StatusIssued InvoiceStatus = "ISSUED"
	// StatusSent indicates the invoice was transmitted through a billing backend
	StatusSent InvoiceStatus = "SENT"
	// StatusPaid is terminal
	StatusPaid InvoiceStatus = "PAID"
	// StatusCancelled is terminal
	StatusCancelled InvoiceStatus = "CANCELLED"

	// StatusOverdue is the derived display state for unpaid invoices past deadline
	StatusOverdue InvoiceStatus = "OVERDUE"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		StatusDraft,
		StatusIssued,
		StatusSent,
		StatusPaid,
		StatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"status":  s,
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// transitions holds the legal status transition table. A draft depends on
// nothing external yet, so it may move anywhere; terminal states move nowhere.
var transitions = map[InvoiceStatus][]InvoiceStatus{
	StatusDraft:     {StatusIssued, StatusSent, StatusPaid, StatusCancelled},
	StatusIssued:    {StatusSent, StatusPaid, StatusCancelled},
	StatusSent:      {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether s -> to is a legal transition.
func (s InvoiceStatus) CanTransitionTo(to InvoiceStatus) bool {
	return lo.Contains(transitions[s], to)
}

// IsTerminal reports whether no further transition is possible.
func (s InvoiceStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// PaymentMethod is how the customer settles the invoice.
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodOther    PaymentMethod = "OTHER"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodTransfer,
		PaymentMethodCash,
		PaymentMethodCard,
		PaymentMethodOther,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment method").
			WithHint("Please provide a valid payment method").
			WithReportableDetails(map[string]any{
				"payment_method": m,
				"allowed":        allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
