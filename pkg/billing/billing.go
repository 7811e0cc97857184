// Package billing provides the public API for embedding the invoice engine.
//
// The engine computes amounts, allocates gap-free invoice numbers, drives the
// invoice state machine and issues documents through a configurable billing
// backend (local tax-authority XML export, Számlázz.hu or Billingo).
//
// Example usage:
//
//	engine, err := billing.NewEngine(settings, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	inv, _ := engine.CreateDraft(ctx, billing.DraftInput{...})
//	inv, res, err := engine.Issue(ctx, inv.ID)
package billing

import (
	"github.com/Kopoklesz/EmployeeManager/internal/backend"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
	"github.com/Kopoklesz/EmployeeManager/internal/money"
	"github.com/Kopoklesz/EmployeeManager/internal/service"
)

// Re-export core types for public API
type (
	Invoice         = model.Invoice
	InvoiceItem     = model.InvoiceItem
	Customer        = model.Customer
	CompanySettings = model.CompanySettings
	InvoiceStatus   = model.InvoiceStatus
	PaymentMethod   = model.PaymentMethod
	Amounts         = money.Amounts
	Totals          = money.Totals
	VatTreatment    = money.VatTreatment
	DraftInput      = service.DraftInput
	Result          = backend.Result
	BackendKind     = backend.Kind
)

// Re-export invoice statuses
const (
	StatusDraft     = model.StatusDraft
	StatusIssued    = model.StatusIssued
	StatusSent      = model.StatusSent
	StatusPaid      = model.StatusPaid
	StatusCancelled = model.StatusCancelled
	StatusOverdue   = model.StatusOverdue
)

// Re-export payment methods
const (
	PaymentMethodTransfer = model.PaymentMethodTransfer
	PaymentMethodCash     = model.PaymentMethodCash
	PaymentMethodCard     = model.PaymentMethodCard
	PaymentMethodOther    = model.PaymentMethodOther
)

// Re-export backend kinds
const (
	BackendLocalXML = backend.KindLocalXML
	BackendSzamlazz = backend.KindSzamlazz
	BackendBillingo = backend.KindBillingo
)

// Re-export the VAT treatment constructors
var (
	Rated        = money.Rated
	RatedPercent = money.RatedPercent
	Exempt       = money.Exempt
)
