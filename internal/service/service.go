// Package service is the orchestrator callers talk to. It composes the
// calculator, the state machine, the number sequencer, the store and the
// billing backends; the UI, the CLI and the HTTP server only ever see this
// package.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Kopoklesz/EmployeeManager/internal/backend"
	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/export/navxml"
	"github.com/Kopoklesz/EmployeeManager/internal/logger"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
	"github.com/Kopoklesz/EmployeeManager/internal/render"
	"github.com/Kopoklesz/EmployeeManager/internal/sequence"
	"github.com/Kopoklesz/EmployeeManager/internal/store"
)

// Params carries the orchestrator's dependencies.
type Params struct {
	Store    store.Store
	Settings *model.CompanySettings
	Selector *backend.Selector
	Exporter *navxml.Exporter
	Renderer render.Renderer
	Logger   *logger.Logger
}

// InvoiceService drives the invoice lifecycle.
type InvoiceService struct {
	store    store.Store
	settings *model.CompanySettings
	selector *backend.Selector
	seq      *sequence.Sequencer
	exporter *navxml.Exporter
	renderer render.Renderer
	log      *logger.Logger
	now      func() time.Time
}

// New wires the orchestrator. The sequencer is built here so that every
// allocation in the process goes through the same retry policy.
func New(p Params) *InvoiceService {
	if p.Logger == nil {
		p.Logger = logger.NewNop()
	}
	if p.Exporter == nil {
		p.Exporter = navxml.NewExporter()
	}
	return &InvoiceService{
		store:    p.Store,
		settings: p.Settings,
		selector: p.Selector,
		seq:      sequence.New(p.Store, p.Logger),
		exporter: p.Exporter,
		renderer: p.Renderer,
		log:      p.Logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (s *InvoiceService) WithClock(now func() time.Time) *InvoiceService {
	s.now = now
	return s
}

// DraftInput is the editable surface of an invoice. UpdateDraft replaces all
// of these fields; partial patching is the caller's concern.
type DraftInput struct {
	Customer        *model.Customer     `json:"customer"`
	IssueDate       time.Time           `json:"issue_date"`
	DeliveryDate    time.Time           `json:"delivery_date"`
	PaymentDeadline time.Time           `json:"payment_deadline"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	Currency        string              `json:"currency"`
	ExchangeRate    decimal.Decimal     `json:"exchange_rate"`
	ReverseCharge   bool                `json:"reverse_charge"`
	CashAccounting  bool                `json:"cash_accounting"`
	Notes           string              `json:"notes"`
	Footer          string              `json:"footer"`
	Items           []model.InvoiceItem `json:"items"`
}

func (in *DraftInput) apply(inv *model.Invoice, settings *model.CompanySettings) {
	inv.Customer = in.Customer
	inv.IssueDate = in.IssueDate
	inv.DeliveryDate = in.DeliveryDate
	inv.PaymentDeadline = in.PaymentDeadline
	inv.PaymentMethod = in.PaymentMethod
	if in.Currency != "" {
		inv.Currency = in.Currency
	}
	if in.ExchangeRate.IsPositive() {
		inv.ExchangeRate = in.ExchangeRate
	}
	inv.ReverseCharge = in.ReverseCharge
	inv.CashAccounting = in.CashAccounting
	inv.Notes = in.Notes
	inv.Footer = in.Footer

	inv.Items = nil
	for _, item := range in.Items {
		if item.ID == "" {
			item.ID = model.GenerateID(model.IDPrefixInvoiceItem)
		}
		inv.Items = append(inv.Items, item)
	}
	inv.Recalculate()

	if inv.PaymentDeadline.IsZero() && !inv.IssueDate.IsZero() && settings.DefaultDeadlineDays > 0 {
		inv.PaymentDeadline = inv.IssueDate.AddDate(0, 0, settings.DefaultDeadlineDays)
	}
}

// CreateDraft creates a new invoice in DRAFT. No number is assigned here.
func (s *InvoiceService) CreateDraft(ctx context.Context, in DraftInput) (*model.Invoice, error) {
	now := s.now()
	inv := model.NewInvoice(now)
	in.apply(inv, s.settings)

	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return nil, err
	}

	s.log.Infow("created draft invoice", "invoice_id", inv.ID)
	return inv, nil
}

// UpdateDraft replaces the editable fields of a draft and recomputes every
// amount. Rejected once the invoice has left DRAFT.
func (s *InvoiceService) UpdateDraft(ctx context.Context, id string, in DraftInput) (*model.Invoice, error) {
	inv, err := s.store.LoadInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inv.Editable() {
		return nil, ierr.NewErrorf("invoice %s is no longer editable", inv.ID).
			WithHint("Only draft invoices can be modified").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"status":     inv.Status,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	in.apply(inv, s.settings)
	inv.UpdatedAt = s.now()

	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Issue runs the issuance sequence: validate, allocate the number, persist
// the invoice as ISSUED, then hand it to the configured backend. The number
// is durable before any network I/O; a backend failure leaves the invoice
// ISSUED with its number kept, and the transmission can be retried with
// Resend. The returned Result is nil when issuance failed before reaching
// the backend.
func (s *InvoiceService) Issue(ctx context.Context, id string) (*model.Invoice, *backend.Result, error) {
	inv, err := s.store.LoadInvoice(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if inv.Status != model.StatusDraft {
		return nil, nil, ierr.NewErrorf("invoice %s is already issued", inv.ID).
			WithHint("Use Resend to retry transmission of an issued invoice").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"status":     inv.Status,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	inv.Recalculate()
	if err := inv.ValidateIssue(); err != nil {
		return nil, nil, err
	}

	number, err := s.seq.Allocate(ctx, s.settings.SequenceKey)
	if err != nil {
		return nil, nil, err
	}
	inv.Number = number

	if err := inv.TransitionTo(model.StatusIssued, s.now()); err != nil {
		return nil, nil, err
	}
	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return nil, nil, err
	}

	res, err := s.transmit(ctx, inv)
	return inv, res, err
}

// Resend retries transmission of an invoice that is ISSUED but not yet sent.
func (s *InvoiceService) Resend(ctx context.Context, id string) (*model.Invoice, *backend.Result, error) {
	inv, err := s.store.LoadInvoice(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if inv.Status != model.StatusIssued || inv.Number == "" {
		return nil, nil, ierr.NewErrorf("invoice %s is not awaiting transmission", inv.ID).
			WithHint("Only issued, unsent invoices can be resent").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"status":     inv.Status,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	res, err := s.transmit(ctx, inv)
	return inv, res, err
}

// transmit hands the issued invoice to the configured backend, exactly one
// Issue call. An online success moves the invoice to SENT; the local exporter
// produces its document without changing the lifecycle state.
func (s *InvoiceService) transmit(ctx context.Context, inv *model.Invoice) (*backend.Result, error) {
	b := s.selector.Select(s.settings.Backend)

	res, err := b.Issue(ctx, inv)
	if err != nil {
		s.log.Errorw("billing backend failed, invoice stays issued",
			"invoice_id", inv.ID, "number", inv.Number, "backend", b.Kind(), "error", err)
		return nil, ierr.WithError(err).
			WithMessage("billing backend call failed").
			WithHint("The invoice keeps its number; retry the transmission").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"number":     inv.Number,
				"backend":    b.Kind(),
			}).
			Mark(ierr.ErrBackend)
	}

	if !res.Success {
		s.log.Warnw("billing backend rejected the invoice",
			"invoice_id", inv.ID, "number", inv.Number, "backend", b.Kind(), "message", res.Message)
		return res, ierr.NewError("billing backend rejected the invoice").
			WithHint("Fix the reported problem, then retry the transmission").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"number":     inv.Number,
				"backend":    b.Kind(),
				"vendor":     res.Message,
			}).
			Mark(ierr.ErrBackend)
	}

	if b.Kind() != backend.KindLocalXML {
		inv.ExternalID = res.ExternalID
		if err := inv.TransitionTo(model.StatusSent, s.now()); err != nil {
			return res, err
		}
		if err := s.store.SaveInvoice(ctx, inv); err != nil {
			return res, err
		}
	}

	s.log.Infow("invoice issued",
		"invoice_id", inv.ID, "number", inv.Number, "backend", b.Kind())
	return res, nil
}

// MarkPaid records the payment and moves the invoice to PAID.
func (s *InvoiceService) MarkPaid(ctx context.Context, id string, paidAt *time.Time) (*model.Invoice, error) {
	inv, err := s.store.LoadInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if paidAt != nil {
		inv.PaymentDate = paidAt
	}
	if err := inv.TransitionTo(model.StatusPaid, s.now()); err != nil {
		return nil, err
	}

	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Cancel voids the invoice. When the document already reached an online
// vendor, the vendor-side cancellation runs first; its failure aborts the
// local transition so the two systems cannot drift apart.
func (s *InvoiceService) Cancel(ctx context.Context, id string, reason string) (*model.Invoice, error) {
	inv, err := s.store.LoadInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inv.Status.CanTransitionTo(model.StatusCancelled) {
		return nil, ierr.NewErrorf("cannot cancel invoice in status %s", inv.Status).
			WithHint("The invoice is in a terminal state").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"status":     inv.Status,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	if inv.Status == model.StatusSent && inv.ExternalID != "" {
		b := s.selector.Select(s.settings.Backend)
		ok, err := b.Cancel(ctx, inv, reason)
		if err != nil {
			return nil, ierr.WithError(err).
				WithMessage("vendor cancellation failed").
				WithHint("The invoice was not cancelled; retry once the vendor is reachable").
				WithReportableDetails(map[string]any{
					"invoice_id": inv.ID,
					"number":     inv.Number,
					"backend":    b.Kind(),
				}).
				Mark(ierr.ErrBackend)
		}
		if !ok {
			return nil, ierr.NewError("vendor refused to cancel the invoice").
				WithHint("Check the document state at the vendor").
				WithReportableDetails(map[string]any{
					"invoice_id": inv.ID,
					"number":     inv.Number,
					"backend":    b.Kind(),
				}).
				Mark(ierr.ErrBackend)
		}
	}

	if err := inv.TransitionTo(model.StatusCancelled, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return nil, err
	}

	s.log.Infow("cancelled invoice", "invoice_id", inv.ID, "number", inv.Number, "reason", reason)
	return inv, nil
}

// Delete removes a draft. Anything past DRAFT must be cancelled instead.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	inv, err := s.store.LoadInvoice(ctx, id)
	if err != nil {
		return err
	}

	if !inv.CanDelete() {
		return ierr.NewErrorf("invoice %s cannot be deleted", inv.ID).
			WithHint("Issued invoices are cancelled, never deleted").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"status":     inv.Status,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	return s.store.DeleteInvoice(ctx, id)
}

// ExportXML renders the tax-authority data-export document for an invoice
// that already has a number.
func (s *InvoiceService) ExportXML(ctx context.Context, id string) ([]byte, error) {
	inv, err := s.store.LoadInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(inv, s.settings)
}

// RenderPDF produces the printable document.
func (s *InvoiceService) RenderPDF(ctx context.Context, id string) ([]byte, error) {
	inv, err := s.store.LoadInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.renderer == nil {
		return nil, ierr.NewError("no document renderer configured").
			Mark(ierr.ErrRender)
	}
	return s.renderer.Render(inv, s.settings)
}

// Get loads one invoice.
func (s *InvoiceService) Get(ctx context.Context, id string) (*model.Invoice, error) {
	return s.store.LoadInvoice(ctx, id)
}

// List returns every invoice.
func (s *InvoiceService) List(ctx context.Context) ([]*model.Invoice, error) {
	return s.store.ListInvoices(ctx)
}
