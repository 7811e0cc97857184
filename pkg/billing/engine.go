package billing

import (
	"context"
	"time"

	"github.com/Kopoklesz/EmployeeManager/internal/backend"
	"github.com/Kopoklesz/EmployeeManager/internal/backend/billingo"
	"github.com/Kopoklesz/EmployeeManager/internal/backend/szamlazz"
	"github.com/Kopoklesz/EmployeeManager/internal/httpclient"
	"github.com/Kopoklesz/EmployeeManager/internal/logger"
	"github.com/Kopoklesz/EmployeeManager/internal/render"
	"github.com/Kopoklesz/EmployeeManager/internal/service"
	"github.com/Kopoklesz/EmployeeManager/internal/store"
)

// BackendInfo reports one registered billing backend.
type BackendInfo struct {
	Kind      BackendKind
	Available bool
	Active    bool
}

// Engine is the embeddable invoice engine.
type Engine struct {
	settings *CompanySettings
	invoices *service.InvoiceService
	selector *backend.Selector
}

// NewEngine creates an engine over the given settings. databasePath selects
// the SQLite file; an empty path keeps all invoices in memory, which is only
// meant for tests and throwaway runs. The vendor adapters are always
// registered; whether they are usable depends on the credentials in settings.
func NewEngine(settings *CompanySettings, databasePath string) (*Engine, error) {
	log, err := logger.New()
	if err != nil {
		return nil, err
	}

	var st store.Store
	if databasePath == "" {
		st = store.NewMemory(settings.SequencePrefix)
	} else {
		st, err = store.OpenSQLite(databasePath, settings.SequencePrefix)
		if err != nil {
			return nil, err
		}
	}

	client := httpclient.NewDefaultClient()
	selector := backend.NewSelector(log,
		backend.NewLocal(settings),
		szamlazz.New(szamlazz.Config{AgentKey: settings.SzamlazzAgentKey}, settings, client, log),
		billingo.New(billingo.Config{
			APIKey:  settings.BillingoAPIKey,
			BlockID: settings.BillingoBlockID,
		}, client, log),
	)

	invoices := service.New(service.Params{
		Store:    st,
		Settings: settings,
		Selector: selector,
		Renderer: render.NewPDF(),
		Logger:   log,
	})

	return &Engine{settings: settings, invoices: invoices, selector: selector}, nil
}

// CreateDraft creates a new invoice in DRAFT; no number is assigned.
func (e *Engine) CreateDraft(ctx context.Context, in DraftInput) (*Invoice, error) {
	return e.invoices.CreateDraft(ctx, in)
}

// UpdateDraft replaces the editable fields of a draft and recomputes amounts.
func (e *Engine) UpdateDraft(ctx context.Context, id string, in DraftInput) (*Invoice, error) {
	return e.invoices.UpdateDraft(ctx, id, in)
}

// Issue validates the draft, allocates the next invoice number, persists the
// invoice as ISSUED and hands it to the configured backend. A backend failure
// leaves the invoice ISSUED with its number kept; retry with Resend.
func (e *Engine) Issue(ctx context.Context, id string) (*Invoice, *Result, error) {
	return e.invoices.Issue(ctx, id)
}

// Resend retries transmission of an issued, unsent invoice.
func (e *Engine) Resend(ctx context.Context, id string) (*Invoice, *Result, error) {
	return e.invoices.Resend(ctx, id)
}

// MarkPaid records the payment; a nil paidAt defaults to now.
func (e *Engine) MarkPaid(ctx context.Context, id string, paidAt *time.Time) (*Invoice, error) {
	return e.invoices.MarkPaid(ctx, id, paidAt)
}

// Cancel voids the invoice, vendor-side first when it was already sent.
func (e *Engine) Cancel(ctx context.Context, id string, reason string) (*Invoice, error) {
	return e.invoices.Cancel(ctx, id, reason)
}

// Delete removes a draft; issued invoices are cancelled, never deleted.
func (e *Engine) Delete(ctx context.Context, id string) error {
	return e.invoices.Delete(ctx, id)
}

// ExportXML renders the tax-authority data-export XML.
func (e *Engine) ExportXML(ctx context.Context, id string) ([]byte, error) {
	return e.invoices.ExportXML(ctx, id)
}

// RenderPDF produces the printable document.
func (e *Engine) RenderPDF(ctx context.Context, id string) ([]byte, error) {
	return e.invoices.RenderPDF(ctx, id)
}

// Get loads one invoice.
func (e *Engine) Get(ctx context.Context, id string) (*Invoice, error) {
	return e.invoices.Get(ctx, id)
}

// List returns every invoice.
func (e *Engine) List(ctx context.Context) ([]*Invoice, error) {
	return e.invoices.List(ctx)
}

// Backends reports the registered backends and which one is active.
func (e *Engine) Backends() []BackendInfo {
	active := e.selector.Select(e.settings.Backend).Kind()
	all := e.selector.All()
	out := make([]BackendInfo, 0, len(all))
	for _, b := range all {
		out = append(out, BackendInfo{
			Kind:      b.Kind(),
			Available: b.IsAvailable(),
			Active:    b.Kind() == active,
		})
	}
	return out
}
