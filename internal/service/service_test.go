package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kopoklesz/EmployeeManager/internal/backend"
	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/logger"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
	"github.com/Kopoklesz/EmployeeManager/internal/money"
	"github.com/Kopoklesz/EmployeeManager/internal/store"
)

// fakeBackend records calls and plays back canned outcomes.
type fakeBackend struct {
	kind       backend.Kind
	issueCalls int
	issueRes   *backend.Result
	issueErr   error
	cancelOK   bool
	cancelErr  error
}

func (f *fakeBackend) Issue(_ context.Context, _ *model.Invoice) (*backend.Result, error) {
	f.issueCalls++
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return f.issueRes, nil
}

func (f *fakeBackend) Cancel(_ context.Context, _ *model.Invoice, _ string) (bool, error) {
	return f.cancelOK, f.cancelErr
}

func (f *fakeBackend) DownloadDocument(_ context.Context, _ *model.Invoice) ([]byte, error) {
	return nil, nil
}

func (f *fakeBackend) IsAvailable() bool  { return true }
func (f *fakeBackend) Kind() backend.Kind { return f.kind }

func testSettings() *model.CompanySettings {
	return &model.CompanySettings{
		CompanyName:         "Teszt Kft.",
		TaxNumber:           "12345678-2-42",
		PostalCode:          "1111",
		City:                "Budapest",
		Address:             "Fő utca 1.",
		Country:             "HU",
		Backend:             string(backend.KindSzamlazz),
		SequenceKey:         "INV",
		SequencePrefix:      "INV",
		DefaultDeadlineDays: 8,
	}
}

func draftInput() DraftInput {
	return DraftInput{
		Customer: &model.Customer{
			Name:       "Minta Kft.",
			PostalCode: "1052",
			City:       "Budapest",
			Address:    "Váci utca 10.",
			Country:    "HU",
		},
		IssueDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DeliveryDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentDeadline: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		PaymentMethod:   model.PaymentMethodTransfer,
		Currency:        "HUF",
		ExchangeRate:    decimal.NewFromInt(1),
		Items: []model.InvoiceItem{
			{
				Description: "Szolgáltatás",
				Unit:        "db",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromInt(1000),
				Vat:         money.RatedPercent(27),
			},
		},
	}
}

func newTestService(t *testing.T, b backend.Backend) (*InvoiceService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory("INV")
	settings := testSettings()
	settings.Backend = string(b.Kind())
	svc := New(Params{
		Store:    mem,
		Settings: settings,
		Selector: backend.NewSelector(logger.NewNop(), b),
		Logger:   logger.NewNop(),
	})
	return svc, mem
}

func TestCreateDraft(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, mem := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraft, inv.Status)
	assert.Empty(t, inv.Number)
	assert.Equal(t, "2540", inv.Totals.Gross.String())

	loaded, err := mem.LoadInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, loaded.ID)
}

func TestCreateDraft_DefaultDeadline(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz}
	svc, _ := newTestService(t, b)

	in := draftInput()
	in.PaymentDeadline = time.Time{}
	inv, err := svc.CreateDraft(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, in.IssueDate.AddDate(0, 0, 8), inv.PaymentDeadline)
}

func TestIssue_Success(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{
		kind:     backend.KindSzamlazz,
		issueRes: &backend.Result{Success: true, ExternalID: "VENDOR-42"},
	}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)

	issued, res, err := svc.Issue(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "INV-0001", issued.Number)
	assert.Equal(t, model.StatusSent, issued.Status)
	assert.True(t, issued.ExternalSent)
	assert.Equal(t, "VENDOR-42", issued.ExternalID)
	assert.Equal(t, 1, b.issueCalls)

	persisted, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, persisted.Status)
	assert.Equal(t, "INV-0001", persisted.Number)
}

func TestIssue_ValidationFailureBurnsNoNumber(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, mem := newTestService(t, b)

	in := draftInput()
	in.Customer = nil
	inv, err := svc.CreateDraft(ctx, in)
	require.NoError(t, err)

	_, _, err = svc.Issue(ctx, inv.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
	assert.Zero(t, b.issueCalls)

	// counter untouched: the next successful issue still gets number 1
	_, ok := mem.Counter("INV")
	assert.False(t, ok)

	persisted, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, persisted.Status)
	assert.Empty(t, persisted.Number)
}

func TestIssue_TransportFailureKeepsNumber(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{
		kind: backend.KindSzamlazz,
		issueErr: ierr.NewError("connection refused").
			Mark(ierr.ErrHTTPClient),
	}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)

	issued, res, err := svc.Issue(ctx, inv.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsBackend(err))
	assert.Nil(t, res)

	// number was allocated and persisted before the network call
	assert.Equal(t, "INV-0001", issued.Number)
	assert.Equal(t, model.StatusIssued, issued.Status)

	persisted, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusIssued, persisted.Status)
	assert.Equal(t, "INV-0001", persisted.Number)
}

func TestIssue_VendorRejectionCarriesRawText(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{
		kind:     backend.KindSzamlazz,
		issueRes: &backend.Result{Success: false, Message: "Hibás adószám"},
	}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)

	issued, res, err := svc.Issue(ctx, inv.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsBackend(err))
	require.NotNil(t, res)
	assert.Equal(t, "Hibás adószám", res.Message)
	assert.Equal(t, model.StatusIssued, issued.Status)
}

func TestIssue_LocalBackendStaysIssued(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{
		kind:     backend.KindLocalXML,
		issueRes: &backend.Result{Success: true, Document: []byte("<xml/>")},
	}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)

	issued, res, err := svc.Issue(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, model.StatusIssued, issued.Status)
	assert.False(t, issued.ExternalSent)
	assert.NotEmpty(t, res.Document)
}

func TestIssue_AlreadyIssued(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, inv.ID)
	require.NoError(t, err)

	_, _, err = svc.Issue(ctx, inv.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidTransition(err))
	assert.Equal(t, 1, b.issueCalls)
}

func TestResend(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{
		kind:     backend.KindSzamlazz,
		issueErr: ierr.NewError("timeout").Mark(ierr.ErrHTTPClient),
	}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)

	_, _, err = svc.Issue(ctx, inv.ID)
	require.Error(t, err)

	// vendor comes back, resend succeeds without a new number
	b.issueErr = nil
	b.issueRes = &backend.Result{Success: true, ExternalID: "VENDOR-7"}

	sent, res, err := svc.Resend(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "INV-0001", sent.Number)
	assert.Equal(t, model.StatusSent, sent.Status)
	assert.Equal(t, 2, b.issueCalls)
}

func TestResend_DraftRejected(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)

	_, _, err = svc.Resend(ctx, inv.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidTransition(err))
}

func TestUpdateDraft(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)

	in := draftInput()
	in.Items[0].Quantity = decimal.NewFromInt(3)
	updated, err := svc.UpdateDraft(ctx, inv.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "3810", updated.Totals.Gross.String())
	assert.Equal(t, 1, updated.Items[0].LineNumber)
}

func TestUpdateDraft_IssuedRejected(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, inv.ID)
	require.NoError(t, err)

	_, err = svc.UpdateDraft(ctx, inv.ID, draftInput())
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidTransition(err))
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, inv.ID)
	require.NoError(t, err)

	paidAt := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	paid, err := svc.MarkPaid(ctx, inv.ID, &paidAt)
	require.NoError(t, err)

	assert.Equal(t, model.StatusPaid, paid.Status)
	assert.True(t, paid.Paid)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, paidAt, *paid.PaymentDate)
}

func TestCancel_SentInvoiceCancelsAtVendor(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{
		kind:     backend.KindSzamlazz,
		issueRes: &backend.Result{Success: true, ExternalID: "VENDOR-9"},
		cancelOK: true,
	}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, inv.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, inv.ID, "téves kiállítás")
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestCancel_VendorFailureAbortsLocalCancel(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{
		kind:      backend.KindSzamlazz,
		issueRes:  &backend.Result{Success: true, ExternalID: "VENDOR-9"},
		cancelErr: ierr.NewError("unreachable").Mark(ierr.ErrHTTPClient),
	}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, inv.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, inv.ID, "téves kiállítás")
	require.Error(t, err)
	assert.True(t, ierr.IsBackend(err))

	persisted, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, persisted.Status)
}

func TestCancel_PaidRejected(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, inv.ID)
	require.NoError(t, err)
	_, err = svc.MarkPaid(ctx, inv.ID, nil)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, inv.ID, "reason")
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidTransition(err))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, inv.ID))

	_, err = svc.Get(ctx, inv.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestDelete_IssuedRejected(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, inv.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, inv.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidTransition(err))
}

func TestExportXML(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, _ := newTestService(t, b)

	inv, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, inv.ID)
	require.NoError(t, err)

	xml, err := svc.ExportXML(ctx, inv.ID)
	require.NoError(t, err)
	assert.Contains(t, string(xml), "InvoiceData")
	assert.Contains(t, string(xml), "INV-0001")
}

func TestList(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{kind: backend.KindSzamlazz, issueRes: &backend.Result{Success: true}}
	svc, _ := newTestService(t, b)

	_, err := svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)
	_, err = svc.CreateDraft(ctx, draftInput())
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
