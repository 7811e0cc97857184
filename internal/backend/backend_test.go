package backend_test

import (
	"context"
	"testing"
	"time"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kopoklesz/EmployeeManager/internal/backend"
	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
	"github.com/Kopoklesz/EmployeeManager/internal/money"
)

var backendNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

// fakeBackend stands in for a vendor adapter in selector tests.
type fakeBackend struct {
	kind backend.Kind
}

func (f *fakeBackend) Kind() backend.Kind { return f.kind }
func (f *fakeBackend) IsAvailable() bool  { return true }
func (f *fakeBackend) Issue(context.Context, *model.Invoice) (*backend.Result, error) {
	return &backend.Result{Success: true}, nil
}
func (f *fakeBackend) Cancel(context.Context, *model.Invoice, string) (bool, error) {
	return true, nil
}
func (f *fakeBackend) DownloadDocument(context.Context, *model.Invoice) ([]byte, error) {
	return nil, nil
}

func backendSettings() *model.CompanySettings {
	return &model.CompanySettings{
		CompanyName: "Teszt Kft.",
		TaxNumber:   "11111111-2-42",
		PostalCode:  "1111",
		City:        "Budapest",
		Address:     "Teszt utca 1.",
		Country:     "HU",
	}
}

func issuableInvoice() *model.Invoice {
	inv := model.NewInvoice(backendNow)
	inv.Number = "INV-0001"
	inv.Customer = &model.Customer{
		Name:       "Vevő Zrt.",
		PostalCode: "9400",
		City:       "Sopron",
		Address:    "Vár köz 2.",
		Country:    "HU",
	}
	inv.IssueDate = backendNow
	inv.DeliveryDate = backendNow
	inv.PaymentDeadline = backendNow.AddDate(0, 0, 8)
	inv.PaymentMethod = model.PaymentMethodTransfer
	inv.AddItem(model.InvoiceItem{
		Description: "Fejlesztés",
		Unit:        "óra",
		Quantity:    dec.NewFromInt(2),
		UnitPrice:   dec.NewFromInt(1000),
		Vat:         money.RatedPercent(27),
	})
	return inv
}

func TestSelector(t *testing.T) {
	local := backend.NewLocal(backendSettings())
	szamlazz := &fakeBackend{kind: backend.KindSzamlazz}
	billingo := &fakeBackend{kind: backend.KindBillingo}
	sel := backend.NewSelector(nil, local, szamlazz, billingo)

	tests := []struct {
		configured string
		want       backend.Kind
	}{
		{"szamlazz", backend.KindSzamlazz},
		{"billingo", backend.KindBillingo},
		{"local_xml", backend.KindLocalXML},
		// misconfiguration must never block issuing a document
		{"", backend.KindLocalXML},
		{"no-such-backend", backend.KindLocalXML},
	}

	for _, tt := range tests {
		t.Run("configured="+tt.configured, func(t *testing.T) {
			b := sel.Select(tt.configured)
			require.NotNil(t, b)
			assert.Equal(t, tt.want, b.Kind())
		})
	}
}

func TestKindValidate(t *testing.T) {
	assert.NoError(t, backend.KindLocalXML.Validate())
	assert.NoError(t, backend.KindSzamlazz.Validate())
	assert.NoError(t, backend.KindBillingo.Validate())

	err := backend.Kind("quickbooks").Validate()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestLocal_Issue(t *testing.T) {
	local := backend.NewLocal(backendSettings())
	require.True(t, local.IsAvailable())

	res, err := local.Issue(context.Background(), issuableInvoice())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "INV-0001", res.ExternalID)
	assert.Contains(t, string(res.Document), "<invoiceNumber>INV-0001</invoiceNumber>")
}

func TestLocal_IssueMalformedInvoice(t *testing.T) {
	local := backend.NewLocal(backendSettings())
	inv := issuableInvoice()
	inv.Number = ""

	_, err := local.Issue(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, ierr.IsRender(err))
}

func TestLocal_DownloadMatchesIssue(t *testing.T) {
	local := backend.NewLocal(backendSettings())
	inv := issuableInvoice()

	res, err := local.Issue(context.Background(), inv)
	require.NoError(t, err)
	doc, err := local.DownloadDocument(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, res.Document, doc)
}

func TestLocal_Cancel(t *testing.T) {
	local := backend.NewLocal(backendSettings())
	ok, err := local.Cancel(context.Background(), issuableInvoice(), "hibás számla")
	require.NoError(t, err)
	assert.True(t, ok)
}
