package model_test

import (
	"testing"
	"time"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
	"github.com/Kopoklesz/EmployeeManager/internal/money"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func draftInvoice() *model.Invoice {
	inv := model.NewInvoice(testNow)
	inv.Customer = &model.Customer{
		ID:         model.GenerateID(model.IDPrefixCustomer),
		Name:       "Minta Kft.",
		TaxNumber:  "12345678-2-42",
		PostalCode: "1051",
		City:       "Budapest",
		Address:    "Fő utca 1.",
		Country:    "HU",
	}
	inv.IssueDate = testNow
	inv.DeliveryDate = testNow
	inv.PaymentDeadline = testNow.AddDate(0, 0, 8)
	inv.PaymentMethod = model.PaymentMethodTransfer
	inv.AddItem(model.InvoiceItem{
		Description: "Tanácsadás",
		Unit:        "óra",
		Quantity:    dec.NewFromInt(2),
		UnitPrice:   dec.NewFromInt(1000),
		Vat:         money.RatedPercent(27),
	})
	return inv
}

func TestNewInvoice_Defaults(t *testing.T) {
	inv := model.NewInvoice(testNow)

	assert.Equal(t, model.StatusDraft, inv.Status)
	assert.Empty(t, inv.Number)
	assert.Equal(t, "HUF", inv.Currency)
	// Exchange rate defaults to 1 even for same-currency invoices.
	assert.True(t, inv.ExchangeRate.Equal(dec.NewFromInt(1)))
}

func TestRecalculate_TotalsMatchItemSums(t *testing.T) {
	inv := draftInvoice()
	inv.AddItem(model.InvoiceItem{
		Description:     "Licenc",
		Unit:            "db",
		Quantity:        dec.NewFromInt(1),
		UnitPrice:       dec.NewFromInt(10000),
		DiscountPercent: dec.NewFromInt(10),
		Vat:             money.RatedPercent(27),
	})

	assert.True(t, inv.Totals.Net.Equal(money.MustFromString("11000")), "net: %s", inv.Totals.Net)
	assert.True(t, inv.Totals.VAT.Equal(money.MustFromString("2970")), "vat: %s", inv.Totals.VAT)
	assert.True(t, inv.Totals.Gross.Equal(money.MustFromString("13970")), "gross: %s", inv.Totals.Gross)
}

func TestRecalculate_RenumbersLinesDensely(t *testing.T) {
	inv := draftInvoice()
	inv.AddItem(model.InvoiceItem{Quantity: dec.NewFromInt(1), UnitPrice: dec.NewFromInt(100), Vat: money.RatedPercent(27)})
	inv.AddItem(model.InvoiceItem{Quantity: dec.NewFromInt(1), UnitPrice: dec.NewFromInt(200), Vat: money.RatedPercent(27)})

	// Remove the middle line, numbers must close the gap.
	inv.Items = append(inv.Items[:1], inv.Items[2:]...)
	inv.Recalculate()

	require.Len(t, inv.Items, 2)
	assert.Equal(t, 1, inv.Items[0].LineNumber)
	assert.Equal(t, 2, inv.Items[1].LineNumber)
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		from    model.InvoiceStatus
		to      model.InvoiceStatus
		allowed bool
	}{
		{model.StatusDraft, model.StatusCancelled, true},
		{model.StatusDraft, model.StatusIssued, true},
		{model.StatusIssued, model.StatusSent, true},
		{model.StatusIssued, model.StatusPaid, true},
		{model.StatusIssued, model.StatusCancelled, true},
		{model.StatusSent, model.StatusPaid, true},
		{model.StatusSent, model.StatusCancelled, true},
		{model.StatusSent, model.StatusIssued, false},
		{model.StatusPaid, model.StatusCancelled, false},
		{model.StatusPaid, model.StatusSent, false},
		{model.StatusCancelled, model.StatusIssued, false},
		{model.StatusIssued, model.StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransitionTo_IllegalFailsWithoutMutation(t *testing.T) {
	inv := draftInvoice()
	inv.Number = "INV-0001"
	require.NoError(t, inv.TransitionTo(model.StatusIssued, testNow))
	require.NoError(t, inv.TransitionTo(model.StatusPaid, testNow))

	err := inv.TransitionTo(model.StatusCancelled, testNow)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidTransition(err))
	assert.Equal(t, model.StatusPaid, inv.Status)
	assert.Nil(t, inv.CancelledAt)
}

func TestTransitionTo_IssueRequiresNumber(t *testing.T) {
	inv := draftInvoice()

	err := inv.TransitionTo(model.StatusIssued, testNow)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidTransition(err))
	assert.Equal(t, model.StatusDraft, inv.Status)
}

func TestTransitionTo_SideEffects(t *testing.T) {
	inv := draftInvoice()
	inv.Number = "INV-0001"
	require.NoError(t, inv.TransitionTo(model.StatusIssued, testNow))

	require.NoError(t, inv.TransitionTo(model.StatusSent, testNow))
	assert.True(t, inv.ExternalSent)
	require.NotNil(t, inv.SentAt)

	require.NoError(t, inv.TransitionTo(model.StatusPaid, testNow))
	assert.True(t, inv.Paid)
	require.NotNil(t, inv.PaymentDate)
}

func TestValidateIssue(t *testing.T) {
	t.Run("complete draft passes", func(t *testing.T) {
		require.NoError(t, draftInvoice().ValidateIssue())
	})

	mutations := map[string]func(*model.Invoice){
		"missing customer":       func(i *model.Invoice) { i.Customer = nil },
		"missing issue date":     func(i *model.Invoice) { i.IssueDate = time.Time{} },
		"missing delivery date":  func(i *model.Invoice) { i.DeliveryDate = time.Time{} },
		"missing deadline":       func(i *model.Invoice) { i.PaymentDeadline = time.Time{} },
		"missing payment method": func(i *model.Invoice) { i.PaymentMethod = "" },
		"missing currency":       func(i *model.Invoice) { i.Currency = "" },
		"missing exchange rate":  func(i *model.Invoice) { i.ExchangeRate = dec.Zero },
		"no items":               func(i *model.Invoice) { i.Items = nil; i.Recalculate() },
		"unknown payment method": func(i *model.Invoice) { i.PaymentMethod = "BARTER" },
		"zero net amount": func(i *model.Invoice) {
			i.Items = []model.InvoiceItem{{Quantity: dec.Zero, UnitPrice: dec.NewFromInt(100), Vat: money.RatedPercent(27)}}
			i.Recalculate()
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			inv := draftInvoice()
			mutate(inv)
			err := inv.ValidateIssue()
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestIsOverdue(t *testing.T) {
	inv := draftInvoice()
	inv.Number = "INV-0001"
	require.NoError(t, inv.TransitionTo(model.StatusIssued, testNow))

	assert.False(t, inv.IsOverdue(testNow))
	assert.True(t, inv.IsOverdue(testNow.AddDate(0, 0, 9)))
	assert.Equal(t, model.StatusOverdue, inv.DisplayStatus(testNow.AddDate(0, 0, 9)))
	assert.Equal(t, model.StatusIssued, inv.DisplayStatus(testNow))

	// Paid invoices are never overdue.
	require.NoError(t, inv.TransitionTo(model.StatusPaid, testNow))
	assert.False(t, inv.IsOverdue(testNow.AddDate(0, 0, 9)))

	// Drafts are never overdue either.
	draft := draftInvoice()
	draft.PaymentDeadline = testNow.AddDate(0, 0, -1)
	assert.False(t, draft.IsOverdue(testNow))
}

func TestCanDelete(t *testing.T) {
	inv := draftInvoice()
	assert.True(t, inv.CanDelete())

	inv.Number = "INV-0001"
	require.NoError(t, inv.TransitionTo(model.StatusIssued, testNow))
	assert.False(t, inv.CanDelete())
}
