package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
	"github.com/Kopoklesz/EmployeeManager/internal/money"
)

// invoiceRecord is the gorm row for an invoice header. The customer snapshot
// is stored as JSON: customer CRUD lives outside this engine and the invoice
// must keep the data it was issued with.
type invoiceRecord struct {
	ID              string `gorm:"primaryKey"`
	Number          string `gorm:"index"`
	CustomerJSON    string
	IssueDate       time.Time
	DeliveryDate    time.Time
	PaymentDeadline time.Time
	PaymentDate     *time.Time
	PaymentMethod   string
	Currency        string
	ExchangeRate    decimal.Decimal `gorm:"type:decimal(18,6)"`
	NetTotal        decimal.Decimal `gorm:"type:decimal(18,2)"`
	VatTotal        decimal.Decimal `gorm:"type:decimal(18,2)"`
	GrossTotal      decimal.Decimal `gorm:"type:decimal(18,2)"`
	Status          string          `gorm:"index"`
	Paid            bool
	ExternalSent    bool
	ExternalID      string
	SentAt          *time.Time
	ReverseCharge   bool
	CashAccounting  bool
	Notes           string
	Footer          string
	CancelledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (invoiceRecord) TableName() string { return "invoices" }

type invoiceItemRecord struct {
	ID              string `gorm:"primaryKey"`
	InvoiceID       string `gorm:"index"`
	LineNumber      int
	Description     string
	Unit            string
	Quantity        decimal.Decimal `gorm:"type:decimal(18,6)"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2)"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2)"`
	VatExempt       bool
	VatRate         decimal.Decimal `gorm:"type:decimal(5,2)"`
	VatExemptCode   string
	VatExemptReason string
	NetAmount       decimal.Decimal `gorm:"type:decimal(18,2)"`
	VatAmount       decimal.Decimal `gorm:"type:decimal(18,2)"`
	GrossAmount     decimal.Decimal `gorm:"type:decimal(18,2)"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2)"`
}

func (invoiceItemRecord) TableName() string { return "invoice_items" }

type counterRecord struct {
	Key     string `gorm:"primaryKey"`
	Prefix  string
	Next    int64
	Version int64
}

func (counterRecord) TableName() string { return "invoice_counters" }

// Gorm is the Store implementation over a gorm DB. The counter increment runs
// as a versioned compare-and-swap inside a transaction, so the sequence stays
// duplicate-free under concurrent writers and across processes.
type Gorm struct {
	db     *gorm.DB
	prefix string
}

// OpenSQLite opens (and migrates) the SQLite database at path.
func OpenSQLite(path, defaultPrefix string) (*Gorm, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not open the billing database").
			Mark(ierr.ErrDatabase)
	}
	return NewGorm(db, defaultPrefix)
}

// NewGorm wraps an existing gorm DB and runs migrations.
func NewGorm(db *gorm.DB, defaultPrefix string) (*Gorm, error) {
	if err := db.AutoMigrate(&invoiceRecord{}, &invoiceItemRecord{}, &counterRecord{}); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Billing database migration failed").
			Mark(ierr.ErrDatabase)
	}
	return &Gorm{db: db, prefix: defaultPrefix}, nil
}

func toRecord(inv *model.Invoice) (*invoiceRecord, []invoiceItemRecord, error) {
	customerJSON := ""
	if inv.Customer != nil {
		data, err := json.Marshal(inv.Customer)
		if err != nil {
			return nil, nil, err
		}
		customerJSON = string(data)
	}

	rec := &invoiceRecord{
		ID:              inv.ID,
		Number:          inv.Number,
		CustomerJSON:    customerJSON,
		IssueDate:       inv.IssueDate,
		DeliveryDate:    inv.DeliveryDate,
		PaymentDeadline: inv.PaymentDeadline,
		PaymentDate:     inv.PaymentDate,
		PaymentMethod:   string(inv.PaymentMethod),
		Currency:        inv.Currency,
		ExchangeRate:    inv.ExchangeRate,
		NetTotal:        inv.Totals.Net,
		VatTotal:        inv.Totals.VAT,
		GrossTotal:      inv.Totals.Gross,
		Status:          string(inv.Status),
		Paid:            inv.Paid,
		ExternalSent:    inv.ExternalSent,
		ExternalID:      inv.ExternalID,
		SentAt:          inv.SentAt,
		ReverseCharge:   inv.ReverseCharge,
		CashAccounting:  inv.CashAccounting,
		Notes:           inv.Notes,
		Footer:          inv.Footer,
		CancelledAt:     inv.CancelledAt,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}

	items := make([]invoiceItemRecord, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = invoiceItemRecord{
			ID:              it.ID,
			InvoiceID:       inv.ID,
			LineNumber:      it.LineNumber,
			Description:     it.Description,
			Unit:            it.Unit,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			VatExempt:       it.Vat.IsExempt(),
			VatRate:         it.Vat.Rate(),
			VatExemptCode:   it.Vat.ExemptionCode(),
			VatExemptReason: it.Vat.ExemptionReason(),
			NetAmount:       it.Amounts.Net,
			VatAmount:       it.Amounts.VAT,
			GrossAmount:     it.Amounts.Gross,
			DiscountAmount:  it.Amounts.Discount,
		}
	}
	return rec, items, nil
}

func fromRecord(rec *invoiceRecord, items []invoiceItemRecord) (*model.Invoice, error) {
	var customer *model.Customer
	if rec.CustomerJSON != "" {
		customer = &model.Customer{}
		if err := json.Unmarshal([]byte(rec.CustomerJSON), customer); err != nil {
			return nil, err
		}
	}

	inv := &model.Invoice{
		ID:              rec.ID,
		Number:          rec.Number,
		Customer:        customer,
		IssueDate:       rec.IssueDate,
		DeliveryDate:    rec.DeliveryDate,
		PaymentDeadline: rec.PaymentDeadline,
		PaymentDate:     rec.PaymentDate,
		PaymentMethod:   model.PaymentMethod(rec.PaymentMethod),
		Currency:        rec.Currency,
		ExchangeRate:    rec.ExchangeRate,
		Totals:          money.Totals{Net: rec.NetTotal, VAT: rec.VatTotal, Gross: rec.GrossTotal},
		Status:          model.InvoiceStatus(rec.Status),
		Paid:            rec.Paid,
		ExternalSent:    rec.ExternalSent,
		ExternalID:      rec.ExternalID,
		SentAt:          rec.SentAt,
		ReverseCharge:   rec.ReverseCharge,
		CashAccounting:  rec.CashAccounting,
		Notes:           rec.Notes,
		Footer:          rec.Footer,
		CancelledAt:     rec.CancelledAt,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}

	inv.Items = make([]model.InvoiceItem, len(items))
	for i, it := range items {
		vat := money.Rated(it.VatRate)
		if it.VatExempt {
			vat = money.Exempt(it.VatExemptCode, it.VatExemptReason)
		}
		inv.Items[i] = model.InvoiceItem{
			ID:              it.ID,
			LineNumber:      it.LineNumber,
			Description:     it.Description,
			Unit:            it.Unit,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			Vat:             vat,
			Amounts: money.Amounts{
				Net:      it.NetAmount,
				VAT:      it.VatAmount,
				Gross:    it.GrossAmount,
				Discount: it.DiscountAmount,
			},
		}
	}
	return inv, nil
}

func (g *Gorm) LoadInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	var rec invoiceRecord
	if err := g.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("invoice %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	var items []invoiceItemRecord
	if err := g.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Order("line_number asc").
		Find(&items).Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	inv, err := fromRecord(&rec, items)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return inv, nil
}

// SaveInvoice writes header and items in one transaction, replacing the item
// rows so line renumbering and removals land atomically.
func (g *Gorm) SaveInvoice(ctx context.Context, inv *model.Invoice) error {
	rec, items, err := toRecord(inv)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&invoiceItemRecord{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not save the invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (g *Gorm) DeleteInvoice(ctx context.Context, id string) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&invoiceRecord{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("invoice_id = ?", id).Delete(&invoiceItemRecord{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ierr.NewErrorf("invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return nil
}

func (g *Gorm) ListInvoices(ctx context.Context) ([]*model.Invoice, error) {
	var recs []invoiceRecord
	if err := g.db.WithContext(ctx).Order("created_at asc").Find(&recs).Error; err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	out := make([]*model.Invoice, 0, len(recs))
	for i := range recs {
		var items []invoiceItemRecord
		if err := g.db.WithContext(ctx).
			Where("invoice_id = ?", recs[i].ID).
			Order("line_number asc").
			Find(&items).Error; err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		inv, err := fromRecord(&recs[i], items)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		out = append(out, inv)
	}
	return out, nil
}

// Increment advances the counter with a versioned compare-and-swap inside a
// transaction. A lost race surfaces as ErrSequenceConflict for the sequencer
// to retry; it is never resolved by re-reading a cached value.
func (g *Gorm) Increment(ctx context.Context, key string) (string, int64, error) {
	var prefix string
	var value int64

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c counterRecord
		err := tx.First(&c, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c = counterRecord{Key: key, Prefix: g.prefix, Next: 1}
			if c.Prefix == "" {
				c.Prefix = key
			}
			if err := tx.Create(&c).Error; err != nil {
				// two initializers raced; the loser retries and reads the winner's row
				return ierr.WithError(err).Mark(ierr.ErrSequenceConflict)
			}
		} else if err != nil {
			return err
		}

		res := tx.Model(&counterRecord{}).
			Where("key = ? AND version = ?", key, c.Version).
			Updates(map[string]any{"next": c.Next + 1, "version": c.Version + 1})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ierr.NewErrorf("counter %s version moved", key).
				Mark(ierr.ErrSequenceConflict)
		}

		prefix = c.Prefix
		value = c.Next
		return nil
	})
	if err != nil {
		if ierr.IsSequenceConflict(err) {
			return "", 0, err
		}
		return "", 0, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return prefix, value, nil
}
