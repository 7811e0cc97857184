// Package store defines the persistence contract the billing engine consumes
// and two implementations: an in-memory store for tests and the CLI, and a
// gorm-backed store for the desktop application's SQLite database.
package store

import (
	"context"

	"github.com/Kopoklesz/EmployeeManager/internal/model"
)

// Store is the storage contract for the invoice engine. SaveInvoice covers
// header and all items as one atomic unit. DeleteInvoice is only ever called
// for drafts; issued documents are cancelled, never deleted. Increment is the
// counter contract of internal/sequence and must be truly serialized by the
// storage layer.
type Store interface {
	LoadInvoice(ctx context.Context, id string) (*model.Invoice, error)
	SaveInvoice(ctx context.Context, inv *model.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
	ListInvoices(ctx context.Context) ([]*model.Invoice, error)

	Increment(ctx context.Context, key string) (prefix string, value int64, err error)
}
