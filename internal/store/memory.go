package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
)

// Memory is a mutex-serialized in-memory Store. It backs tests and one-shot
// CLI runs; invoices are deep-copied on the way in and out so callers never
// share state with the store.
type Memory struct {
	mu       sync.Mutex
	invoices map[string]*model.Invoice
	counters map[string]*model.SequenceCounter
	prefix   string
}

// NewMemory creates an empty in-memory store. New counters are created with
// the given default prefix on first allocation.
func NewMemory(defaultPrefix string) *Memory {
	return &Memory{
		invoices: make(map[string]*model.Invoice),
		counters: make(map[string]*model.SequenceCounter),
		prefix:   defaultPrefix,
	}
}

func cloneInvoice(inv *model.Invoice) (*model.Invoice, error) {
	data, err := json.Marshal(inv)
	if err != nil {
		return nil, err
	}
	var out model.Invoice
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *Memory) LoadInvoice(_ context.Context, id string) (*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invoices[id]
	if !ok {
		return nil, ierr.NewErrorf("invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return cloneInvoice(inv)
}

func (m *Memory) SaveInvoice(_ context.Context, inv *model.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone, err := cloneInvoice(inv)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	m.invoices[inv.ID] = clone
	return nil
}

func (m *Memory) DeleteInvoice(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.invoices[id]; !ok {
		return ierr.NewErrorf("invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	delete(m.invoices, id)
	return nil
}

func (m *Memory) ListInvoices(_ context.Context) ([]*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		clone, err := cloneInvoice(inv)
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Increment serializes with the store mutex; the counter is created at 1 on
// first use.
func (m *Memory) Increment(_ context.Context, key string) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.counters[key]
	if !ok {
		c = &model.SequenceCounter{Key: key, Prefix: m.prefix, Next: 1}
		if c.Prefix == "" {
			c.Prefix = key
		}
		m.counters[key] = c
	}

	value := c.Next
	c.Next++
	c.Version++
	return c.Prefix, value, nil
}

// Counter returns a snapshot of the counter record, for display only.
func (m *Memory) Counter(key string) (model.SequenceCounter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.counters[key]
	if !ok {
		return model.SequenceCounter{}, false
	}
	return *c, true
}
