// Package sequence allocates invoice numbers from a single shared counter.
// A duplicate or locally-cached number is a compliance defect, so the
// increment always happens inside the store's own serialization primitive;
// this package only adds formatting and a bounded retry for stores that
// report optimistic-concurrency conflicts.
package sequence

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/logger"
)

// CounterStore is the persistence contract behind the sequencer. Increment
// atomically creates-or-increments the counter under key and returns the
// allocated value together with the counter's prefix. Implementations must
// serialize concurrent callers (row lock, serialized transaction, or
// compare-and-swap); a plain read-then-write is not an implementation of this
// contract. A CAS implementation signals a lost race by marking the error
// with ErrSequenceConflict, which is the only retryable failure here.
type CounterStore interface {
	Increment(ctx context.Context, key string) (prefix string, value int64, err error)
}

// DefaultMaxRetries bounds the retry budget for CAS-backed stores.
const DefaultMaxRetries = 5

// Sequencer hands out formatted invoice numbers, unique and monotonically
// increasing per key.
type Sequencer struct {
	store      CounterStore
	log        *logger.Logger
	maxRetries uint64
}

// New creates a Sequencer over the given counter store.
func New(store CounterStore, log *logger.Logger) *Sequencer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Sequencer{store: store, log: log, maxRetries: DefaultMaxRetries}
}

// WithMaxRetries overrides the conflict retry budget.
func (s *Sequencer) WithMaxRetries(n uint64) *Sequencer {
	s.maxRetries = n
	return s
}

// Format renders an allocated counter value as an invoice number.
func Format(prefix string, value int64) string {
	return fmt.Sprintf("%s-%04d", prefix, value)
}

// Allocate returns the next invoice number for key. Once returned, the number
// is consumed for good: the counter has already been durably advanced, and
// nothing rolls it back even if the caller's onward work fails.
func (s *Sequencer) Allocate(ctx context.Context, key string) (string, error) {
	var number string

	op := func() error {
		prefix, value, err := s.store.Increment(ctx, key)
		if err != nil {
			if ierr.IsSequenceConflict(err) {
				s.log.Debugw("invoice number allocation lost a race, retrying", "key", key)
				return err
			}
			return backoff.Permanent(err)
		}
		number = Format(prefix, value)
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		if ierr.IsSequenceConflict(err) {
			return "", ierr.WithError(err).
				WithHint("Invoice numbering is under heavy contention, retry the issuance").
				WithReportableDetails(map[string]any{
					"key":     key,
					"retries": s.maxRetries,
				}).
				Mark(ierr.ErrSequenceConflict)
		}
		return "", err
	}

	s.log.Infow("allocated invoice number", "key", key, "number", number)
	return number, nil
}
