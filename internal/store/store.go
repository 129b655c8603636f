// Package store persists the marketplace entities. It holds no business
// rules: callers decide what to write, the store only guarantees that a
// project is never saved over a newer version.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"gorm.io/gorm"
)

// ErrStaleProject is returned by SaveProject when the row was modified after
// it was loaded.
var ErrStaleProject = errors.New("stale project version")

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the timestamp source used for updated_at columns.
func (s *Store) WithClock(now func() time.Time) *Store {
	return &Store{db: s.db, now: now}
}

// Gorm exposes the underlying handle, scoped to the current transaction when
// called on a transactional store.
func (s *Store) Gorm() *gorm.DB {
	return s.db
}

// WithTx runs fn inside a database transaction. The store passed to fn is
// bound to that transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, now: s.now})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// classify turns a gorm error into the application taxonomy.
func classify(err error, notFound, failure string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New(apperr.CodeNotFound, notFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.New(apperr.CodeConflict, "record already exists", err)
	default:
		return apperr.Internal(failure, errors.WithStack(err))
	}
}
