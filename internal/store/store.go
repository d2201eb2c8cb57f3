// Package store is a thin parameterized-query abstraction over
// PostgreSQL. All mutation goes
// through typed methods here; nothing in this package concatenates SQL
// from untrusted input, and only the operations the core actually
// needs are exposed — monitors, monitor state, check results, outages,
// incidents, maintenance windows, notification channels and
// deliveries, the scheduler lease, daily rollups, and the public
// snapshot.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Store is the root handle. Mutations that need transactional
// atomicity (outage open/close together with the state upsert) run
// through a *gorm.DB transaction via Queries.
type Store struct {
	Queries
}

// Queries is the set of typed operations available both on the root
// Store and inside a transaction (via Store.Transaction). It is kept
// as its own type so a transaction can expose exactly the same method
// set as the top-level Store.
type Queries struct {
	db *gorm.DB
}

// New wraps an already-open *gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{Queries: Queries{db: db}}
}

// Transaction runs fn inside one database transaction. If the backend
// op fails, the transaction is rolled back and the error is wrapped as
// a *StorageError so callers can tell persistence failures apart from
// validation failures.
func (s *Store) Transaction(ctx context.Context, fn func(q *Queries) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Queries{db: tx})
	})
	if err != nil {
		var se *StorageError
		if errors.As(err, &se) {
			return err
		}
		return &StorageError{Op: "transaction", Err: err}
	}
	return nil
}

func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
