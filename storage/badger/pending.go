package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
)

// PendingRepository implements storage.PendingRepository for BadgerDB.
type PendingRepository struct {
	backend *Backend
}

var _ storage.PendingRepository = (*PendingRepository)(nil)

// NewPendingRepository creates a new PendingRepository.
func NewPendingRepository(backend *Backend) *PendingRepository {
	return &PendingRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *PendingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *PendingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutPending writes pending postings keyed by dedup hash id.
func (r *PendingRepository) PutPending(ctx context.Context, postings ...*core.PendingPosting) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, posting := range postings {
			posting.UpdatedAt = time.Now().UTC()
			value, err := storage.MarshalPendingPosting(posting)
			if err != nil {
				return err
			}
			if err := tx.Set(makePendingKey(posting.Id), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetPending retrieves a pending posting by id.
func (r *PendingRepository) GetPending(ctx context.Context, id core.ID) (*core.PendingPosting, error) {
	var result *core.PendingPosting
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPending(tx, makePendingKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListPendingByStatus retrieves pending postings matching any given status.
func (r *PendingRepository) ListPendingByStatus(ctx context.Context, statuses ...core.PostingStatus) ([]*core.PendingPosting, error) {
	if len(statuses) == 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.PendingPosting
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pendingRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var posting *core.PendingPosting
			err := iter.Item().Value(func(val []byte) error {
				var err error
				posting, err = storage.UnmarshalPendingPosting(val)
				return err
			})
			if err != nil {
				return err
			}
			if posting != nil && slices.Contains(statuses, posting.Status) {
				results = append(results, posting)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeletePending removes pending postings by id.
func (r *PendingRepository) DeletePending(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makePendingKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// HasPending reports whether a pending record exists for the id.
func (r *PendingRepository) HasPending(ctx context.Context, id core.ID) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makePendingKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// readPending reads a pending posting from the transaction.
// Returns nil, nil when missing.
func readPending(tx *badger.Txn, key []byte) (*core.PendingPosting, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var posting *core.PendingPosting
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		posting, unmarshalErr = storage.UnmarshalPendingPosting(val)
		return unmarshalErr
	})
	return posting, err
}
