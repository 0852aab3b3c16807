package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gophora/scout/storage"
)

// LockRepository implements storage.LockRepository for BadgerDB.
// The lock is a single key with a TTL; a crashed holder's lock expires on its
// own instead of wedging the scheduler forever.
type LockRepository struct {
	backend *Backend
}

var _ storage.LockRepository = (*LockRepository)(nil)

// NewLockRepository creates a new LockRepository.
func NewLockRepository(backend *Backend) *LockRepository {
	return &LockRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *LockRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *LockRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AcquireRunLock takes the run lock, failing with ErrLockHeld when taken.
// Check and set happen in one transaction, so two concurrent acquirers
// conflict at commit and at most one wins.
func (r *LockRepository) AcquireRunLock(ctx context.Context, ttl time.Duration) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte(runLockKey))
		if err == nil {
			return storage.ErrLockHeld
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		entry := badger.NewEntry([]byte(runLockKey), []byte{1}).WithTTL(ttl)
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err == badger.ErrConflict {
		return storage.ErrLockHeld
	}
	return err
}

// ReleaseRunLock releases the run lock.
func (r *LockRepository) ReleaseRunLock(ctx context.Context) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete([]byte(runLockKey)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
