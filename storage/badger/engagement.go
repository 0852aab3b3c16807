package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
)

// EngagementRepository implements storage.EngagementRepository for BadgerDB.
// Counters live in daily buckets keyed by (day, job id) so windowed sums only
// touch the days inside the window.
type EngagementRepository struct {
	backend *Backend
}

var _ storage.EngagementRepository = (*EngagementRepository)(nil)

// NewEngagementRepository creates a new EngagementRepository.
func NewEngagementRepository(backend *Backend) *EngagementRepository {
	return &EngagementRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *EngagementRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EngagementRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// IncrementViews adds one view for the job on the given day.
func (r *EngagementRepository) IncrementViews(ctx context.Context, id core.ID, day time.Time) error {
	return r.increment(makeEngagementKey(engagementViewsPre, day, id))
}

// IncrementApplications adds one application for the job on the given day.
func (r *EngagementRepository) IncrementApplications(ctx context.Context, id core.ID, day time.Time) error {
	return r.increment(makeEngagementKey(engagementAppsPre, day, id))
}

// CountsSince sums the job's views and applications over days >= since.
func (r *EngagementRepository) CountsSince(ctx context.Context, id core.ID, since time.Time) (uint64, uint64, error) {
	var views, applications uint64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		views, err = r.sumBuckets(tx, engagementViewsPre, id, since)
		if err != nil {
			return err
		}
		applications, err = r.sumBuckets(tx, engagementAppsPre, id, since)
		return err
	}, false)
	return views, applications, err
}

// increment bumps one bucket inside a write transaction. Badger transactions
// conflict-check on the key, so concurrent bumps retry at the caller via the
// pipeline's backoff rather than losing counts.
func (r *EngagementRepository) increment(key []byte) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		var current uint64
		item, err := tx.Get(key)
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if err == nil {
			if err := item.Value(func(val []byte) error {
				var countErr error
				current, countErr = storage.UnmarshalCount(val)
				return countErr
			}); err != nil {
				return err
			}
		}
		if err := tx.Set(key, storage.MarshalCount(current+1)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// sumBuckets walks the day buckets for one counter kind from since to today.
// Buckets are sparse so missing days cost one failed point lookup each.
func (r *EngagementRepository) sumBuckets(tx *badger.Txn, prefix string, id core.ID, since time.Time) (uint64, error) {
	var total uint64
	for day := since.UTC().Truncate(24 * time.Hour); !day.After(time.Now().UTC()); day = day.Add(24 * time.Hour) {
		item, err := tx.Get(makeEngagementKey(prefix, day, id))
		if err == badger.ErrKeyNotFound {
			continue
		}
		if err != nil {
			return 0, err
		}
		if err := item.Value(func(val []byte) error {
			n, countErr := storage.UnmarshalCount(val)
			if countErr != nil {
				return countErr
			}
			total += n
			return nil
		}); err != nil {
			return 0, err
		}
	}
	return total, nil
}
