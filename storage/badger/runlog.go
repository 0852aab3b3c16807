package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
)

// RunLogRepository implements storage.RunLogRepository for BadgerDB.
// Log entries are keyed by BigEndian start timestamp so lexicographic order
// is time order; listing uses a reverse iterator to return newest first.
type RunLogRepository struct {
	backend *Backend
}

var _ storage.RunLogRepository = (*RunLogRepository)(nil)

// NewRunLogRepository creates a new RunLogRepository.
func NewRunLogRepository(backend *Backend) *RunLogRepository {
	return &RunLogRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *RunLogRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *RunLogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendScrapeLog appends a scrape phase record.
func (r *RunLogRepository) AppendScrapeLog(ctx context.Context, log *core.ScrapeRunLog) error {
	value, err := storage.MarshalScrapeRunLog(log)
	if err != nil {
		return err
	}
	return r.append(makeRunLogKey(scrapeLogPrefix, log.StartedAt), value)
}

// AppendValidationLog appends a validation phase record.
func (r *RunLogRepository) AppendValidationLog(ctx context.Context, log *core.ValidationLog) error {
	value, err := storage.MarshalValidationLog(log)
	if err != nil {
		return err
	}
	return r.append(makeRunLogKey(validationLogPrefix, log.StartedAt), value)
}

// ListScrapeLogs retrieves scrape logs newest first.
func (r *RunLogRepository) ListScrapeLogs(ctx context.Context, since time.Time, limit int) ([]*core.ScrapeRunLog, error) {
	var results []*core.ScrapeRunLog
	err := r.list(scrapeLogPrefix, since, limit, func(val []byte) error {
		log, err := storage.UnmarshalScrapeRunLog(val)
		if err != nil {
			return err
		}
		results = append(results, log)
		return nil
	})
	return results, err
}

// ListValidationLogs retrieves validation logs newest first.
func (r *RunLogRepository) ListValidationLogs(ctx context.Context, since time.Time, limit int) ([]*core.ValidationLog, error) {
	var results []*core.ValidationLog
	err := r.list(validationLogPrefix, since, limit, func(val []byte) error {
		log, err := storage.UnmarshalValidationLog(val)
		if err != nil {
			return err
		}
		results = append(results, log)
		return nil
	})
	return results, err
}

// SaveRunStatus persists the latest pipeline status snapshot.
func (r *RunLogRepository) SaveRunStatus(ctx context.Context, status *core.RunStatus) error {
	value, err := storage.MarshalRunStatus(status)
	if err != nil {
		return err
	}
	return r.append([]byte(runStatusKey), value)
}

// LoadRunStatus retrieves the latest pipeline status snapshot.
// Returns nil, nil if none has been saved.
func (r *RunLogRepository) LoadRunStatus(ctx context.Context) (*core.RunStatus, error) {
	var status *core.RunStatus
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(runStatusKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			status, unmarshalErr = storage.UnmarshalRunStatus(val)
			return unmarshalErr
		})
	}, false)
	return status, err
}

func (r *RunLogRepository) append(key, value []byte) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// list walks one log prefix in reverse time order, stopping at since or limit.
func (r *RunLogRepository) list(prefix string, since time.Time, limit int, visit func(val []byte) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key of this prefix
		startKey := makeRunLogKey(prefix, time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC))
		lowKey := makeRunLogKey(prefix, since)
		prefixBytes := []byte(prefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if limit > 0 && count >= limit {
				break
			}
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefixBytes) {
				break
			}
			if bytes.Compare(key, lowKey) < 0 {
				break
			}
			if err := iter.Item().Value(visit); err != nil {
				return err
			}
			count++
		}
		return nil
	}, false)
}
