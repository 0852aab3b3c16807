// Copyright 2025 Gophora
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) *JobRepository {
	return &JobRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *JobRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *JobRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *JobRepository) FindSimilar(ctx context.Context, collection storage.Collection, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, collection, vector, minSimilarity, limit)
}

// UpsertJobs writes jobs into a collection keyed by dedup hash id.
func (r *JobRepository) UpsertJobs(ctx context.Context, collection storage.Collection, jobs ...*core.Job) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, job := range jobs {
			value, err := storage.MarshalJob(job)
			if err != nil {
				return err
			}
			if err := tx.Set(makeJobKey(collection, job.Id), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetJob retrieves a job from a collection by id.
func (r *JobRepository) GetJob(ctx context.Context, collection storage.Collection, id core.ID) (*core.Job, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	var result *core.Job
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readJob(tx, makeJobKey(collection, id))
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

// HasJob reports whether a job exists in a collection.
func (r *JobRepository) HasJob(ctx context.Context, collection storage.Collection, id core.ID) (bool, error) {
	if err := checkCollection(collection); err != nil {
		return false, err
	}
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeJobKey(collection, id))
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

// ListJobs retrieves up to limit jobs from a collection, in key order.
func (r *JobRepository) ListJobs(ctx context.Context, collection storage.Collection, limit int) ([]*core.Job, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	var results []*core.Job
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeJobCollectionPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			var job *core.Job
			err := iter.Item().Value(func(val []byte) error {
				var err error
				job, err = storage.UnmarshalJob(val)
				return err
			})
			if err != nil {
				return err
			}
			if job != nil {
				results = append(results, job)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteJobs removes jobs from a single collection by id.
func (r *JobRepository) DeleteJobs(ctx context.Context, collection storage.Collection, ids ...core.ID) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeJobKey(collection, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountJobs returns the number of jobs in a collection.
func (r *JobRepository) CountJobs(ctx context.Context, collection storage.Collection) (int, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeJobCollectionPrefix(collection)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readJob reads a job from the transaction. Returns nil, nil when missing.
func readJob(tx *badger.Txn, key []byte) (*core.Job, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var job *core.Job
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		job, unmarshalErr = storage.UnmarshalJob(val)
		return unmarshalErr
	})
	return job, err
}

func checkCollection(collection storage.Collection) error {
	if !slices.Contains(storage.Collections, collection) {
		return storage.ErrUnknownCollection
	}
	return nil
}
