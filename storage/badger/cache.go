package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
)

// EmbeddingCacheRepository implements storage.EmbeddingCacheRepository for
// BadgerDB.
type EmbeddingCacheRepository struct {
	backend *Backend
}

var _ storage.EmbeddingCacheRepository = (*EmbeddingCacheRepository)(nil)

// NewEmbeddingCacheRepository creates a new EmbeddingCacheRepository.
func NewEmbeddingCacheRepository(backend *Backend) *EmbeddingCacheRepository {
	return &EmbeddingCacheRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *EmbeddingCacheRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EmbeddingCacheRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// GetVector retrieves a cached vector. Returns ErrNotFound on miss.
func (r *EmbeddingCacheRepository) GetVector(ctx context.Context, contentHash core.ID) ([]float32, error) {
	var vector []float32
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbedCacheKey(contentHash))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			vector, unmarshalErr = storage.UnmarshalVector(val)
			return unmarshalErr
		})
	}, false)
	return vector, err
}

// PutVector caches a vector under a content hash.
func (r *EmbeddingCacheRepository) PutVector(ctx context.Context, contentHash core.ID, vector []float32) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		value, err := storage.MarshalVector(vector)
		if err != nil {
			return err
		}
		if err := tx.Set(makeEmbedCacheKey(contentHash), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
