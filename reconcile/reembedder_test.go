package reconcile

import (
	"context"
	"io"
	"testing"

	"github.com/gophora/scout/ai/mock"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
	storagebadger "github.com/gophora/scout/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReembedder_ReplacesVectorsEverywhere(t *testing.T) {
	repos, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	ctx := context.Background()

	// Old-model vectors in verified, secondary, and cache
	job := approvedJob("Courier", core.SkillLevelZero, true)
	stale := []float32{0, 1}
	job.Vector = stale
	require.NoError(t, repos.Jobs.UpsertJobs(ctx, storage.CollectionVerified, job))
	require.NoError(t, repos.Jobs.UpsertJobs(ctx, storage.CollectionImmediate, job))
	cacheKey := core.IDFromContent(job.EmbeddingText())
	require.NoError(t, repos.EmbedCache.PutVector(ctx, cacheKey, stale))

	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{2, 0} // unnormalized on purpose
		}
		return vectors, nil
	}

	r, err := NewReembedder(repos.Jobs, embedder, repos.EmbedCache, nil, io.Discard)
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	fresh := []float32{1, 0}
	for _, c := range []storage.Collection{storage.CollectionVerified, storage.CollectionImmediate} {
		got, err := repos.Jobs.GetJob(ctx, c, job.Id)
		require.NoError(t, err)
		assert.Equal(t, fresh, got.Vector, "collection %s", c)
	}

	cached, err := repos.EmbedCache.GetVector(ctx, cacheKey)
	require.NoError(t, err)
	assert.Equal(t, fresh, cached, "cache overwritten, not consulted")
}

func TestReembedder_BatchesAcrossJobs(t *testing.T) {
	repos, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C", "D", "E"} {
		job := approvedJob(title, core.SkillLevelMedium, false)
		require.NoError(t, repos.Jobs.UpsertJobs(ctx, storage.CollectionVerified, job))
	}

	embedder := mock.NewEmbedder()
	config := DefaultConfig()
	config.BatchSize = 2

	r, err := NewReembedder(repos.Jobs, embedder, repos.EmbedCache, config, io.Discard)
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	// 5 jobs in batches of 2 -> 3 calls
	assert.Equal(t, 3, embedder.CallCount())

	jobs, err := repos.Jobs.ListJobs(ctx, storage.CollectionVerified, 0)
	require.NoError(t, err)
	for _, job := range jobs {
		assert.NotEmpty(t, job.Vector)
	}
}

func TestReembedder_EmptyStore(t *testing.T) {
	repos, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	r, err := NewReembedder(repos.Jobs, mock.NewEmbedder(), repos.EmbedCache, nil, io.Discard)
	require.NoError(t, err)
	assert.NoError(t, r.Run(context.Background()))
}
