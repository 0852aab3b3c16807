package badger

import (
	"context"
	"testing"
	"time"

	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func makeJob(title, company string, trust int) *core.Job {
	posting := core.RawPosting{
		Source:    "remotive",
		Title:     title,
		Company:   company,
		Location:  "Malmo",
		FetchedAt: time.Now().UTC(),
	}
	posting.Id = posting.Fingerprint()
	return &core.Job{
		RawPosting: posting,
		Validation: core.ValidationResult{
			IsLegitimate: true,
			TrustScore:   trust,
			Category:     core.CategoryWork,
			SkillLevel:   core.SkillLevelLow,
		},
		ApprovedAt: time.Now().UTC(),
	}
}

func TestJobRepository_UpsertAndGet(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	job := makeJob("Courier", "Speedy AB", 85)
	require.NoError(t, repos.Jobs.UpsertJobs(ctx, storage.CollectionVerified, job))

	got, err := repos.Jobs.GetJob(ctx, storage.CollectionVerified, job.Id)
	require.NoError(t, err)
	assert.Equal(t, job.Title, got.Title)
	assert.Equal(t, 85, got.Validation.TrustScore)

	// Same id in another collection is absent
	_, err = repos.Jobs.GetJob(ctx, storage.CollectionImmediate, job.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobRepository_UpsertIsIdempotent(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	job := makeJob("Courier", "Speedy AB", 85)
	require.NoError(t, repos.Jobs.UpsertJobs(ctx, storage.CollectionVerified, job))

	// Re-approving the same posting overwrites rather than duplicating
	job.Validation.TrustScore = 90
	require.NoError(t, repos.Jobs.UpsertJobs(ctx, storage.CollectionVerified, job))

	count, err := repos.Jobs.CountJobs(ctx, storage.CollectionVerified)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repos.Jobs.GetJob(ctx, storage.CollectionVerified, job.Id)
	require.NoError(t, err)
	assert.Equal(t, 90, got.Validation.TrustScore)
}

func TestJobRepository_HasAndDelete(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	job := makeJob("Tutor", "Learnly", 75)
	require.NoError(t, repos.Jobs.UpsertJobs(ctx, storage.CollectionImmediate, job))

	found, err := repos.Jobs.HasJob(ctx, storage.CollectionImmediate, job.Id)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, repos.Jobs.DeleteJobs(ctx, storage.CollectionImmediate, job.Id))

	found, err = repos.Jobs.HasJob(ctx, storage.CollectionImmediate, job.Id)
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing id is fine
	assert.NoError(t, repos.Jobs.DeleteJobs(ctx, storage.CollectionImmediate, job.Id))
}

func TestJobRepository_ListJobs(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	jobs := []*core.Job{
		makeJob("Courier", "Speedy AB", 80),
		makeJob("Tutor", "Learnly", 75),
		makeJob("Cleaner", "Shine Co", 70),
	}
	require.NoError(t, repos.Jobs.UpsertJobs(ctx, storage.CollectionVerified, jobs...))

	all, err := repos.Jobs.ListJobs(ctx, storage.CollectionVerified, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := repos.Jobs.ListJobs(ctx, storage.CollectionVerified, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestJobRepository_UnknownCollection(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	err := repos.Jobs.UpsertJobs(ctx, storage.Collection("bogus"), makeJob("X", "Y", 50))
	assert.ErrorIs(t, err, storage.ErrUnknownCollection)

	_, err = repos.Jobs.ListJobs(ctx, storage.Collection("bogus"), 0)
	assert.ErrorIs(t, err, storage.ErrUnknownCollection)
}

func TestBackend_FindSimilar(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	near := makeJob("Go Developer", "Acme", 80)
	near.Vector = []float32{1, 0, 0}
	mid := makeJob("Backend Engineer", "Beta", 85)
	mid.Vector = []float32{0.7071, 0.7071, 0}
	far := makeJob("Chef", "Bistro", 90)
	far.Vector = []float32{0, 0, 1}
	unvectored := makeJob("Mystery", "Noembed", 60)

	require.NoError(t, repos.Jobs.UpsertJobs(ctx, storage.CollectionSkillBased, near, mid, far, unvectored))

	results, err := repos.Jobs.FindSimilar(ctx, storage.CollectionSkillBased, []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Ordered by similarity descending
	assert.Equal(t, near.Id, results[0].Job.Id)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-4)
	assert.Equal(t, mid.Id, results[1].Job.Id)

	t.Run("limit applies after sorting", func(t *testing.T) {
		results, err := repos.Jobs.FindSimilar(ctx, storage.CollectionSkillBased, []float32{1, 0, 0}, -1, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, near.Id, results[0].Job.Id)
	})

	t.Run("empty collection", func(t *testing.T) {
		results, err := repos.Jobs.FindSimilar(ctx, storage.CollectionImmediate, []float32{1, 0, 0}, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
