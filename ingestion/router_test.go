package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
	storagebadger "github.com/gophora/scout/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingJobRepo fails every upsert into one collection and delegates the
// rest.
type failingJobRepo struct {
	storage.JobRepository
	fail storage.Collection
}

func (r *failingJobRepo) UpsertJobs(ctx context.Context, collection storage.Collection, jobs ...*core.Job) error {
	if collection == r.fail {
		return errors.New("write failed")
	}
	return r.JobRepository.UpsertJobs(ctx, collection, jobs...)
}

func routedJob(skill core.SkillLevel, immediate bool) *core.Job {
	job := testJob("Job " + string(skill))
	job.Validation = core.ValidationResult{
		IsLegitimate:          true,
		TrustScore:            80,
		Category:              core.CategoryWork,
		SkillLevel:            skill,
		ImmediateAvailability: immediate,
	}
	return job
}

func TestTargets(t *testing.T) {
	tests := []struct {
		name       string
		skill      core.SkillLevel
		immediate  bool
		wantImm    bool
		wantSkills bool
	}{
		{"zero skill immediate", core.SkillLevelZero, true, true, false},
		{"low skill immediate", core.SkillLevelLow, true, true, false},
		{"medium skill immediate goes skill-based", core.SkillLevelMedium, true, false, true},
		{"high skill immediate goes skill-based", core.SkillLevelHigh, true, false, true},
		{"zero skill not immediate goes skill-based", core.SkillLevelZero, false, false, true},
		{"high skill not immediate", core.SkillLevelHigh, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Targets(routedJob(tt.skill, tt.immediate))
			assert.Equal(t, tt.wantImm, got.Immediate)
			assert.Equal(t, tt.wantSkills, got.SkillBased)
		})
	}
}

func TestRouter_Route(t *testing.T) {
	repos, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	router, err := NewRouter(repos.Jobs, nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("immediate job lands in verified and immediate", func(t *testing.T) {
		job := routedJob(core.SkillLevelZero, true)
		targets, err := router.Route(ctx, job)
		require.NoError(t, err)
		assert.True(t, targets.Immediate)

		for _, c := range []storage.Collection{storage.CollectionVerified, storage.CollectionImmediate} {
			found, err := repos.Jobs.HasJob(ctx, c, job.Id)
			require.NoError(t, err)
			assert.True(t, found, "collection %s", c)
		}
		found, err := repos.Jobs.HasJob(ctx, storage.CollectionSkillBased, job.Id)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("skilled job lands in verified and skill-based", func(t *testing.T) {
		job := routedJob(core.SkillLevelHigh, false)
		targets, err := router.Route(ctx, job)
		require.NoError(t, err)
		assert.True(t, targets.SkillBased)

		found, err := repos.Jobs.HasJob(ctx, storage.CollectionSkillBased, job.Id)
		require.NoError(t, err)
		assert.True(t, found)
		found, err = repos.Jobs.HasJob(ctx, storage.CollectionImmediate, job.Id)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("secondary failure keeps the verified write", func(t *testing.T) {
		router, err := NewRouter(&failingJobRepo{
			JobRepository: repos.Jobs,
			fail:          storage.CollectionImmediate,
		}, nil)
		require.NoError(t, err)

		job := routedJob(core.SkillLevelLow, true)
		targets, err := router.Route(ctx, job)
		require.NoError(t, err, "secondary placement is left to reconciliation")
		assert.True(t, targets.Immediate)

		found, err := repos.Jobs.HasJob(ctx, storage.CollectionVerified, job.Id)
		require.NoError(t, err)
		assert.True(t, found)
		found, err = repos.Jobs.HasJob(ctx, storage.CollectionImmediate, job.Id)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("verified failure fails the route", func(t *testing.T) {
		router, err := NewRouter(&failingJobRepo{
			JobRepository: repos.Jobs,
			fail:          storage.CollectionVerified,
		}, nil)
		require.NoError(t, err)

		_, err = router.Route(ctx, routedJob(core.SkillLevelMedium, false))
		assert.Error(t, err)
	})

	t.Run("re-routing is idempotent", func(t *testing.T) {
		job := routedJob(core.SkillLevelZero, true)
		_, err := router.Route(ctx, job)
		require.NoError(t, err)
		_, err = router.Route(ctx, job)
		require.NoError(t, err)

		count, err := repos.Jobs.CountJobs(ctx, storage.CollectionImmediate)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
