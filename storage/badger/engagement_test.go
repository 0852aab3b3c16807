package badger

import (
	"context"
	"testing"
	"time"

	"github.com/gophora/scout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementRepository_Counters(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	id := core.ID(77)
	now := time.Now().UTC()
	lastWeek := now.Add(-8 * 24 * time.Hour)

	// Two views today, one view last week, one application today
	require.NoError(t, repos.Engagement.IncrementViews(ctx, id, now))
	require.NoError(t, repos.Engagement.IncrementViews(ctx, id, now))
	require.NoError(t, repos.Engagement.IncrementViews(ctx, id, lastWeek))
	require.NoError(t, repos.Engagement.IncrementApplications(ctx, id, now))

	t.Run("seven day window excludes old bucket", func(t *testing.T) {
		views, apps, err := repos.Engagement.CountsSince(ctx, id, now.Add(-7*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, uint64(2), views)
		assert.Equal(t, uint64(1), apps)
	})

	t.Run("wider window includes everything", func(t *testing.T) {
		views, apps, err := repos.Engagement.CountsSince(ctx, id, now.Add(-30*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, uint64(3), views)
		assert.Equal(t, uint64(1), apps)
	})

	t.Run("unknown job has zero counts", func(t *testing.T) {
		views, apps, err := repos.Engagement.CountsSince(ctx, core.ID(999), now.Add(-7*24*time.Hour))
		require.NoError(t, err)
		assert.Zero(t, views)
		assert.Zero(t, apps)
	})
}

func TestEmbeddingCacheRepository(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	hash := core.IDFromContent("courier malmo")
	vec := []float32{0.6, 0.8}

	_, err := repos.EmbedCache.GetVector(ctx, hash)
	assert.Error(t, err, "miss before put")

	require.NoError(t, repos.EmbedCache.PutVector(ctx, hash, vec))

	got, err := repos.EmbedCache.GetVector(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, vec, got)
}
