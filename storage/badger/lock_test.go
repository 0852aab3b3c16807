package badger

import (
	"context"
	"testing"
	"time"

	"github.com/gophora/scout/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockRepository(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Locks.AcquireRunLock(ctx, time.Hour))

	t.Run("second acquire fails", func(t *testing.T) {
		err := repos.Locks.AcquireRunLock(ctx, time.Hour)
		assert.ErrorIs(t, err, storage.ErrLockHeld)
	})

	t.Run("release makes it available again", func(t *testing.T) {
		require.NoError(t, repos.Locks.ReleaseRunLock(ctx))
		assert.NoError(t, repos.Locks.AcquireRunLock(ctx, time.Hour))
	})

	t.Run("releasing an unheld lock is a no-op", func(t *testing.T) {
		require.NoError(t, repos.Locks.ReleaseRunLock(ctx))
		assert.NoError(t, repos.Locks.ReleaseRunLock(ctx))
	})
}

func TestLockRepository_TTLExpiry(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	// A lock abandoned by a crashed process expires with its TTL and can
	// be taken over without an explicit release.
	require.NoError(t, repos.Locks.AcquireRunLock(ctx, 50*time.Millisecond))

	assert.Eventually(t, func() bool {
		return repos.Locks.AcquireRunLock(ctx, time.Hour) == nil
	}, 2*time.Second, 25*time.Millisecond)
}
