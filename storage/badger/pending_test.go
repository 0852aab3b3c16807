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

func makePending(title string, status core.PostingStatus) *core.PendingPosting {
	posting := core.RawPosting{
		Source:    "adzuna",
		Title:     title,
		Company:   "Acme",
		Location:  "Lund",
		FetchedAt: time.Now().UTC(),
	}
	posting.Id = posting.Fingerprint()
	return &core.PendingPosting{
		RawPosting: posting,
		Status:     status,
	}
}

func TestPendingRepository_PutGetDelete(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	p := makePending("Courier", core.StatusScraped)
	require.NoError(t, repos.Pending.PutPending(ctx, p))
	assert.False(t, p.UpdatedAt.IsZero(), "PutPending stamps UpdatedAt")

	got, err := repos.Pending.GetPending(ctx, p.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusScraped, got.Status)

	found, err := repos.Pending.HasPending(ctx, p.Id)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, repos.Pending.DeletePending(ctx, p.Id))

	_, err = repos.Pending.GetPending(ctx, p.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPendingRepository_ListByStatus(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	scraped := makePending("A", core.StatusScraped)
	quarantined := makePending("B", core.StatusQuarantined)
	rejected := makePending("C", core.StatusRejected)
	require.NoError(t, repos.Pending.PutPending(ctx, scraped, quarantined, rejected))

	work, err := repos.Pending.ListPendingByStatus(ctx, core.StatusScraped, core.StatusQuarantined)
	require.NoError(t, err)
	require.Len(t, work, 2)
	for _, p := range work {
		assert.NotEqual(t, core.StatusRejected, p.Status)
	}

	t.Run("no statuses is invalid", func(t *testing.T) {
		_, err := repos.Pending.ListPendingByStatus(ctx)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestPendingRepository_RejectedRecordsSurviveForDedup(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	p := makePending("Scammy gig", core.StatusScraped)
	require.NoError(t, repos.Pending.PutPending(ctx, p))

	p.Status = core.StatusRejected
	require.NoError(t, repos.Pending.PutPending(ctx, p))

	// A later scrape of the identical posting computes the same id and
	// finds the rejected record, so it is not re-ingested.
	refetched := makePending("Scammy gig", core.StatusScraped)
	found, err := repos.Pending.HasPending(ctx, refetched.Id)
	require.NoError(t, err)
	assert.True(t, found)
}
