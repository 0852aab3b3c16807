package scrape

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
	storagebadger "github.com/gophora/scout/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter is a scripted source for orchestrator tests.
type fakeAdapter struct {
	name     string
	postings []*core.RawPosting
	err      error
	calls    atomic.Int32
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context) ([]*core.RawPosting, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.postings, nil
}

func posting(source, title, company string) *core.RawPosting {
	return &core.RawPosting{
		Source:      source,
		Title:       title,
		Company:     company,
		Location:    "Malmo",
		Description: "desc",
		FetchedAt:   time.Now().UTC(),
	}
}

func newTestOrchestrator(t *testing.T, registry *Registry, opts ...Option) (*Orchestrator, *storagebadger.Repositories) {
	t.Helper()
	repos, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	o, err := NewOrchestrator(registry, repos.Pending, repos.Jobs, repos.RunLogs, opts...)
	require.NoError(t, err)
	t.Cleanup(o.Release)
	return o, repos
}

func TestOrchestrator_Run(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeAdapter{
		name:     "alpha",
		postings: []*core.RawPosting{posting("alpha", "Courier", "Speedy"), posting("alpha", "Tutor", "Learnly")},
	}))
	require.NoError(t, registry.Register(&fakeAdapter{
		name:     "beta",
		postings: []*core.RawPosting{posting("beta", "Cleaner", "Shine")},
	}))

	o, repos := newTestOrchestrator(t, registry)
	ctx := context.Background()

	log, err := o.Run(ctx)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"alpha", "beta"}, log.SourcesAttempted)
	assert.Empty(t, log.SourcesFailed)
	assert.Equal(t, 3, log.RawCount)
	assert.Equal(t, 3, log.NewCount)
	assert.Equal(t, 0, log.DuplicateCount)

	pendings, err := repos.Pending.ListPendingByStatus(ctx, core.StatusScraped)
	require.NoError(t, err)
	assert.Len(t, pendings, 3)

	logs, err := repos.RunLogs.ListScrapeLogs(ctx, time.Time{}, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestOrchestrator_RunIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeAdapter{
		name:     "alpha",
		postings: []*core.RawPosting{posting("alpha", "Courier", "Speedy")},
	}))

	o, repos := newTestOrchestrator(t, registry)
	ctx := context.Background()

	_, err := o.Run(ctx)
	require.NoError(t, err)

	// Second run re-fetches the identical posting
	log, err := o.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, log.NewCount)
	assert.Equal(t, 1, log.DuplicateCount)

	pendings, err := repos.Pending.ListPendingByStatus(ctx, core.StatusScraped)
	require.NoError(t, err)
	assert.Len(t, pendings, 1)
}

func TestOrchestrator_DuplicateWithinBatch(t *testing.T) {
	registry := NewRegistry()
	// Both sources list the same opportunity with whitespace/case drift
	a := posting("shared", "Warehouse  Picker", "Nordlog")
	b := posting("shared", "warehouse picker", "NORDLOG")
	require.NoError(t, registry.Register(&fakeAdapter{name: "alpha", postings: []*core.RawPosting{a}}))
	require.NoError(t, registry.Register(&fakeAdapter{name: "beta", postings: []*core.RawPosting{b}}))

	o, _ := newTestOrchestrator(t, registry)

	log, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, log.NewCount)
	assert.Equal(t, 1, log.DuplicateCount)
}

func TestOrchestrator_FailedSourceIsIsolated(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeAdapter{
		name: "broken",
		err:  Permanent("broken", errors.New("bad credentials")),
	}))
	require.NoError(t, registry.Register(&fakeAdapter{
		name:     "healthy",
		postings: []*core.RawPosting{posting("healthy", "Courier", "Speedy")},
	}))

	o, _ := newTestOrchestrator(t, registry)

	log, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"broken"}, log.SourcesFailed)
	assert.Equal(t, 1, log.NewCount)
}

func TestOrchestrator_TransientFailureIsRetried(t *testing.T) {
	adapter := &fakeAdapter{
		name: "flaky",
		err:  Transient("flaky", errors.New("503")),
	}
	registry := NewRegistry()
	require.NoError(t, registry.Register(adapter))

	o, _ := newTestOrchestrator(t, registry, WithMaxRetries(1))

	log, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"flaky"}, log.SourcesFailed)
	// Initial attempt plus one retry
	assert.Equal(t, int32(2), adapter.calls.Load())
}

func TestOrchestrator_PermanentFailureIsNotRetried(t *testing.T) {
	adapter := &fakeAdapter{
		name: "rejected",
		err:  Permanent("rejected", errors.New("401")),
	}
	registry := NewRegistry()
	require.NoError(t, registry.Register(adapter))

	o, _ := newTestOrchestrator(t, registry, WithMaxRetries(3))

	_, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), adapter.calls.Load())
}

func TestOrchestrator_NoAdapters(t *testing.T) {
	o, _ := newTestOrchestrator(t, NewRegistry())
	_, err := o.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoAdapters)
}

func TestRegistry_DuplicateName(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeAdapter{name: "alpha"}))
	assert.ErrorIs(t, registry.Register(&fakeAdapter{name: "alpha"}), ErrDuplicateAdapter)
}

func TestOrchestrator_AlreadyVerifiedJobIsDuplicate(t *testing.T) {
	registry := NewRegistry()
	p := posting("alpha", "Courier", "Speedy")
	require.NoError(t, registry.Register(&fakeAdapter{name: "alpha", postings: []*core.RawPosting{p}}))

	o, repos := newTestOrchestrator(t, registry)
	ctx := context.Background()

	// The posting was approved on an earlier run and its pending record
	// cleaned up; only the verified document remains.
	job := &core.Job{RawPosting: *p}
	job.Id = p.Fingerprint()
	require.NoError(t, repos.Jobs.UpsertJobs(ctx, storage.CollectionVerified, job))

	log, err := o.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, log.NewCount)
	assert.Equal(t, 1, log.DuplicateCount)
}
