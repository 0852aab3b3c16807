package scout

import (
	"context"
	"testing"
	"time"

	"github.com/gophora/scout/ai/mock"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/scrape"
	"github.com/gophora/scout/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name     string
	postings []*core.RawPosting
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Fetch(ctx context.Context) ([]*core.RawPosting, error) {
	return a.postings, nil
}

func newTestSystem(t *testing.T, adapters ...scrape.SourceAdapter) *System {
	t.Helper()
	s, err := NewSystem("",
		WithInMemoryStorage(),
		WithAIProvider(mock.NewProvider()),
		WithAdapters(adapters...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sourcePosting(title string) *core.RawPosting {
	return &core.RawPosting{
		Source:      "stub",
		Title:       title,
		Company:     "Acme",
		Location:    "Remote",
		Description: "desc",
		FetchedAt:   time.Now().UTC(),
	}
}

func TestSystem_FullPipelineRun(t *testing.T) {
	adapter := &stubAdapter{name: "stub", postings: []*core.RawPosting{
		sourcePosting("Backend Engineer"),
		sourcePosting("Data Analyst"),
	}}
	s := newTestSystem(t, adapter)
	ctx := context.Background()

	require.NoError(t, s.RunPipeline(ctx))

	count, err := s.Repositories().Jobs.CountJobs(ctx, storage.CollectionVerified)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	status, err := s.Scheduler().Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.LastScraped)
	assert.Equal(t, 2, status.LastNew)
	assert.Equal(t, 2, status.LastApproved)
	assert.False(t, status.InProgress)
}

func TestSystem_SecondRunIsIdempotent(t *testing.T) {
	adapter := &stubAdapter{name: "stub", postings: []*core.RawPosting{
		sourcePosting("Backend Engineer"),
	}}
	s := newTestSystem(t, adapter)
	ctx := context.Background()

	require.NoError(t, s.RunPipeline(ctx))
	require.NoError(t, s.RunPipeline(ctx))

	count, err := s.Repositories().Jobs.CountJobs(ctx, storage.CollectionVerified)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "byte-identical content dedups across runs")

	status, err := s.Scheduler().Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.LastNew, "second run found nothing new")
}

func TestSystem_SearchAfterRun(t *testing.T) {
	adapter := &stubAdapter{name: "stub", postings: []*core.RawPosting{
		sourcePosting("Remote Python Data Entry"),
	}}
	s := newTestSystem(t, adapter)
	ctx := context.Background()

	require.NoError(t, s.RunPipeline(ctx))

	// The mock embedder is deterministic, so the exact title matches itself
	results, err := s.Engine().Search(ctx, "Remote Python Data Entry desc", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestSystem_ReconcilerAccessor(t *testing.T) {
	s := newTestSystem(t, &stubAdapter{name: "stub"})

	r, err := s.NewReconciler(nil, nil)
	require.NoError(t, err)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Checked)
}

func TestNewSystem_DuplicateAdapter(t *testing.T) {
	_, err := NewSystem("",
		WithInMemoryStorage(),
		WithAIProvider(mock.NewProvider()),
		WithAdapters(&stubAdapter{name: "stub"}, &stubAdapter{name: "stub"}),
	)
	assert.ErrorIs(t, err, scrape.ErrDuplicateAdapter)
}
