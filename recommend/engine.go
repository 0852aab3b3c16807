package recommend

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gophora/scout/core"
	"github.com/gophora/scout/ingestion"
	"github.com/gophora/scout/storage"
)

const (
	// DefaultMinSimilarity is the search relevance floor. Results below it
	// are noise more often than matches.
	DefaultMinSimilarity = 0.5

	// DefaultTrendingWindow is the rolling window for engagement ranking.
	DefaultTrendingWindow = 7 * 24 * time.Hour
)

// Engine ranks approved jobs for users and queries. It only reads the job
// collections; the pipeline is the single writer.
type Engine struct {
	jobs           storage.JobRepository
	profiles       storage.ProfileRepository
	engagement     storage.EngagementRepository
	embedder       *ingestion.Embedder
	minSimilarity  float32
	trendingWindow time.Duration
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithMinSimilarity sets the search similarity floor.
// Default is DefaultMinSimilarity.
func WithMinSimilarity(min float32) Option {
	return func(e *Engine) error {
		e.minSimilarity = min
		return nil
	}
}

// WithTrendingWindow sets the rolling engagement window.
// Default is DefaultTrendingWindow.
func WithTrendingWindow(window time.Duration) Option {
	return func(e *Engine) error {
		if window > 0 {
			e.trendingWindow = window
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a recommendation engine.
func NewEngine(
	jobs storage.JobRepository,
	profiles storage.ProfileRepository,
	engagement storage.EngagementRepository,
	embedder *ingestion.Embedder,
	opts ...Option,
) (*Engine, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if profiles == nil {
		return nil, ErrProfileRepositoryRequired
	}
	if engagement == nil {
		return nil, ErrEngagementRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		jobs:           jobs,
		profiles:       profiles,
		engagement:     engagement,
		embedder:       embedder,
		minSimilarity:  DefaultMinSimilarity,
		trendingWindow: DefaultTrendingWindow,
		logger:         slog.Default().With("component", "recommend"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ImmediateJobs returns the immediate collection sorted by trust score then
// recency. The list is identical for every user; no profile is consulted.
func (e *Engine) ImmediateJobs(ctx context.Context, limit int) ([]*core.Job, error) {
	jobs, err := e.jobs.ListJobs(ctx, storage.CollectionImmediate, 0)
	if err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].Validation.TrustScore != jobs[j].Validation.TrustScore {
			return jobs[i].Validation.TrustScore > jobs[j].Validation.TrustScore
		}
		return jobs[i].ApprovedAt.After(jobs[j].ApprovedAt)
	})

	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// ForUser ranks skill-based jobs against a user's profile embedding. Jobs
// whose listed required skills share nothing with the user's skills are
// dropped no matter how similar the embeddings look; similarity is necessary
// but not sufficient. Jobs that list no skills at all pass the filter.
func (e *Engine) ForUser(ctx context.Context, userID string, limit int) ([]*core.SearchResult, error) {
	profile, err := e.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(profile.Vector) == 0 {
		if err := e.embedder.EmbedProfile(ctx, profile); err != nil {
			return nil, err
		}
		// Persist the derived vector so the next call skips the embed.
		if err := e.profiles.PutProfile(ctx, profile); err != nil {
			e.logger.Warn("failed to persist profile vector", "user", userID, "err", err)
		}
	}

	// Floor of -1 admits every job; the skill-overlap filter below is the
	// only exclusion here, ranking does the rest.
	matches, err := e.jobs.FindSimilar(ctx, storage.CollectionSkillBased, profile.Vector, -1, 0)
	if err != nil {
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		required := match.Job.Validation.RequiredSkills
		if len(required) > 0 && SkillOverlap(profile.Skills, required) == 0 {
			continue
		}
		results = append(results, match)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Job.Validation.TrustScore > results[j].Job.Validation.TrustScore
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Search ranks all verified jobs against a free-text query, returning only
// results at or above the similarity floor.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Error("error embedding search query", "query", query, "err", err)
		return nil, err
	}

	return e.jobs.FindSimilar(ctx, storage.CollectionVerified, vector, e.minSimilarity, limit)
}

// TrendingResult pairs a job with its engagement counts inside the window.
type TrendingResult struct {
	Job          *core.Job
	Views        uint64
	Applications uint64
}

// Engagement returns the combined signal the trending rank sorts on.
func (r *TrendingResult) Engagement() uint64 {
	return r.Views + r.Applications
}

// Trending ranks verified jobs by views plus applications within the rolling
// window, most engaged first, recency as tie-break. Jobs with no engagement
// in the window are omitted.
func (e *Engine) Trending(ctx context.Context, limit int) ([]*TrendingResult, error) {
	jobs, err := e.jobs.ListJobs(ctx, storage.CollectionVerified, 0)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().Add(-e.trendingWindow)
	results := make([]*TrendingResult, 0, len(jobs))
	for _, job := range jobs {
		views, applications, err := e.engagement.CountsSince(ctx, job.Id, since)
		if err != nil {
			return nil, err
		}
		if views+applications == 0 {
			continue
		}
		results = append(results, &TrendingResult{
			Job:          job,
			Views:        views,
			Applications: applications,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Engagement() != results[j].Engagement() {
			return results[i].Engagement() > results[j].Engagement()
		}
		return results[i].Job.ApprovedAt.After(results[j].Job.ApprovedAt)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// RecordView counts one view of a job toward today's engagement bucket.
func (e *Engine) RecordView(ctx context.Context, id core.ID) error {
	return e.engagement.IncrementViews(ctx, id, time.Now().UTC())
}

// RecordApplication counts one application toward today's engagement bucket.
func (e *Engine) RecordApplication(ctx context.Context, id core.ID) error {
	return e.engagement.IncrementApplications(ctx, id, time.Now().UTC())
}
