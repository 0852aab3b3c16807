package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
)

const (
	routeRetryInterval = 500 * time.Millisecond
	routeMaxRetries    = 2
)

// RouteResult records where a job landed.
type RouteResult struct {
	Immediate  bool
	SkillBased bool
}

// Router places an approved job into its collections. Every approved job goes
// into the verified collection; immediate holds jobs startable right away
// with zero or low skill; everything else goes into skill-based. The
// immediate list is profile-independent, so membership never looks at users.
type Router struct {
	jobs   storage.JobRepository
	logger *slog.Logger
}

// NewRouter creates a collection router.
func NewRouter(jobs storage.JobRepository, logger *slog.Logger) (*Router, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		jobs:   jobs,
		logger: logger.With("component", "router"),
	}, nil
}

// Targets computes the collections a job belongs in beyond verified.
func Targets(job *core.Job) RouteResult {
	v := job.Validation
	immediate := v.ImmediateAvailability &&
		(v.SkillLevel == core.SkillLevelZero || v.SkillLevel == core.SkillLevelLow)
	return RouteResult{
		Immediate:  immediate,
		SkillBased: !immediate,
	}
}

// Route writes the job into the verified collection and its secondary
// collection. Upserts are keyed by dedup hash, so re-routing after a partial
// failure converges instead of duplicating. Each write is retried briefly.
// Only the verified write failing fails the route, since verified is the
// system of record: once the job is in verified it is approved for good, and
// a missing secondary placement is repaired by the reconcile pass rather
// than by running validation again.
func (r *Router) Route(ctx context.Context, job *core.Job) (RouteResult, error) {
	targets := Targets(job)

	if err := r.upsert(ctx, storage.CollectionVerified, job); err != nil {
		return RouteResult{}, err
	}

	if targets.Immediate {
		if err := r.upsert(ctx, storage.CollectionImmediate, job); err != nil {
			r.logger.Error("immediate placement failed, left to reconciliation",
				"job", job.Id, "err", err)
		}
	}
	if targets.SkillBased {
		if err := r.upsert(ctx, storage.CollectionSkillBased, job); err != nil {
			r.logger.Error("skill-based placement failed, left to reconciliation",
				"job", job.Id, "err", err)
		}
	}

	r.logger.Debug("routed job",
		"job", job.Id,
		"immediate", targets.Immediate,
		"skillBased", targets.SkillBased)
	return targets, nil
}

func (r *Router) upsert(ctx context.Context, collection storage.Collection, job *core.Job) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = routeRetryInterval
	return backoff.Retry(func() error {
		return r.jobs.UpsertJobs(ctx, collection, job)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, routeMaxRetries), ctx))
}
