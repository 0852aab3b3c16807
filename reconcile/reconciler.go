// Copyright 2025 Gophora
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/ingestion"
	"github.com/gophora/scout/storage"
)

// Report summarizes one reconciliation pass.
type Report struct {
	Checked int
	Added   int
	Removed int
}

// Reconciler re-derives secondary collection placements from the verified
// collection. A crash between the router's verified write and its secondary
// write leaves a job without its immediate or skill-based copy; a stale
// placement can survive reprocessing. Both converge here.
type Reconciler struct {
	jobs     storage.JobRepository
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewReconciler creates a reconciler.
// progress: where to write progress output (typically os.Stderr)
func NewReconciler(jobs storage.JobRepository, config *Config, progress io.Writer) (*Reconciler, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Reconciler{
		jobs:     jobs,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "reconciler"),
	}, nil
}

// Run walks every verified job and fixes its secondary placements.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	all, err := r.jobs.ListJobs(ctx, storage.CollectionVerified, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified jobs: %w", err)
	}

	report := &Report{}
	if len(all) == 0 {
		fmt.Fprintf(r.progress, "No verified jobs to reconcile\n")
		return report, nil
	}

	fmt.Fprintf(r.progress, "Reconciling placements for %d verified jobs\n", len(all))
	tracker := NewProgressTracker(r.progress, len(all), r.config.ReportInterval)
	tracker.Start()

	for _, job := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		targets := ingestion.Targets(job)
		if err := r.syncPlacement(ctx, job, storage.CollectionImmediate, targets.Immediate, report); err != nil {
			return nil, err
		}
		if err := r.syncPlacement(ctx, job, storage.CollectionSkillBased, targets.SkillBased, report); err != nil {
			return nil, err
		}

		report.Checked++
		tracker.Update(report.Checked)
	}

	tracker.Finish()
	fmt.Fprintf(r.progress, "Reconciliation complete: %d checked, %d added, %d removed in %v\n",
		report.Checked, report.Added, report.Removed, tracker.Elapsed().Round(time.Second))
	return report, nil
}

// syncPlacement makes a single collection agree with the derived target.
func (r *Reconciler) syncPlacement(ctx context.Context, job *core.Job, collection storage.Collection, want bool, report *Report) error {
	has, err := r.jobs.HasJob(ctx, collection, job.Id)
	if err != nil {
		return err
	}

	switch {
	case want && !has:
		if err := r.withRetry(ctx, func() error {
			return r.jobs.UpsertJobs(ctx, collection, job)
		}); err != nil {
			return fmt.Errorf("failed to restore %s placement for %d: %w", collection, job.Id, err)
		}
		r.logger.Info("restored placement", "job", job.Id, "collection", collection)
		report.Added++
	case !want && has:
		if err := r.withRetry(ctx, func() error {
			return r.jobs.DeleteJobs(ctx, collection, job.Id)
		}); err != nil {
			return fmt.Errorf("failed to remove %s placement for %d: %w", collection, job.Id, err)
		}
		r.logger.Info("removed stale placement", "job", job.Id, "collection", collection)
		report.Removed++
	}
	return nil
}

func (r *Reconciler) withRetry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.config.RetryDelay
	return backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(r.config.MaxRetries)), ctx))
}
