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


package scrape

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultConcurrency      = 8
	defaultPerSourceTimeout = 2 * time.Minute
	defaultMaxRetries       = 3
	retryInitialInterval    = 1 * time.Second
)

// Orchestrator fetches from every registered source, deduplicates the batch
// against itself and against storage, and persists new postings for the
// validation pipeline.
type Orchestrator struct {
	registry         *Registry
	pending          storage.PendingRepository
	jobs             storage.JobRepository
	runLogs          storage.RunLogRepository
	pool             *ants.Pool
	perSourceTimeout time.Duration
	maxRetries       uint64
	logger           *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithConcurrency sets the number of sources fetched in parallel.
// Default is 8.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) error {
		if n < 1 {
			n = 1
		}
		if o.pool != nil {
			o.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithPerSourceTimeout bounds how long a single source fetch may take,
// retries included. Default is 2 minutes.
func WithPerSourceTimeout(d time.Duration) Option {
	return func(o *Orchestrator) error {
		o.perSourceTimeout = d
		return nil
	}
}

// WithMaxRetries sets how many times a transient fetch failure is retried.
// Default is 3.
func WithMaxRetries(n uint64) Option {
	return func(o *Orchestrator) error {
		o.maxRetries = n
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a scrape orchestrator over the given registry.
func NewOrchestrator(
	registry *Registry,
	pending storage.PendingRepository,
	jobs storage.JobRepository,
	runLogs storage.RunLogRepository,
	opts ...Option,
) (*Orchestrator, error) {
	if pending == nil {
		return nil, ErrPendingRepositoryRequired
	}
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if runLogs == nil {
		return nil, ErrRunLogRepositoryRequired
	}

	pool, err := ants.NewPool(defaultConcurrency)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		registry:         registry,
		pending:          pending,
		jobs:             jobs,
		runLogs:          runLogs,
		pool:             pool,
		perSourceTimeout: defaultPerSourceTimeout,
		maxRetries:       defaultMaxRetries,
		logger:           slog.Default().With("component", "scrape-orchestrator"),
	}

	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	return o, nil
}

// Release releases the worker pool. The orchestrator must not be used after.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// Run fetches every source once and persists new postings with status
// scraped. A failing source is logged and skipped; the run fails only when
// storage does. The returned log is also appended to the run log repository.
func (o *Orchestrator) Run(ctx context.Context) (*core.ScrapeRunLog, error) {
	if o.registry.Len() == 0 {
		return nil, ErrNoAdapters
	}

	started := time.Now().UTC()
	log := &core.ScrapeRunLog{StartedAt: started}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		fetched  []*core.RawPosting
		failed   []string
		attempts []string
	)

	for _, adapter := range o.registry.Adapters() {
		adapter := adapter
		attempts = append(attempts, adapter.Name())

		wg.Add(1)
		submitErr := o.pool.Submit(func() {
			defer wg.Done()
			postings, err := o.fetchWithRetry(ctx, adapter)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.Error("source fetch failed", "source", adapter.Name(), "err", err)
				failed = append(failed, adapter.Name())
				return
			}
			o.logger.Info("source fetched", "source", adapter.Name(), "postings", len(postings))
			fetched = append(fetched, postings...)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			failed = append(failed, adapter.Name())
			mu.Unlock()
		}
	}
	wg.Wait()

	log.SourcesAttempted = attempts
	log.SourcesFailed = failed
	log.RawCount = len(fetched)

	newCount, dupCount, err := o.store(ctx, fetched)
	if err != nil {
		return nil, err
	}
	log.NewCount = newCount
	log.DuplicateCount = dupCount
	log.Duration = time.Since(started).Milliseconds()

	if err := o.runLogs.AppendScrapeLog(ctx, log); err != nil {
		o.logger.Error("failed to append scrape log", "err", err)
	}

	o.logger.Info("scrape run finished",
		"sources", len(attempts),
		"failed", len(failed),
		"raw", log.RawCount,
		"new", log.NewCount,
		"duplicates", log.DuplicateCount,
		"millis", log.Duration)
	return log, nil
}

// fetchWithRetry runs one adapter under the per-source timeout, retrying
// transient failures with exponential backoff and jitter.
func (o *Orchestrator) fetchWithRetry(ctx context.Context, adapter SourceAdapter) ([]*core.RawPosting, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.perSourceTimeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval
	policy.Multiplier = 2
	policy.RandomizationFactor = 0.2

	var postings []*core.RawPosting
	operation := func() error {
		var err error
		postings, err = adapter.Fetch(fetchCtx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		o.logger.Warn("transient fetch failure, will retry", "source", adapter.Name(), "err", err)
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, o.maxRetries), fetchCtx))
	if err != nil {
		return nil, err
	}
	return postings, nil
}

// store deduplicates the fetched batch and persists the new postings.
// A posting is a duplicate when the batch already contains its fingerprint,
// when a pending record exists (including rejected ones), or when the job is
// already in the verified collection.
func (o *Orchestrator) store(ctx context.Context, fetched []*core.RawPosting) (newCount, dupCount int, err error) {
	seen := make(map[core.ID]bool, len(fetched))

	for _, posting := range fetched {
		if err := core.ValidatePosting(posting); err != nil {
			o.logger.Warn("dropping malformed posting", "source", posting.Source, "err", err)
			continue
		}
		posting.Id = posting.Fingerprint()

		if seen[posting.Id] {
			dupCount++
			continue
		}
		seen[posting.Id] = true

		exists, err := o.pending.HasPending(ctx, posting.Id)
		if err != nil {
			return newCount, dupCount, err
		}
		if !exists {
			exists, err = o.jobs.HasJob(ctx, storage.CollectionVerified, posting.Id)
			if err != nil {
				return newCount, dupCount, err
			}
		}
		if exists {
			dupCount++
			continue
		}

		if posting.FetchedAt.IsZero() {
			posting.FetchedAt = time.Now().UTC()
		}
		pendingPosting := &core.PendingPosting{
			RawPosting: *posting,
			Status:     core.StatusScraped,
		}
		if err := o.pending.PutPending(ctx, pendingPosting); err != nil {
			return newCount, dupCount, err
		}
		newCount++
	}
	return newCount, dupCount, nil
}
