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


package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gophora/scout/ai"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
	"github.com/panjf2000/ants/v2"
)

// DefaultMaxQuarantineAttempts is the ceiling on validation retries for a
// posting that keeps producing unusable model output. At the ceiling the
// posting is rejected permanently.
const DefaultMaxQuarantineAttempts = 3

// Pipeline validates pending postings, embeds the approved ones, and routes
// them into their collections. Postings are processed concurrently; a quota
// error from the AI service pauses the remainder of the run instead of
// burning the whole backlog.
type Pipeline struct {
	pending     storage.PendingRepository
	runLogs     storage.RunLogRepository
	provider    ai.Provider
	embedder    *Embedder
	router      *Router
	policy      ApprovalPolicy
	pool        *ants.Pool
	maxAttempts int
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent validation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithApprovalPolicy overrides the default approval policy.
func WithApprovalPolicy(policy ApprovalPolicy) Option {
	return func(p *Pipeline) error {
		p.policy = policy
		return nil
	}
}

// WithMaxQuarantineAttempts overrides the quarantine retry ceiling.
func WithMaxQuarantineAttempts(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.maxAttempts = n
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a validation pipeline.
func NewPipeline(
	pending storage.PendingRepository,
	runLogs storage.RunLogRepository,
	provider ai.Provider,
	embedder *Embedder,
	router *Router,
	opts ...Option,
) (*Pipeline, error) {
	if pending == nil {
		return nil, ErrPendingRepositoryRequired
	}
	if runLogs == nil {
		return nil, ErrRunLogRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if router == nil {
		return nil, ErrJobRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		pending:     pending,
		runLogs:     runLogs,
		provider:    provider,
		embedder:    embedder,
		router:      router,
		policy:      DefaultApprovalPolicy(),
		pool:        pool,
		maxAttempts: DefaultMaxQuarantineAttempts,
		logger:      slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release releases the worker pool. The pipeline must not be used after.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// ProcessPending validates every workable pending posting once. Scraped and
// quarantined postings are picked up; so are postings stranded in validating
// by a crashed run. The returned log is also appended to the run log
// repository.
func (p *Pipeline) ProcessPending(ctx context.Context) (*core.ValidationLog, error) {
	started := time.Now().UTC()

	postings, err := p.pending.ListPendingByStatus(ctx,
		core.StatusScraped, core.StatusQuarantined, core.StatusValidating)
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		quotaHit atomic.Bool
	)
	log := &core.ValidationLog{StartedAt: started}

	for _, posting := range postings {
		posting := posting
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			p.processOne(ctx, posting, log, &mu, &quotaHit)
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Error("failed to submit posting", "posting", posting.Id, "err", submitErr)
		}
	}
	wg.Wait()

	log.Partial = quotaHit.Load()
	log.Duration = time.Since(started).Milliseconds()

	if err := p.runLogs.AppendValidationLog(ctx, log); err != nil {
		p.logger.Error("failed to append validation log", "err", err)
	}

	p.logger.Info("validation run finished",
		"validated", log.Validated,
		"approved", log.Approved,
		"rejected", log.Rejected,
		"quarantined", log.Quarantined,
		"partial", log.Partial,
		"millis", log.Duration)
	return log, nil
}

// processOne drives one posting through validate, approve, embed, route.
func (p *Pipeline) processOne(ctx context.Context, posting *core.PendingPosting, log *core.ValidationLog, mu *sync.Mutex, quotaHit *atomic.Bool) {
	// Quota exhaustion pauses the rest of the run; untouched postings
	// keep their status and are picked up next time.
	if quotaHit.Load() {
		return
	}

	posting.Status = core.StatusValidating
	if err := p.pending.PutPending(ctx, posting); err != nil {
		p.logger.Error("failed to mark posting validating", "posting", posting.Id, "err", err)
		return
	}

	result, err := p.validate(ctx, posting)
	if err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) {
			quotaHit.Store(true)
			p.logger.Warn("quota exhausted, pausing run", "posting", posting.Id)
			p.park(ctx, posting)
			return
		}
		p.quarantine(ctx, posting, err, log, mu)
		return
	}

	if !p.policy.Approve(result) {
		posting.Status = core.StatusRejected
		posting.LastError = ""
		if err := p.pending.PutPending(ctx, posting); err != nil {
			p.logger.Error("failed to persist rejection", "posting", posting.Id, "err", err)
			return
		}
		mu.Lock()
		log.Validated++
		log.Rejected++
		mu.Unlock()
		return
	}

	job := &core.Job{
		RawPosting: posting.RawPosting,
		Validation: *result,
		ApprovedAt: time.Now().UTC(),
	}

	if err := p.embedder.EmbedJob(ctx, job); err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) {
			quotaHit.Store(true)
		}
		p.logger.Error("embedding failed, posting stays pending", "posting", posting.Id, "err", err)
		p.park(ctx, posting)
		return
	}

	targets, err := p.router.Route(ctx, job)
	if err != nil {
		p.logger.Error("routing failed, posting stays pending", "posting", posting.Id, "err", err)
		p.park(ctx, posting)
		return
	}

	// The verified document now carries the dedup identity; the pending
	// record has done its job.
	if err := p.pending.DeletePending(ctx, posting.Id); err != nil {
		p.logger.Error("failed to delete pending record", "posting", posting.Id, "err", err)
	}

	mu.Lock()
	log.Validated++
	log.Approved++
	if targets.Immediate {
		log.Immediate++
	}
	if targets.SkillBased {
		log.SkillBased++
	}
	mu.Unlock()
}

// validate runs the primary validator and, when configured, the cross-check.
// A failing cross-check falls back to the primary verdict; a quota error from
// either propagates.
func (p *Pipeline) validate(ctx context.Context, posting *core.PendingPosting) (*core.ValidationResult, error) {
	primary, err := p.provider.Validator().ValidatePosting(ctx, &posting.RawPosting)
	if err != nil {
		return nil, err
	}

	cross := p.provider.CrossValidator()
	if cross == nil {
		return primary, nil
	}

	secondary, err := cross.ValidatePosting(ctx, &posting.RawPosting)
	if err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) {
			return nil, err
		}
		p.logger.Warn("cross-validation failed, using primary verdict", "posting", posting.Id, "err", err)
		return primary, nil
	}
	return ConservativeMerge(primary, secondary), nil
}

// quarantine records a failed validation attempt. At the attempt ceiling the
// posting is rejected permanently instead of cycling forever.
func (p *Pipeline) quarantine(ctx context.Context, posting *core.PendingPosting, cause error, log *core.ValidationLog, mu *sync.Mutex) {
	posting.Attempts++
	posting.LastError = cause.Error()

	permanent := posting.Attempts >= p.maxAttempts
	if permanent {
		posting.Status = core.StatusRejectedPermanent
	} else {
		posting.Status = core.StatusQuarantined
	}

	if err := p.pending.PutPending(ctx, posting); err != nil {
		p.logger.Error("failed to persist quarantine", "posting", posting.Id, "err", err)
		return
	}

	p.logger.Warn("posting quarantined",
		"posting", posting.Id,
		"attempts", posting.Attempts,
		"permanent", permanent,
		"err", cause)

	mu.Lock()
	if permanent {
		log.Rejected++
	} else {
		log.Quarantined++
	}
	mu.Unlock()
}

// park returns a posting to its pre-run status after an infrastructure
// failure, without burning a quarantine attempt.
func (p *Pipeline) park(ctx context.Context, posting *core.PendingPosting) {
	if posting.Attempts > 0 {
		posting.Status = core.StatusQuarantined
	} else {
		posting.Status = core.StatusScraped
	}
	if err := p.pending.PutPending(ctx, posting); err != nil {
		p.logger.Error("failed to park posting", "posting", posting.Id, "err", err)
	}
}
