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


package scout

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gophora/scout/ai"
	"github.com/gophora/scout/ai/openai"
	"github.com/gophora/scout/ingestion"
	"github.com/gophora/scout/recommend"
	"github.com/gophora/scout/reconcile"
	"github.com/gophora/scout/scheduler"
	"github.com/gophora/scout/scrape"
	"github.com/gophora/scout/storage/badger"
)

// System wires the full pipeline: scrape orchestrator, validation pipeline,
// recommendation engine, and scheduler over one shared store and AI provider.
type System struct {
	repos        *badger.Repositories
	provider     ai.Provider
	registry     *scrape.Registry
	orchestrator *scrape.Orchestrator
	embedder     *ingestion.Embedder
	router       *ingestion.Router
	pipeline     *ingestion.Pipeline
	engine       *recommend.Engine
	scheduler    *scheduler.Scheduler
	logger       *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig      *ai.Config
	provider      ai.Provider
	inMemory      bool
	adapters      []scrape.SourceAdapter
	interval      time.Duration
	policy        *ingestion.ApprovalPolicy
	minSimilarity *float32
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(cfg *ai.Config) SystemOption {
	return func(o *systemOptions) {
		o.aiConfig = cfg
	}
}

// WithAIProvider injects a pre-built provider, bypassing WithAIConfig.
// Mostly useful for tests.
func WithAIProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage uses an in-memory store instead of the file path.
func WithInMemoryStorage() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// WithAdapters sets the job sources to scrape.
func WithAdapters(adapters ...scrape.SourceAdapter) SystemOption {
	return func(o *systemOptions) {
		o.adapters = append(o.adapters, adapters...)
	}
}

// WithRunInterval sets the scheduled pipeline interval.
// Default is scheduler.DefaultInterval.
func WithRunInterval(interval time.Duration) SystemOption {
	return func(o *systemOptions) {
		o.interval = interval
	}
}

// WithApprovalPolicy overrides the default approval policy, including the
// critical red-flag set.
func WithApprovalPolicy(policy ingestion.ApprovalPolicy) SystemOption {
	return func(o *systemOptions) {
		o.policy = &policy
	}
}

// WithMinSimilarity sets the semantic search similarity floor.
func WithMinSimilarity(min float32) SystemOption {
	return func(o *systemOptions) {
		o.minSimilarity = &min
	}
}

// NewSystem opens the store at filePath and wires every component.
// Caller must Close the system when done.
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
		interval: scheduler.DefaultInterval,
	}
	for _, opt := range opts {
		opt(options)
	}

	repos, err := badger.NewRepositories(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	s := &System{
		repos:    repos,
		provider: provider,
		registry: scrape.NewRegistry(),
		logger:   slog.Default().With("component", "system"),
	}

	for _, adapter := range options.adapters {
		if err := s.registry.Register(adapter); err != nil {
			s.teardown()
			return nil, err
		}
	}

	s.orchestrator, err = scrape.NewOrchestrator(s.registry, repos.Pending, repos.Jobs, repos.RunLogs)
	if err != nil {
		s.teardown()
		return nil, err
	}

	s.embedder, err = ingestion.NewEmbedder(provider.Embedder(), repos.EmbedCache, nil)
	if err != nil {
		s.teardown()
		return nil, err
	}

	s.router, err = ingestion.NewRouter(repos.Jobs, nil)
	if err != nil {
		s.teardown()
		return nil, err
	}

	pipelineOpts := []ingestion.Option{}
	if options.policy != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithApprovalPolicy(*options.policy))
	}
	s.pipeline, err = ingestion.NewPipeline(repos.Pending, repos.RunLogs, provider, s.embedder, s.router, pipelineOpts...)
	if err != nil {
		s.teardown()
		return nil, err
	}

	engineOpts := []recommend.Option{}
	if options.minSimilarity != nil {
		engineOpts = append(engineOpts, recommend.WithMinSimilarity(*options.minSimilarity))
	}
	s.engine, err = recommend.NewEngine(repos.Jobs, repos.Profiles, repos.Engagement, s.embedder, engineOpts...)
	if err != nil {
		s.teardown()
		return nil, err
	}

	s.scheduler, err = scheduler.New(s.runOnce, repos.Locks, repos.RunLogs,
		scheduler.WithInterval(options.interval))
	if err != nil {
		s.teardown()
		return nil, err
	}

	return s, nil
}

// RunPipeline triggers one full scrape-validate-route run under the run
// lock. Returns scheduler.ErrRunInProgress if a run is already executing.
func (s *System) RunPipeline(ctx context.Context) error {
	return s.scheduler.TriggerNow(ctx)
}

// runOnce is the scheduler's run function: scrape every source, then drive
// the validation pipeline over whatever is pending.
func (s *System) runOnce(ctx context.Context) (*scheduler.RunReport, error) {
	scrapeLog, err := s.orchestrator.Run(ctx)
	if err != nil {
		return nil, err
	}

	validationLog, err := s.pipeline.ProcessPending(ctx)
	if err != nil {
		return nil, err
	}

	return &scheduler.RunReport{
		Scraped:    scrapeLog.RawCount,
		New:        scrapeLog.NewCount,
		Approved:   validationLog.Approved,
		Immediate:  validationLog.Immediate,
		SkillBased: validationLog.SkillBased,
		Partial:    validationLog.Partial,
	}, nil
}

// Engine returns the recommendation engine.
func (s *System) Engine() *recommend.Engine {
	return s.engine
}

// Scheduler returns the run scheduler.
func (s *System) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

// Repositories returns the underlying repository bundle.
func (s *System) Repositories() *badger.Repositories {
	return s.repos
}

// NewReconciler creates a placement reconciler over the system's store.
func (s *System) NewReconciler(config *reconcile.Config, progress io.Writer) (*reconcile.Reconciler, error) {
	return reconcile.NewReconciler(s.repos.Jobs, config, progress)
}

// NewReembedder creates a reembedder over the system's store and embedder.
func (s *System) NewReembedder(config *reconcile.Config, progress io.Writer) (*reconcile.Reembedder, error) {
	return reconcile.NewReembedder(s.repos.Jobs, s.provider.Embedder(), s.repos.EmbedCache, config, progress)
}

// Close stops the scheduler and releases every component, store last.
func (s *System) Close() error {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return s.teardown()
}

func (s *System) teardown() error {
	if s.pipeline != nil {
		s.pipeline.Release()
	}
	if s.orchestrator != nil {
		s.orchestrator.Release()
	}
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
		}
	}
	if err := s.repos.Close(); err != nil {
		s.logger.Error("error closing storage backend", "err", err)
		return err
	}
	return nil
}
