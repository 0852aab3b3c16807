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
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gophora/scout/ai"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/ingestion"
	"github.com/gophora/scout/storage"
)

// Reembedder recomputes embeddings for every verified job, for when the
// embedding model or dimension changes. It deliberately bypasses the
// embedding cache on read, since cached vectors from the old model are
// exactly what needs replacing, and overwrites the cache on write.
type Reembedder struct {
	jobs     storage.JobRepository
	embedder ai.Embedder
	cache    storage.EmbeddingCacheRepository
	config   *Config
	progress io.Writer
}

// NewReembedder creates a reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	jobs storage.JobRepository,
	embedder ai.Embedder,
	cache storage.EmbeddingCacheRepository,
	config *Config,
	progress io.Writer,
) (*Reembedder, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Reembedder{
		jobs:     jobs,
		embedder: embedder,
		cache:    cache,
		config:   config,
		progress: progress,
	}, nil
}

// Run reembeds all verified jobs in batches, updating the verified document,
// the secondary placement, and the embedding cache for each.
func (r *Reembedder) Run(ctx context.Context) error {
	all, err := r.jobs.ListJobs(ctx, storage.CollectionVerified, 0)
	if err != nil {
		return fmt.Errorf("failed to list verified jobs: %w", err)
	}

	if len(all) == 0 {
		fmt.Fprintf(r.progress, "No verified jobs to reembed\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d jobs (batch size: %d)\n",
		len(all), r.config.BatchSize)
	tracker := NewProgressTracker(r.progress, len(all), r.config.ReportInterval)
	tracker.Start()

	processed := 0
	for start := 0; start < len(all); start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > len(all) {
			end = len(all)
		}

		if err := r.processBatch(ctx, all[start:end]); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += end - start
		tracker.Update(processed)
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d jobs in %v (%.1f jobs/sec)\n",
		len(all), elapsed.Round(time.Second), float64(len(all))/elapsed.Seconds())
	return nil
}

func (r *Reembedder) processBatch(ctx context.Context, jobs []*core.Job) error {
	texts := make([]string, len(jobs))
	for i, job := range jobs {
		texts[i] = job.EmbeddingText()
	}

	var vectors [][]float32
	err := r.withRetry(ctx, func() error {
		var embedErr error
		vectors, embedErr = r.embedder.EmbedTexts(ctx, texts)
		return embedErr
	})
	if err != nil {
		return err
	}
	if len(vectors) != len(jobs) {
		return ErrBatchSizeMismatch
	}

	for i, job := range jobs {
		vector := core.Normalize(vectors[i])
		job.Vector = vector
		if err := r.cache.PutVector(ctx, core.IDFromContent(texts[i]), vector); err != nil {
			return fmt.Errorf("failed to update embedding cache for %d: %w", job.Id, err)
		}
	}

	if err := r.jobs.UpsertJobs(ctx, storage.CollectionVerified, jobs...); err != nil {
		return err
	}

	// Keep the secondary copies in step with the verified document
	for _, job := range jobs {
		targets := ingestion.Targets(job)
		collection := storage.CollectionSkillBased
		if targets.Immediate {
			collection = storage.CollectionImmediate
		}
		if err := r.jobs.UpsertJobs(ctx, collection, job); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reembedder) withRetry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.config.RetryDelay
	return backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(r.config.MaxRetries)), ctx))
}
