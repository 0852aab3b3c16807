package ingestion

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gophora/scout/ai"
	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
)

// Embedder wraps the AI embedder with a persistent content-hash cache. Text
// that was embedded once is never sent to the embedding service again, which
// matters because re-validation and reconciliation revisit unchanged jobs.
type Embedder struct {
	embedder ai.Embedder
	cache    storage.EmbeddingCacheRepository
	logger   *slog.Logger
}

// NewEmbedder creates a caching embedder.
func NewEmbedder(embedder ai.Embedder, cache storage.EmbeddingCacheRepository, logger *slog.Logger) (*Embedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedder{
		embedder: embedder,
		cache:    cache,
		logger:   logger.With("component", "embedder"),
	}, nil
}

// EmbedJob populates job.Vector from its embedding text, unit-normalized.
func (e *Embedder) EmbedJob(ctx context.Context, job *core.Job) error {
	vector, err := e.embed(ctx, job.EmbeddingText())
	if err != nil {
		return err
	}
	job.Vector = vector
	return nil
}

// EmbedProfile populates profile.Vector from its skills text, unit-normalized.
func (e *Embedder) EmbedProfile(ctx context.Context, profile *core.UserProfile) error {
	vector, err := e.embed(ctx, profile.SkillsText())
	if err != nil {
		return err
	}
	profile.Vector = vector
	return nil
}

// EmbedText returns the unit-normalized vector for free text, such as a
// search query.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

// EmbedJobs populates vectors for a batch. Cache hits are filled locally and
// only the misses go out in one batched call.
func (e *Embedder) EmbedJobs(ctx context.Context, jobs []*core.Job) error {
	missTexts := make([]string, 0, len(jobs))
	missIdx := make([]int, 0, len(jobs))

	for i, job := range jobs {
		text := job.EmbeddingText()
		hash := core.IDFromContent(text)
		vector, err := e.cache.GetVector(ctx, hash)
		if err == nil {
			job.Vector = vector
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return nil
	}

	vectors, err := e.embedder.EmbedTexts(ctx, missTexts)
	if err != nil {
		return err
	}
	if len(vectors) != len(missTexts) {
		return errors.New("embedder returned wrong batch size")
	}

	for j, i := range missIdx {
		vector := core.Normalize(vectors[j])
		jobs[i].Vector = vector
		hash := core.IDFromContent(missTexts[j])
		if err := e.cache.PutVector(ctx, hash, vector); err != nil {
			e.logger.Warn("failed to cache embedding", "err", err)
		}
	}
	return nil
}

// embed returns the normalized vector for text, consulting the cache first.
func (e *Embedder) embed(ctx context.Context, text string) ([]float32, error) {
	hash := core.IDFromContent(text)

	vector, err := e.cache.GetVector(ctx, hash)
	if err == nil {
		return vector, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	vector, err = e.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	vector = core.Normalize(vector)

	if err := e.cache.PutVector(ctx, hash, vector); err != nil {
		e.logger.Warn("failed to cache embedding", "err", err)
	}
	return vector, nil
}
