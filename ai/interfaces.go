package ai

import (
	"context"

	"github.com/gophora/scout/core"
)

// Embedder generates vector embeddings from text for semantic similarity
// ranking. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. Batch processing bounds the external call count. The returned
	// slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Validator scores and categorizes a job posting.
// Implementations must be thread-safe for concurrent use.
//
// Error contract: a quota-exhausted upstream yields an error matching
// ErrQuotaExceeded; output that cannot be parsed into the ValidationResult
// schema after the implementation's own retries yields a *ParseError. Callers
// branch on these to decide between pausing the run and quarantining one
// posting.
type Validator interface {
	// ValidatePosting analyzes a posting and returns its structured
	// legitimacy, category, and metadata assessment.
	ValidatePosting(ctx context.Context, posting *core.RawPosting) (*core.ValidationResult, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. The secondary validator is optional; when present it is used
// for conservative cross-checking.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Validator returns the primary posting validator.
	Validator() Validator

	// CrossValidator returns the secondary validator, or nil if none is
	// configured.
	CrossValidator() Validator

	// Close releases resources held by the provider and its services.
	Close() error
}
