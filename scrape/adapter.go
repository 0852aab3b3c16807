package scrape

import (
	"context"

	"github.com/gophora/scout/core"
)

// SourceAdapter fetches raw postings from one external job source.
// Implementations must be safe for concurrent use; the orchestrator runs all
// adapters in parallel.
type SourceAdapter interface {
	// Name returns the stable source identifier recorded on every posting
	// fetched through this adapter.
	Name() string

	// Fetch retrieves the currently listed postings from the source.
	// Failures should be wrapped with Transient or Permanent so the
	// orchestrator knows whether to retry.
	Fetch(ctx context.Context) ([]*core.RawPosting, error)
}

// Registry holds the set of adapters a run fetches from. One failing source
// never blocks the others; the orchestrator isolates failures per adapter.
type Registry struct {
	adapters []SourceAdapter
	names    map[string]bool
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register adds an adapter. Registration order is fetch order.
func (r *Registry) Register(adapter SourceAdapter) error {
	if r.names[adapter.Name()] {
		return ErrDuplicateAdapter
	}
	r.names[adapter.Name()] = true
	r.adapters = append(r.adapters, adapter)
	return nil
}

// Adapters returns the registered adapters in registration order.
func (r *Registry) Adapters() []SourceAdapter {
	out := make([]SourceAdapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	return len(r.adapters)
}
