package mock

import (
	"context"
	"sync"
	"time"

	"github.com/gophora/scout/core"
)

// Validator is a test double for ai.Validator.
// It allows custom behavior injection via function fields.
type Validator struct {
	// ValidateFunc is called by ValidatePosting if set.
	// If nil, uses the default approve-everything behavior.
	ValidateFunc func(ctx context.Context, posting *core.RawPosting) (*core.ValidationResult, error)

	mu        sync.Mutex
	callCount int
	seen      []core.ID
}

// NewValidator creates a mock validator with default behavior.
// Returns the concrete type so tests can inject behavior and assert on calls.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePosting returns a canned legitimate assessment unless ValidateFunc
// is set.
func (m *Validator) ValidatePosting(ctx context.Context, posting *core.RawPosting) (*core.ValidationResult, error) {
	m.mu.Lock()
	m.callCount++
	if posting != nil {
		m.seen = append(m.seen, posting.Id)
	}
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, posting)
	}

	return &core.ValidationResult{
		IsLegitimate: true,
		TrustScore:   80,
		RedFlags:     []string{},
		Category:     core.CategoryWork,
		SkillLevel:   core.SkillLevelMedium,
		ValidatedAt:  time.Now().UTC(),
	}, nil
}

// CallCount returns the number of times ValidatePosting was called.
func (m *Validator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Seen returns the ids of postings passed to ValidatePosting, in call order.
func (m *Validator) Seen() []core.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.ID, len(m.seen))
	copy(out, m.seen)
	return out
}

// Reset clears the call count, seen list, and custom function.
func (m *Validator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.seen = nil
	m.ValidateFunc = nil
}
