// Package mock provides test double implementations of the AI service
// interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Validator,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic
// behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewProvider()
//	vec, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	validator := mock.NewValidator()
//	validator.ValidateFunc = func(ctx context.Context, p *core.RawPosting) (*core.ValidationResult, error) {
//	    return nil, ai.ErrQuotaExceeded
//	}
//
//	// Check call counts
//	count := validator.CallCount()
//
// # Default Behavior
//
//   - Embedder: returns deterministic unit vectors derived from a text hash,
//     so identical text always embeds identically and similarity math works
//   - Validator: approves everything as legitimate Work at trust 80
//   - Provider: aggregates mock embedder and validator, no cross-validator
package mock
