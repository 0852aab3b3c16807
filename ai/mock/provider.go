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


package mock

import "github.com/gophora/scout/ai"

// Provider is a test double for ai.Provider.
// It aggregates mock embedder and validator instances.
type Provider struct {
	embedder       *Embedder
	validator      *Validator
	crossValidator *Validator
}

// NewProvider creates a new mock provider with default mock services and no
// cross-validator.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetEmbedder()/GetValidator() to access concrete types for assertions.
func NewProvider() ai.Provider {
	return &Provider{
		embedder:  NewEmbedder(),
		validator: NewValidator(),
	}
}

// NewProviderWithServices creates a mock provider with custom mock services.
// crossValidator may be nil to disable cross-validation.
func NewProviderWithServices(embedder *Embedder, validator, crossValidator *Validator) ai.Provider {
	return &Provider{
		embedder:       embedder,
		validator:      validator,
		crossValidator: crossValidator,
	}
}

// Embedder returns the mock embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Validator returns the mock primary validator.
func (p *Provider) Validator() ai.Validator {
	return p.validator
}

// CrossValidator returns the mock secondary validator, or nil when none was
// configured.
func (p *Provider) CrossValidator() ai.Validator {
	if p.crossValidator == nil {
		return nil
	}
	return p.crossValidator
}

// Close is a no-op for the mock provider.
func (p *Provider) Close() error {
	return nil
}

// GetEmbedder returns the underlying mock embedder for test assertions.
func (p *Provider) GetEmbedder() *Embedder {
	return p.embedder
}

// GetValidator returns the underlying mock validator for test assertions.
func (p *Provider) GetValidator() *Validator {
	return p.validator
}
