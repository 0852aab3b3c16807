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


package openai

import (
	"log/slog"

	"github.com/gophora/scout/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages embedder and validator instances, including the optional
// secondary validator used for cross-checking.
type Provider struct {
	config         *ai.Config
	embedder       *Embedder
	validator      *Validator
	crossValidator *Validator
	logger         *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create embedder (using internal constructor for concrete type)
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	// Create primary validator (using internal constructor for concrete type)
	validator, err := newValidator(config.ValidatorHost, config.ValidatorModel, "openai-validator")
	if err != nil {
		return nil, err
	}

	var cross *Validator
	if config.CrossValidationEnabled() {
		cross, err = newValidator(config.CrossValidatorHost, config.CrossValidatorModel, "openai-cross-validator")
		if err != nil {
			return nil, err
		}
	}

	return &Provider{
		config:         config,
		embedder:       embedder,
		validator:      validator,
		crossValidator: cross,
		logger:         slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Validator returns the primary posting validator.
func (p *Provider) Validator() ai.Validator {
	return p.validator
}

// CrossValidator returns the secondary validator, or nil when cross-validation
// is not configured.
func (p *Provider) CrossValidator() ai.Validator {
	if p.crossValidator == nil {
		return nil
	}
	return p.crossValidator
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
