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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// ValidatorHost is the base URL for the scoring/categorization service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	ValidatorHost string

	// ValidatorModel is the model identifier used for posting validation.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	ValidatorModel string

	// CrossValidatorHost is the base URL for the optional secondary model
	// used for conservative cross-checking. Empty disables cross-validation.
	CrossValidatorHost string

	// CrossValidatorModel is the model identifier for cross-validation.
	CrossValidatorModel string

	// EmbeddingHost is the base URL for the embedding service API.
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// EmbeddingDim is the expected embedding dimension, fixed per deployment.
	// Default: 768
	EmbeddingDim int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithValidatorHost sets the validation service host URL.
func WithValidatorHost(host string) ConfigOption {
	return func(c *Config) {
		c.ValidatorHost = host
	}
}

// WithValidatorModel sets the validation model identifier.
func WithValidatorModel(model string) ConfigOption {
	return func(c *Config) {
		c.ValidatorModel = model
	}
}

// WithCrossValidator sets the secondary validator host and model, enabling
// cross-validation.
func WithCrossValidator(host, model string) ConfigOption {
	return func(c *Config) {
		c.CrossValidatorHost = host
		c.CrossValidatorModel = model
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingDim sets the expected embedding dimension.
func WithEmbeddingDim(dim int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDim = dim
	}
}

// WithHost sets validator and embedding hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.ValidatorHost = host
		c.EmbeddingHost = host
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services. Cross-validation is off by default.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		ValidatorHost:  defaultHost,
		ValidatorModel: "qwen2.5:3b",
		EmbeddingHost:  defaultHost,
		EmbeddingModel: "embeddinggemma",
		EmbeddingDim:   768,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options. This is the recommended way to create a Config with custom
// settings.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. It
// automatically adds the /v1 suffix to hosts if missing, which is required by
// most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.ValidatorHost = normalizeHost(c.ValidatorHost)
	c.CrossValidatorHost = normalizeHost(c.CrossValidatorHost)
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// CrossValidationEnabled reports whether a secondary validator is configured.
func (c *Config) CrossValidationEnabled() bool {
	return c.CrossValidatorHost != "" && c.CrossValidatorModel != ""
}

// Validate checks that the configuration is valid and complete. It
// automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.ValidatorHost == "" {
		return errors.New("ai config: ValidatorHost is required")
	}
	if c.ValidatorModel == "" {
		return errors.New("ai config: ValidatorModel is required")
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.EmbeddingDim <= 0 {
		return errors.New("ai config: EmbeddingDim must be positive")
	}
	if c.CrossValidatorHost != "" && c.CrossValidatorModel == "" {
		return errors.New("ai config: CrossValidatorModel is required when CrossValidatorHost is set")
	}
	return nil
}
