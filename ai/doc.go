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


// Package ai provides abstractions for the AI services used in Scout.
//
// This package defines interfaces for AI operations including text embeddings
// and job posting validation. It follows the dependency inversion principle,
// allowing the ingestion pipeline and recommendation engine to depend on
// abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Validator: Scores and categorizes job postings
//   - Provider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.Provider
//
// Test utility constructors (mock.NewEmbedder, mock.NewValidator) return
// CONCRETE types to enable test assertions and behavior injection via the
// mock's public fields and methods (CallCount, ValidateFunc, Reset, etc.).
//
// # Error Contract
//
// Validator implementations distinguish two failure families so callers can
// react differently:
//
//   - errors.Is(err, ErrQuotaExceeded): the upstream service is rate limiting
//     or out of quota. The pipeline pauses the remainder of the run.
//   - IsParseError(err): the model produced output that does not fit the
//     expected schema even after retries. The single posting is quarantined
//     and retried on a later run.
package ai
