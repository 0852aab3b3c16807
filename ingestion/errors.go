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


package ingestion

import "errors"

var (
	// ErrPendingRepositoryRequired indicates a nil pending repository.
	ErrPendingRepositoryRequired = errors.New("pending repository is required")

	// ErrJobRepositoryRequired indicates a nil job repository.
	ErrJobRepositoryRequired = errors.New("job repository is required")

	// ErrRunLogRepositoryRequired indicates a nil run log repository.
	ErrRunLogRepositoryRequired = errors.New("run log repository is required")

	// ErrAIProviderRequired indicates a nil AI provider.
	ErrAIProviderRequired = errors.New("ai provider is required")

	// ErrEmbedderRequired indicates a nil embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrCacheRequired indicates a nil embedding cache repository.
	ErrCacheRequired = errors.New("embedding cache repository is required")
)
