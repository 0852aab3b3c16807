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


// Package reconcile provides offline maintenance passes over the job
// collections.
//
// The Reconciler re-derives immediate and skill-based placements from the
// verified collection, repairing gaps left by a crash between router writes
// and removing placements that no longer match the routing rule.
//
// The Reembedder recomputes every verified job's embedding, for use after an
// embedding model or dimension change, refreshing the secondary copies and
// the embedding cache as it goes.
//
// Both process in batches with retry and report progress to a writer.
package reconcile
