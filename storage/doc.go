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


// Package storage defines the persistence abstractions for Scout.
//
// It declares repository interfaces for approved jobs (across the verified,
// immediate, and skill-based collections), pending postings in the validation
// state machine, user profiles, run logs, engagement counters, the embedding
// cache, and the run lock. Concrete implementations live in sub-packages;
// storage/badger provides the embedded BadgerDB backend.
//
// # Collections
//
// The verified collection is the system of record for approved jobs. The
// immediate and skill-based collections are projections of it, maintained by
// the ingestion router and repairable by reconciliation. All three key jobs
// by the posting's dedup hash, which makes every upsert idempotent.
//
// # Serialization
//
// Documents are stored as JSON; small fixed values such as ids and counters
// use MUS varints. See serialization.go.
//
// # Error Handling
//
// Lookups for missing records return ErrNotFound. Callers are expected to
// branch with errors.Is rather than string matching.
package storage
