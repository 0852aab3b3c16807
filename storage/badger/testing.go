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


package badger

// Repositories bundles every repository over one shared backend.
type Repositories struct {
	Backend    *Backend
	Jobs       *JobRepository
	Pending    *PendingRepository
	Profiles   *ProfileRepository
	RunLogs    *RunLogRepository
	Engagement *EngagementRepository
	EmbedCache *EmbeddingCacheRepository
	Locks      *LockRepository
}

// NewRepositories opens a backend at path and wires all repositories to it.
// Caller must Close the bundle when done.
func NewRepositories(path string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Backend:    backend,
		Jobs:       NewJobRepository(backend),
		Pending:    NewPendingRepository(backend),
		Profiles:   NewProfileRepository(backend),
		RunLogs:    NewRunLogRepository(backend),
		Engagement: NewEngagementRepository(backend),
		EmbedCache: NewEmbeddingCacheRepository(backend),
		Locks:      NewLockRepository(backend),
	}, nil
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the bundle when done.
func NewMemoryRepositories() (*Repositories, error) {
	return NewRepositories("", true)
}

// Close closes the shared backend.
func (r *Repositories) Close() error {
	return r.Backend.Close()
}
