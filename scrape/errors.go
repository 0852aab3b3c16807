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


package scrape

import (
	"errors"
	"fmt"
)

var (
	// ErrPendingRepositoryRequired indicates a nil pending repository.
	ErrPendingRepositoryRequired = errors.New("pending repository is required")

	// ErrJobRepositoryRequired indicates a nil job repository.
	ErrJobRepositoryRequired = errors.New("job repository is required")

	// ErrRunLogRepositoryRequired indicates a nil run log repository.
	ErrRunLogRepositoryRequired = errors.New("run log repository is required")

	// ErrNoAdapters indicates a run was requested with no registered sources.
	ErrNoAdapters = errors.New("no source adapters registered")

	// ErrDuplicateAdapter indicates two adapters registered the same name.
	ErrDuplicateAdapter = errors.New("adapter already registered")
)

// FetchError wraps a source fetch failure with its origin and whether a retry
// could plausibly succeed.
type FetchError struct {
	Source    string
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable fetch failure (timeouts, 5xx, transport
// errors).
func Transient(source string, err error) *FetchError {
	return &FetchError{Source: source, Transient: true, Err: err}
}

// Permanent wraps err as a non-retryable fetch failure (bad credentials,
// malformed responses, 4xx).
func Permanent(source string, err error) *FetchError {
	return &FetchError{Source: source, Transient: false, Err: err}
}

// IsTransient reports whether err is a retryable fetch failure.
func IsTransient(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Transient
	}
	return false
}
