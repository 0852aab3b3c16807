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


package scheduler

import "errors"

var (
	// ErrRunInProgress is returned when a trigger overlaps a run that is
	// already executing. The trigger is a no-op; runs never queue.
	ErrRunInProgress = errors.New("pipeline run already running")

	// ErrRunFuncRequired is returned when a run function is not provided.
	ErrRunFuncRequired = errors.New("run function required")

	// ErrLockRepositoryRequired is returned when a lock repository is not provided.
	ErrLockRepositoryRequired = errors.New("lock repository required")

	// ErrRunLogRepositoryRequired is returned when a run log repository is not provided.
	ErrRunLogRepositoryRequired = errors.New("run log repository required")

	// ErrAlreadyStarted is returned when Start is called on a running scheduler.
	ErrAlreadyStarted = errors.New("scheduler already started")
)
