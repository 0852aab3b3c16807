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


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/gophora/scout/core"
	"github.com/mus-format/mus-go/varint"
)

// Documents (jobs, pending postings, profiles, logs) are stored as JSON so
// they stay inspectable with badger tooling and tolerant of added fields.
// Counter values use MUS varints to keep the engagement buckets small.

// MarshalCount serializes a counter value to bytes.
func MarshalCount(n uint64) []byte {
	buf := make([]byte, varint.Uint64.Size(n))
	varint.Uint64.Marshal(n, buf)
	return buf
}

// UnmarshalCount deserializes a counter value from bytes.
func UnmarshalCount(data []byte) (uint64, error) {
	n, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return n, nil
}

// MarshalJob serializes a Job to bytes.
func MarshalJob(job *core.Job) ([]byte, error) {
	return marshalJSON(job)
}

// UnmarshalJob deserializes a Job from bytes.
func UnmarshalJob(data []byte) (*core.Job, error) {
	return unmarshalJSON[core.Job](data)
}

// MarshalPendingPosting serializes a PendingPosting to bytes.
func MarshalPendingPosting(posting *core.PendingPosting) ([]byte, error) {
	return marshalJSON(posting)
}

// UnmarshalPendingPosting deserializes a PendingPosting from bytes.
func UnmarshalPendingPosting(data []byte) (*core.PendingPosting, error) {
	return unmarshalJSON[core.PendingPosting](data)
}

// MarshalProfile serializes a UserProfile to bytes.
func MarshalProfile(profile *core.UserProfile) ([]byte, error) {
	return marshalJSON(profile)
}

// UnmarshalProfile deserializes a UserProfile from bytes.
func UnmarshalProfile(data []byte) (*core.UserProfile, error) {
	return unmarshalJSON[core.UserProfile](data)
}

// MarshalScrapeRunLog serializes a ScrapeRunLog to bytes.
func MarshalScrapeRunLog(log *core.ScrapeRunLog) ([]byte, error) {
	return marshalJSON(log)
}

// UnmarshalScrapeRunLog deserializes a ScrapeRunLog from bytes.
func UnmarshalScrapeRunLog(data []byte) (*core.ScrapeRunLog, error) {
	return unmarshalJSON[core.ScrapeRunLog](data)
}

// MarshalValidationLog serializes a ValidationLog to bytes.
func MarshalValidationLog(log *core.ValidationLog) ([]byte, error) {
	return marshalJSON(log)
}

// UnmarshalValidationLog deserializes a ValidationLog from bytes.
func UnmarshalValidationLog(data []byte) (*core.ValidationLog, error) {
	return unmarshalJSON[core.ValidationLog](data)
}

// MarshalRunStatus serializes a RunStatus to bytes.
func MarshalRunStatus(status *core.RunStatus) ([]byte, error) {
	return marshalJSON(status)
}

// UnmarshalRunStatus deserializes a RunStatus from bytes.
func UnmarshalRunStatus(data []byte) (*core.RunStatus, error) {
	return unmarshalJSON[core.RunStatus](data)
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(vector []float32) ([]byte, error) {
	return marshalJSON(&vector)
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	v, err := unmarshalJSON[[]float32](data)
	if err != nil {
		return nil, err
	}
	return *v, nil
}

func marshalJSON[T any](v *T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

func unmarshalJSON[T any](data []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &v, nil
}
