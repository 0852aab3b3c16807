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
	"fmt"
	"strings"
)

var (
	// ErrQuotaExceeded indicates the upstream AI service rejected the call
	// for quota or rate-limit reasons. The pipeline pauses remaining
	// validation work for the run when it sees this.
	ErrQuotaExceeded = errors.New("ai quota exceeded")

	// ErrEmptyResponse indicates the model returned no choices.
	ErrEmptyResponse = errors.New("empty model response")
)

// ParseError indicates model output that could not be parsed into the
// expected schema after retries. It carries the raw response for the
// dead-letter log.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// WrapQuota classifies an upstream call error, mapping rate-limit and quota
// responses onto ErrQuotaExceeded so callers can branch on it. Other errors
// pass through unchanged.
func WrapQuota(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "quota", "rate limit", "rate_limit", "resource exhausted", "too many requests"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
		}
	}
	return err
}
