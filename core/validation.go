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


package core

import (
	"fmt"
	"slices"
)

// ValidatePosting validates a RawPosting according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Source must not be empty
//
// NOT validated (may legitimately be missing from a source):
//   - Company, Location, Description, URL
//   - Id (recomputed from content by callers that need it)
func ValidatePosting(posting *RawPosting) error {
	if posting == nil {
		return fmt.Errorf("%w: posting is nil", ErrInvalidPosting)
	}

	if posting.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPosting, ErrEmptyTitle)
	}

	if posting.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPosting, ErrEmptySource)
	}

	return nil
}

// ValidateResult validates a ValidationResult against the schema the
// pipeline enforces on AI output. Fields the AI may omit (salary range,
// deadline, payment timeframe) are not checked.
func ValidateResult(result *ValidationResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidValidationResult)
	}

	if result.TrustScore < 0 || result.TrustScore > 100 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidValidationResult, ErrTrustScoreOutOfRange, result.TrustScore)
	}

	if err := ValidateCategory(result.Category); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValidationResult, err)
	}

	if err := ValidateSkillLevel(result.SkillLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValidationResult, err)
	}

	return nil
}

// ValidateCategory validates that a Category has a known value.
func ValidateCategory(category Category) error {
	if !slices.Contains(Categories, category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return nil
}

// ValidateSkillLevel validates that a SkillLevel has a known value.
func ValidateSkillLevel(level SkillLevel) error {
	if !slices.Contains(SkillLevels, level) {
		return fmt.Errorf("%w: %q", ErrInvalidSkillLevel, level)
	}
	return nil
}

// ValidateProfile validates a UserProfile according to domain rules.
func ValidateProfile(profile *UserProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}
	if profile.UserID == "" {
		return fmt.Errorf("%w: user id is empty", ErrInvalidProfile)
	}
	return nil
}
