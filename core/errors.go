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

import "errors"

var (
	// ErrInvalidPosting indicates a raw posting that fails domain validation.
	ErrInvalidPosting = errors.New("invalid posting")

	// ErrEmptyTitle indicates a posting without a title.
	ErrEmptyTitle = errors.New("title is empty")

	// ErrEmptySource indicates a posting without a source name.
	ErrEmptySource = errors.New("source is empty")

	// ErrInvalidValidationResult indicates an AI result that fails schema rules.
	ErrInvalidValidationResult = errors.New("invalid validation result")

	// ErrTrustScoreOutOfRange indicates a trust score outside [0, 100].
	ErrTrustScoreOutOfRange = errors.New("trust score out of range")

	// ErrInvalidCategory indicates a category outside the known set.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidSkillLevel indicates a skill level outside the known set.
	ErrInvalidSkillLevel = errors.New("invalid skill level")

	// ErrInvalidProfile indicates a user profile that fails domain validation.
	ErrInvalidProfile = errors.New("invalid user profile")
)
