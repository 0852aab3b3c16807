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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gophora/scout/ai"
	"github.com/gophora/scout/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Validator implements ai.Validator using OpenAI-compatible chat APIs.
type Validator struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

// validationPayload is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type validationPayload struct {
	IsLegitimate          bool     `json:"is_legitimate"`
	TrustScore            int      `json:"trust_score"`
	RedFlags              []string `json:"red_flags"`
	Category              string   `json:"category"`
	SkillLevel            string   `json:"skill_level"`
	ImmediateAvailability bool     `json:"immediate_availability"`
	PaymentTimeframe      string   `json:"payment_timeframe"`
	RequiredSkills        []string `json:"required_skills"`
	SalaryRange           string   `json:"salary_range"`
	ExperienceLevel       string   `json:"experience_level"`
	TimeCommitment        string   `json:"time_commitment"`
	Deadline              string   `json:"deadline"`
}

// newValidator is an internal constructor that returns the concrete type.
// Used by Provider to manage primary and cross-check instances.
func newValidator(host, model, component string) (*Validator, error) {
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken("none"),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}

	return &Validator{
		client: client,
		model:  model,
		logger: slog.Default().With("component", component),
	}, nil
}

// NewValidator creates a new posting validator using the provided
// configuration.
//
// Returns ai.Validator interface to enforce abstraction.
func NewValidator(config *ai.Config) (ai.Validator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newValidator(config.ValidatorHost, config.ValidatorModel, "openai-validator")
}

// ValidatePosting analyzes a posting with the LLM and returns its structured
// assessment. Upstream quota errors are surfaced as ai.ErrQuotaExceeded;
// responses that cannot be parsed after retries become *ai.ParseError.
func (v *Validator) ValidatePosting(ctx context.Context, posting *core.RawPosting) (*core.ValidationResult, error) {
	if err := core.ValidatePosting(posting); err != nil {
		return nil, err
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildValidationPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildPostingMessage(posting)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var lastErr error
	var lastRaw string
	for attempt := 0; attempt < 3; attempt++ {
		response, err := v.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			v.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, ai.WrapQuota(err)
		}

		if len(response.Choices) < 1 {
			lastErr = ai.ErrEmptyResponse
			lastRaw = ""
			v.logger.Warn("no choices returned from model", "attempt", attempt+1)
			continue
		}

		result, err := parseValidationResponse(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			lastRaw = response.Choices[0].Content
			v.logger.Warn("error parsing validator response",
				"attempt", attempt+1,
				"posting", posting.Id,
				"err", err)
			continue
		}

		v.logger.Debug("validated posting",
			"posting", posting.Id,
			"legitimate", result.IsLegitimate,
			"trust", result.TrustScore,
			"flags", len(result.RedFlags))
		return result, nil
	}

	v.logger.Error("failed to parse validator response after retries",
		"posting", posting.Id, "err", lastErr)
	return nil, &ai.ParseError{Raw: lastRaw, Err: lastErr}
}

// parseValidationResponse turns a raw model response into a checked
// ValidationResult. It strips markdown fences, applies light JSON repair, and
// normalizes the category and skill level vocabularies before validating
// ranges.
func parseValidationResponse(raw string) (*core.ValidationResult, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	text = repairJSON(text)

	var payload validationPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, err
	}

	result := &core.ValidationResult{
		IsLegitimate:          payload.IsLegitimate,
		TrustScore:            payload.TrustScore,
		RedFlags:              normalizeFlags(payload.RedFlags),
		Category:              normalizeCategory(payload.Category),
		SkillLevel:            normalizeSkillLevel(payload.SkillLevel),
		ImmediateAvailability: payload.ImmediateAvailability,
		PaymentTimeframe:      strings.TrimSpace(payload.PaymentTimeframe),
		RequiredSkills:        normalizeFlags(payload.RequiredSkills),
		SalaryRange:           strings.TrimSpace(payload.SalaryRange),
		ExperienceLevel:       strings.TrimSpace(payload.ExperienceLevel),
		TimeCommitment:        strings.TrimSpace(payload.TimeCommitment),
		Deadline:              strings.TrimSpace(payload.Deadline),
		ValidatedAt:           time.Now().UTC(),
	}

	if err := core.ValidateResult(result); err != nil {
		return nil, fmt.Errorf("model output failed schema checks: %w", err)
	}
	return result, nil
}

// normalizeCategory maps a model-supplied category onto the canonical
// vocabulary, tolerating case drift. Unknown values pass through unchanged so
// core.ValidateResult rejects them.
func normalizeCategory(s string) core.Category {
	trimmed := strings.TrimSpace(s)
	for _, c := range core.Categories {
		if strings.EqualFold(trimmed, string(c)) {
			return c
		}
	}
	return core.Category(trimmed)
}

// normalizeSkillLevel maps a model-supplied skill level onto the canonical
// vocabulary, tolerating case drift and the common "none" synonym for zero.
func normalizeSkillLevel(s string) core.SkillLevel {
	trimmed := strings.TrimSpace(s)
	if strings.EqualFold(trimmed, "none") {
		return core.SkillLevelZero
	}
	for _, l := range core.SkillLevels {
		if strings.EqualFold(trimmed, string(l)) {
			return l
		}
	}
	return core.SkillLevel(trimmed)
}

// normalizeFlags lowercases and trims string lists from the model, dropping
// empties.
func normalizeFlags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
