package openai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gophora/scout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodResponse = `{
  "is_legitimate": true,
  "trust_score": 78,
  "red_flags": [],
  "category": "Work",
  "skill_level": "low",
  "immediate_availability": true,
  "payment_timeframe": "weekly",
  "required_skills": ["Forklift License"],
  "salary_range": "140 SEK/hour",
  "experience_level": "none",
  "time_commitment": "full-time",
  "deadline": ""
}`

func TestParseValidationResponse(t *testing.T) {
	t.Run("clean response", func(t *testing.T) {
		result, err := parseValidationResponse(goodResponse)
		require.NoError(t, err)

		assert.True(t, result.IsLegitimate)
		assert.Equal(t, 78, result.TrustScore)
		assert.Empty(t, result.RedFlags)
		assert.Equal(t, core.CategoryWork, result.Category)
		assert.Equal(t, core.SkillLevelLow, result.SkillLevel)
		assert.True(t, result.ImmediateAvailability)
		assert.Equal(t, []string{"forklift license"}, result.RequiredSkills)
		assert.False(t, result.ValidatedAt.IsZero())
	})

	t.Run("markdown fenced response", func(t *testing.T) {
		result, err := parseValidationResponse("```json\n" + goodResponse + "\n```")
		require.NoError(t, err)
		assert.Equal(t, 78, result.TrustScore)
	})

	t.Run("case drift in vocabularies", func(t *testing.T) {
		result, err := parseValidationResponse(`{
			"is_legitimate": false,
			"trust_score": 12,
			"red_flags": ["Upfront_Payment", " "],
			"category": "work",
			"skill_level": "Zero",
			"immediate_availability": false
		}`)
		require.NoError(t, err)

		assert.Equal(t, core.CategoryWork, result.Category)
		assert.Equal(t, core.SkillLevelZero, result.SkillLevel)
		assert.Equal(t, []string{"upfront_payment"}, result.RedFlags)
	})

	t.Run("none maps to zero skill", func(t *testing.T) {
		result, err := parseValidationResponse(`{
			"is_legitimate": true,
			"trust_score": 70,
			"red_flags": [],
			"category": "Work",
			"skill_level": "none",
			"immediate_availability": true
		}`)
		require.NoError(t, err)
		assert.Equal(t, core.SkillLevelZero, result.SkillLevel)
	})

	t.Run("trust score out of range", func(t *testing.T) {
		_, err := parseValidationResponse(`{
			"is_legitimate": true,
			"trust_score": 140,
			"red_flags": [],
			"category": "Work",
			"skill_level": "low",
			"immediate_availability": false
		}`)
		assert.ErrorIs(t, err, core.ErrTrustScoreOutOfRange)
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		_, err := parseValidationResponse(`{
			"is_legitimate": true,
			"trust_score": 60,
			"red_flags": [],
			"category": "Gig",
			"skill_level": "low",
			"immediate_availability": false
		}`)
		assert.ErrorIs(t, err, core.ErrInvalidCategory)
	})

	t.Run("truncated JSON fails", func(t *testing.T) {
		_, err := parseValidationResponse(`{"is_legitimate": tru`)
		assert.Error(t, err)
	})
}

func TestRepairJSON(t *testing.T) {
	t.Run("missing opening quote on key", func(t *testing.T) {
		broken := `{"is_legitimate": true, trust_score": 80}`
		fixed := repairJSON(broken)
		assert.Equal(t, `{"is_legitimate": true, "trust_score": 80}`, fixed)
	})

	t.Run("valid JSON untouched", func(t *testing.T) {
		assert.Equal(t, goodResponse, repairJSON(goodResponse))
	})
}

func TestBuildPostingMessage(t *testing.T) {
	p := &core.RawPosting{
		Title:       "  Warehouse   Picker ",
		Company:     "Nordlog AB",
		Location:    "Malmo, Sweden",
		Source:      "remotive",
		URL:         "https://example.com/jobs/1",
		Description: "Pick and pack orders.",
	}

	msg := buildPostingMessage(p)
	assert.Contains(t, msg, "Title: Warehouse Picker\n")
	assert.Contains(t, msg, "Source: remotive")
	assert.Contains(t, msg, "URL: https://example.com/jobs/1")
	assert.Contains(t, msg, "Pick and pack orders.")
}

func TestTruncateText(t *testing.T) {
	long := make([]byte, maxDescriptionChars+100)
	for i := range long {
		long[i] = 'a'
	}
	out := truncateText(string(long), maxDescriptionChars)
	assert.Len(t, out, maxDescriptionChars+len(" [truncated]"))
	assert.Contains(t, out, "[truncated]")

	assert.Equal(t, "short", truncateText("short", maxDescriptionChars))
}

func TestTruncateText_RuneBoundary(t *testing.T) {
	// "aaåä..." cut inside the two-byte å must back up to the rune start.
	s := "aa" + strings.Repeat("å", 10)
	out := truncateText(s, 3)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "aa [truncated]", out)
}
