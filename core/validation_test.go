package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePosting(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := &RawPosting{Title: "Courier", Source: "remotive"}
		assert.NoError(t, ValidatePosting(p))
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePosting(nil), ErrInvalidPosting)
	})

	t.Run("empty title", func(t *testing.T) {
		err := ValidatePosting(&RawPosting{Source: "remotive"})
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("empty source", func(t *testing.T) {
		err := ValidatePosting(&RawPosting{Title: "Courier"})
		assert.ErrorIs(t, err, ErrEmptySource)
	})
}

func TestValidateResult(t *testing.T) {
	valid := func() *ValidationResult {
		return &ValidationResult{
			IsLegitimate: true,
			TrustScore:   80,
			Category:     CategoryWork,
			SkillLevel:   SkillLevelLow,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateResult(valid()))
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, ValidateResult(nil), ErrInvalidValidationResult)
	})

	t.Run("trust score bounds", func(t *testing.T) {
		r := valid()
		r.TrustScore = 101
		assert.ErrorIs(t, ValidateResult(r), ErrTrustScoreOutOfRange)

		r.TrustScore = -1
		assert.ErrorIs(t, ValidateResult(r), ErrTrustScoreOutOfRange)

		r.TrustScore = 0
		assert.NoError(t, ValidateResult(r))
		r.TrustScore = 100
		assert.NoError(t, ValidateResult(r))
	})

	t.Run("unknown category", func(t *testing.T) {
		r := valid()
		r.Category = "Gig"
		assert.ErrorIs(t, ValidateResult(r), ErrInvalidCategory)
	})

	t.Run("unknown skill level", func(t *testing.T) {
		r := valid()
		r.SkillLevel = "expert"
		assert.ErrorIs(t, ValidateResult(r), ErrInvalidSkillLevel)
	})
}

func TestValidateProfile(t *testing.T) {
	assert.NoError(t, ValidateProfile(&UserProfile{UserID: "u1"}))
	assert.ErrorIs(t, ValidateProfile(nil), ErrInvalidProfile)
	assert.ErrorIs(t, ValidateProfile(&UserProfile{}), ErrInvalidProfile)
}
