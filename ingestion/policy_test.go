package ingestion

import (
	"testing"

	"github.com/gophora/scout/core"
	"github.com/stretchr/testify/assert"
)

func legit(trust int, flags ...string) *core.ValidationResult {
	return &core.ValidationResult{
		IsLegitimate: true,
		TrustScore:   trust,
		RedFlags:     flags,
		Category:     core.CategoryWork,
		SkillLevel:   core.SkillLevelLow,
	}
}

func TestApprovalPolicy_Approve(t *testing.T) {
	policy := DefaultApprovalPolicy()

	t.Run("threshold boundary", func(t *testing.T) {
		assert.True(t, policy.Approve(legit(70)))
		assert.False(t, policy.Approve(legit(69)))
		assert.True(t, policy.Approve(legit(100)))
	})

	t.Run("not legitimate", func(t *testing.T) {
		r := legit(95)
		r.IsLegitimate = false
		assert.False(t, policy.Approve(r))
	})

	t.Run("critical flag vetoes despite high trust", func(t *testing.T) {
		assert.False(t, policy.Approve(legit(95, "upfront_payment")))
		assert.False(t, policy.Approve(legit(95, "vague_description", "mlm_structure")))
	})

	t.Run("non-critical flags pass", func(t *testing.T) {
		assert.True(t, policy.Approve(legit(80, "vague_description", "urgency_pressure")))
	})

	t.Run("flag matching is case insensitive", func(t *testing.T) {
		assert.False(t, policy.Approve(legit(95, "Upfront_Payment")))
	})

	t.Run("configured set casing does not matter either", func(t *testing.T) {
		custom := ApprovalPolicy{TrustThreshold: 70, CriticalFlags: []string{"Upfront_Payment"}}
		assert.False(t, custom.Approve(legit(95, "upfront_payment")))
	})

	t.Run("nil result", func(t *testing.T) {
		assert.False(t, policy.Approve(nil))
	})

	t.Run("custom critical set", func(t *testing.T) {
		custom := ApprovalPolicy{TrustThreshold: 50, CriticalFlags: []string{"crypto_payment_only"}}
		assert.False(t, custom.Approve(legit(90, "crypto_payment_only")))
		// upfront_payment is not critical under the custom set
		assert.True(t, custom.Approve(legit(90, "upfront_payment")))
	})
}

func TestConservativeMerge(t *testing.T) {
	t.Run("nil secondary returns primary", func(t *testing.T) {
		primary := legit(80)
		assert.Equal(t, primary, ConservativeMerge(primary, nil))
	})

	t.Run("disagreement moves toward rejection", func(t *testing.T) {
		primary := legit(85, "vague_description")
		primary.ImmediateAvailability = true
		secondary := legit(60, "no_company_info")
		secondary.IsLegitimate = false

		merged := ConservativeMerge(primary, secondary)
		assert.False(t, merged.IsLegitimate)
		assert.Equal(t, 60, merged.TrustScore)
		assert.False(t, merged.ImmediateAvailability)
		assert.ElementsMatch(t, []string{"vague_description", "no_company_info"}, merged.RedFlags)
	})

	t.Run("agreement preserves verdict", func(t *testing.T) {
		primary := legit(85)
		primary.ImmediateAvailability = true
		secondary := legit(90)
		secondary.ImmediateAvailability = true

		merged := ConservativeMerge(primary, secondary)
		assert.True(t, merged.IsLegitimate)
		assert.Equal(t, 85, merged.TrustScore)
		assert.True(t, merged.ImmediateAvailability)
	})

	t.Run("primary metadata wins", func(t *testing.T) {
		primary := legit(85)
		primary.Category = core.CategoryEducation
		secondary := legit(80)
		secondary.Category = core.CategoryWork

		merged := ConservativeMerge(primary, secondary)
		assert.Equal(t, core.CategoryEducation, merged.Category)
	})

	t.Run("duplicate flags are not repeated", func(t *testing.T) {
		merged := ConservativeMerge(legit(80, "vague_description"), legit(75, "vague_description"))
		assert.Equal(t, []string{"vague_description"}, merged.RedFlags)
	})
}
