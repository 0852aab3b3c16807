package ingestion

import (
	"slices"
	"strings"

	"github.com/gophora/scout/core"
)

// DefaultTrustThreshold is the minimum trust score for approval.
const DefaultTrustThreshold = 70

// DefaultCriticalFlags are the red flags that veto approval outright, no
// matter how high the trust score is.
var DefaultCriticalFlags = []string{
	"upfront_payment",
	"pay_to_apply",
	"personal_financial_info",
	"mlm_structure",
}

// ApprovalPolicy decides whether a validated posting becomes a job. A posting
// is approved only when the model found it legitimate, its trust score
// reaches the threshold, and none of its red flags is critical.
type ApprovalPolicy struct {
	TrustThreshold int
	CriticalFlags  []string
}

// DefaultApprovalPolicy returns the policy used in production.
func DefaultApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{
		TrustThreshold: DefaultTrustThreshold,
		CriticalFlags:  slices.Clone(DefaultCriticalFlags),
	}
}

// Approve reports whether the validation result passes the policy. Flag
// comparison is case-insensitive on both sides, so neither the model's
// casing nor the operator's matters.
func (p ApprovalPolicy) Approve(result *core.ValidationResult) bool {
	if result == nil || !result.IsLegitimate {
		return false
	}
	if result.TrustScore < p.TrustThreshold {
		return false
	}
	for _, flag := range result.RedFlags {
		for _, critical := range p.CriticalFlags {
			if strings.EqualFold(flag, critical) {
				return false
			}
		}
	}
	return true
}

// ConservativeMerge combines a primary and a cross-check validation into the
// assessment the pipeline acts on. Disagreement always moves toward
// rejection: legitimacy requires both, the trust score is the minimum, red
// flags are unioned, and immediate availability requires both.
func ConservativeMerge(primary, secondary *core.ValidationResult) *core.ValidationResult {
	if secondary == nil {
		return primary
	}

	merged := *primary
	merged.IsLegitimate = primary.IsLegitimate && secondary.IsLegitimate
	merged.TrustScore = min(primary.TrustScore, secondary.TrustScore)
	merged.ImmediateAvailability = primary.ImmediateAvailability && secondary.ImmediateAvailability
	merged.RedFlags = unionStrings(primary.RedFlags, secondary.RedFlags)
	return &merged
}

// unionStrings merges two lowercase string sets preserving first-seen order.
func unionStrings(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
