package storage

import (
	"testing"
	"time"

	"github.com/gophora/scout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 127, 128, 12345, 1 << 40, 1<<63 + 42} {
		data := MarshalCount(n)
		got, err := UnmarshalCount(data)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestUnmarshalCount_Truncated(t *testing.T) {
	data := MarshalCount(1 << 40)
	_, err := UnmarshalCount(data[:1])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestJobRoundTrip(t *testing.T) {
	job := &core.Job{
		RawPosting: core.RawPosting{
			Id:        core.DedupHash("Courier", "Speedy AB", "Malmo", "remotive"),
			Source:    "remotive",
			Title:     "Courier",
			Company:   "Speedy AB",
			Location:  "Malmo",
			FetchedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		},
		Validation: core.ValidationResult{
			IsLegitimate:          true,
			TrustScore:            91,
			RedFlags:              []string{},
			Category:              core.CategoryWork,
			SkillLevel:            core.SkillLevelZero,
			ImmediateAvailability: true,
			RequiredSkills:        []string{"driving"},
		},
		Vector:     []float32{0.6, 0.8},
		ApprovedAt: time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC),
	}

	data, err := MarshalJob(job)
	require.NoError(t, err)

	got, err := UnmarshalJob(data)
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestPendingPostingRoundTrip(t *testing.T) {
	posting := &core.PendingPosting{
		RawPosting: core.RawPosting{
			Id:     42,
			Source: "adzuna",
			Title:  "Tutor",
		},
		Status:    core.StatusQuarantined,
		Attempts:  2,
		LastError: "unparseable model response",
		UpdatedAt: time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC),
	}

	data, err := MarshalPendingPosting(posting)
	require.NoError(t, err)

	got, err := UnmarshalPendingPosting(data)
	require.NoError(t, err)
	assert.Equal(t, posting, got)
}

func TestUnmarshalJob_Garbage(t *testing.T) {
	_, err := UnmarshalJob([]byte("not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0.1, -0.5, 0.7}
	data, err := MarshalVector(vec)
	require.NoError(t, err)

	got, err := UnmarshalVector(data)
	require.NoError(t, err)
	assert.Equal(t, vec, got)
}
