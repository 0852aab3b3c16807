package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Posting IDs are derived from content so that identical postings collapse
// onto the same document key.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DedupHash computes the stable identity fingerprint of a posting from its
// normalized title, company, location, and source. Two postings with the same
// hash describe the same opportunity and must map to the same document.
func DedupHash(title, company, location, source string) ID {
	parts := []string{title, company, location, source}
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(strings.ToLower(p)), " ")
	}
	return IDFromContent(strings.Join(parts, "|"))
}

// Category classifies an opportunity by its nature.
type Category string

const (
	CategoryWork         Category = "Work"
	CategoryEducation    Category = "Education"
	CategoryHobbies      Category = "Hobbies"
	CategoryContribution Category = "Contribution"
)

// Categories lists all valid categories, used for prompt construction and
// response validation.
var Categories = []Category{
	CategoryWork,
	CategoryEducation,
	CategoryHobbies,
	CategoryContribution,
}

// SkillLevel grades how much prior skill an opportunity requires.
type SkillLevel string

const (
	SkillLevelZero   SkillLevel = "zero"
	SkillLevelLow    SkillLevel = "low"
	SkillLevelMedium SkillLevel = "medium"
	SkillLevelHigh   SkillLevel = "high"
)

// SkillLevels lists all valid skill levels.
var SkillLevels = []SkillLevel{
	SkillLevelZero,
	SkillLevelLow,
	SkillLevelMedium,
	SkillLevelHigh,
}

// RawPosting is an opportunity as fetched from an external source, before any
// AI processing. Immutable once written; a re-fetch of the same content
// supersedes the stored document rather than duplicating it.
type RawPosting struct {
	Id          ID        `json:"id"`
	Source      string    `json:"source"`
	ExternalID  string    `json:"externalId"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Fingerprint computes the posting's dedup hash from its identity fields.
func (p *RawPosting) Fingerprint() ID {
	return DedupHash(p.Title, p.Company, p.Location, p.Source)
}

// ValidationResult is the structured outcome of AI scoring and categorization
// for a single posting. Produced once per posting; regenerated only by
// explicit reprocessing.
type ValidationResult struct {
	IsLegitimate          bool       `json:"isLegitimate"`
	TrustScore            int        `json:"trustScore"` // 0-100
	RedFlags              []string   `json:"redFlags"`
	Category              Category   `json:"category"`
	SkillLevel            SkillLevel `json:"skillLevel"`
	ImmediateAvailability bool       `json:"immediateAvailability"`
	PaymentTimeframe      string     `json:"paymentTimeframe,omitempty"`
	RequiredSkills        []string   `json:"requiredSkills"`
	SalaryRange           string     `json:"salaryRange,omitempty"`
	ExperienceLevel       string     `json:"experienceLevel,omitempty"`
	TimeCommitment        string     `json:"timeCommitment,omitempty"`
	Deadline              string     `json:"deadline,omitempty"`
	ValidatedAt           time.Time  `json:"validatedAt"`
}

// Job is an approved posting enriched with its validation result and a
// unit-normalized embedding vector.
type Job struct {
	RawPosting
	Validation ValidationResult `json:"validation"`
	Vector     []float32        `json:"vector"`
	ApprovedAt time.Time        `json:"approvedAt"`
}

// EmbeddingText returns the text the job's embedding is computed over.
func (j *Job) EmbeddingText() string {
	parts := []string{j.Title, j.Description}
	if len(j.Validation.RequiredSkills) > 0 {
		parts = append(parts, strings.Join(j.Validation.RequiredSkills, " "))
	}
	return strings.Join(parts, " ")
}

// PostingStatus tracks a posting through the validation state machine.
type PostingStatus int

const (
	// StatusScraped means the posting is stored but not yet validated.
	StatusScraped PostingStatus = iota + 1
	// StatusValidating means a validation call is in flight.
	StatusValidating
	// StatusApproved means the posting passed the approval policy.
	StatusApproved
	// StatusRejected means the posting failed the approval policy.
	StatusRejected
	// StatusQuarantined means validation produced unusable output; the
	// posting is retried on a later run up to a bounded attempt count.
	StatusQuarantined
	// StatusRejectedPermanent means the quarantine attempt ceiling was hit.
	StatusRejectedPermanent
)

// String returns the lowercase name of the status.
func (s PostingStatus) String() string {
	switch s {
	case StatusScraped:
		return "scraped"
	case StatusValidating:
		return "validating"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusQuarantined:
		return "quarantined"
	case StatusRejectedPermanent:
		return "rejected_permanent"
	default:
		return "unknown"
	}
}

// PendingPosting is a posting waiting in (or parked by) the validation
// pipeline, with its state machine position and quarantine attempt counter.
type PendingPosting struct {
	RawPosting
	Status    PostingStatus `json:"status"`
	Attempts  int           `json:"attempts"`
	LastError string        `json:"lastError,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// UserProfile describes a user for personalized ranking. The vector is
// derived from the skills text and cached on the profile.
type UserProfile struct {
	UserID   string    `json:"userId"`
	Skills   []string  `json:"skills"`
	Location string    `json:"location,omitempty"`
	Vector   []float32 `json:"vector,omitempty"`
}

// SkillsText returns the text the profile embedding is computed over.
func (p *UserProfile) SkillsText() string {
	return strings.Join(p.Skills, " ")
}

// ScrapeRunLog is the append-only record of one scrape phase.
type ScrapeRunLog struct {
	StartedAt        time.Time `json:"startedAt"`
	Duration         int64     `json:"durationMillis"`
	SourcesAttempted []string  `json:"sourcesAttempted"`
	SourcesFailed    []string  `json:"sourcesFailed"`
	RawCount         int       `json:"rawCount"`
	DuplicateCount   int       `json:"duplicateCount"`
	NewCount         int       `json:"newCount"`
}

// ValidationLog is the append-only record of one validation phase.
type ValidationLog struct {
	StartedAt   time.Time `json:"startedAt"`
	Duration    int64     `json:"durationMillis"`
	Validated   int       `json:"validated"`
	Approved    int       `json:"approved"`
	Rejected    int       `json:"rejected"`
	Quarantined int       `json:"quarantined"`
	Immediate   int       `json:"immediate"`
	SkillBased  int       `json:"skillBased"`
	Partial     bool      `json:"partial"` // quota exhaustion ended the run early
}

// RunStatus is a snapshot of the scheduler's view of the pipeline.
type RunStatus struct {
	InProgress     bool      `json:"inProgress"`
	LastStart      time.Time `json:"lastStart,omitempty"`
	LastEnd        time.Time `json:"lastEnd,omitempty"`
	LastScraped    int       `json:"lastScraped"`
	LastNew        int       `json:"lastNew"`
	LastApproved   int       `json:"lastApproved"`
	LastImmediate  int       `json:"lastImmediate"`
	LastSkillBased int       `json:"lastSkillBased"`
	LastPartial    bool      `json:"lastPartial"`
	LastError      string    `json:"lastError,omitempty"`
}

// SearchResult pairs a job with its relevance score.
type SearchResult struct {
	Job   *Job
	Score float32
}
