package storage

import (
	"context"
	"time"

	"github.com/gophora/scout/core"
)

// Collection names a routed job store. Routing is derived state: the verified
// collection holds every approved job, the other two are projections of it.
type Collection string

const (
	// CollectionVerified holds all approved jobs regardless of routing.
	CollectionVerified Collection = "verified"
	// CollectionImmediate holds approved jobs startable right away with
	// little or no prior skill. Profile-independent.
	CollectionImmediate Collection = "immediate"
	// CollectionSkillBased holds approved jobs that demand real skill and
	// are ranked against user profiles.
	CollectionSkillBased Collection = "skillbased"
)

// Collections lists all valid collections.
var Collections = []Collection{
	CollectionVerified,
	CollectionImmediate,
	CollectionSkillBased,
}

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// JobRepository provides operations for approved jobs across collections.
type JobRepository interface {
	Repository

	// UpsertJobs writes jobs into a collection keyed by their dedup hash id,
	// replacing any existing document with the same id. Re-routing the same
	// job is therefore idempotent.
	UpsertJobs(ctx context.Context, collection Collection, jobs ...*core.Job) error

	// GetJob retrieves a job from a collection by id.
	// Returns ErrNotFound if the job doesn't exist there.
	GetJob(ctx context.Context, collection Collection, id core.ID) (*core.Job, error)

	// HasJob reports whether a job exists in a collection.
	HasJob(ctx context.Context, collection Collection, id core.ID) (bool, error)

	// ListJobs retrieves up to limit jobs from a collection, in key order.
	// A limit <= 0 returns everything.
	ListJobs(ctx context.Context, collection Collection, limit int) ([]*core.Job, error)

	// DeleteJobs removes jobs from a single collection by id. Missing ids are
	// ignored so reconciliation can converge without read-before-delete.
	DeleteJobs(ctx context.Context, collection Collection, ids ...core.ID) error

	// CountJobs returns the number of jobs in a collection.
	CountJobs(ctx context.Context, collection Collection) (int, error)

	// FindSimilar finds jobs in a collection similar to the given vector.
	// Returns jobs with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first). Vectors are assumed
	// unit-normalized.
	FindSimilar(ctx context.Context, collection Collection, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)
}

// PendingRepository provides operations for postings moving through the
// validation state machine. Records persist after rejection so the dedup
// check keeps rejected postings out on later scrapes.
type PendingRepository interface {
	Repository

	// PutPending writes pending postings keyed by their dedup hash id,
	// stamping UpdatedAt.
	PutPending(ctx context.Context, postings ...*core.PendingPosting) error

	// GetPending retrieves a pending posting by id.
	// Returns ErrNotFound if it doesn't exist.
	GetPending(ctx context.Context, id core.ID) (*core.PendingPosting, error)

	// ListPendingByStatus retrieves all pending postings whose status is in
	// the given set, in key order.
	ListPendingByStatus(ctx context.Context, statuses ...core.PostingStatus) ([]*core.PendingPosting, error)

	// DeletePending removes pending postings by id. Missing ids are ignored.
	DeletePending(ctx context.Context, ids ...core.ID) error

	// HasPending reports whether a pending record exists for the id.
	HasPending(ctx context.Context, id core.ID) (bool, error)
}

// ProfileRepository provides operations for user profiles.
type ProfileRepository interface {
	Repository

	// PutProfile writes a profile keyed by user id.
	PutProfile(ctx context.Context, profile *core.UserProfile) error

	// GetProfile retrieves a profile by user id.
	// Returns ErrNotFound if it doesn't exist.
	GetProfile(ctx context.Context, userID string) (*core.UserProfile, error)

	// ListProfiles retrieves all profiles.
	ListProfiles(ctx context.Context) ([]*core.UserProfile, error)
}

// RunLogRepository provides append-only run observability records plus the
// latest pipeline status snapshot.
type RunLogRepository interface {
	Repository

	// AppendScrapeLog appends a scrape phase record.
	AppendScrapeLog(ctx context.Context, log *core.ScrapeRunLog) error

	// AppendValidationLog appends a validation phase record.
	AppendValidationLog(ctx context.Context, log *core.ValidationLog) error

	// ListScrapeLogs retrieves scrape logs with StartedAt >= since, newest
	// first, up to limit.
	ListScrapeLogs(ctx context.Context, since time.Time, limit int) ([]*core.ScrapeRunLog, error)

	// ListValidationLogs retrieves validation logs with StartedAt >= since,
	// newest first, up to limit.
	ListValidationLogs(ctx context.Context, since time.Time, limit int) ([]*core.ValidationLog, error)

	// SaveRunStatus persists the latest pipeline status snapshot.
	SaveRunStatus(ctx context.Context, status *core.RunStatus) error

	// LoadRunStatus retrieves the latest pipeline status snapshot.
	// Returns nil, nil if none has been saved.
	LoadRunStatus(ctx context.Context) (*core.RunStatus, error)
}

// EngagementRepository tracks per-job view and application counters in daily
// buckets so trending queries can be windowed.
type EngagementRepository interface {
	Repository

	// IncrementViews adds one view for the job on the given day.
	IncrementViews(ctx context.Context, id core.ID, day time.Time) error

	// IncrementApplications adds one application for the job on the given day.
	IncrementApplications(ctx context.Context, id core.ID, day time.Time) error

	// CountsSince sums the job's views and applications over days >= since.
	CountsSince(ctx context.Context, id core.ID, since time.Time) (views, applications uint64, err error)
}

// EmbeddingCacheRepository caches embedding vectors keyed by a content hash of
// the embedded text, so unchanged text never costs a second embedding call.
type EmbeddingCacheRepository interface {
	Repository

	// GetVector retrieves a cached vector. Returns ErrNotFound on miss.
	GetVector(ctx context.Context, contentHash core.ID) ([]float32, error)

	// PutVector caches a vector under a content hash.
	PutVector(ctx context.Context, contentHash core.ID, vector []float32) error
}

// LockRepository provides the mutual exclusion primitive for pipeline runs.
type LockRepository interface {
	Repository

	// AcquireRunLock takes the run lock with a TTL guarding against a crashed
	// holder. Returns ErrLockHeld if another owner holds it.
	AcquireRunLock(ctx context.Context, ttl time.Duration) error

	// ReleaseRunLock releases the run lock. Releasing an unheld lock is a
	// no-op.
	ReleaseRunLock(ctx context.Context) error
}
