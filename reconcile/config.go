package reconcile

import "time"

// Config holds configuration for maintenance passes.
type Config struct {
	// BatchSize is the number of jobs to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of jobs)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}
