//go:generate mockgen -destination=./mocks/download.go . Fetcher

package download

import (
	"context"
	"time"
)

// Fetcher retrieves one remote image into memory.
type Fetcher interface {
	// Fetch returns the body of locator, retrying according to the fetcher's policy.
	// Exhausted retries are reported as *errutils.FetchError.
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// Policy controls retries and limits for a single locator.
type Policy struct {
	MaxAttempts    int           // total network attempts, at least 1
	AttemptTimeout time.Duration // deadline of each attempt, including the body read
	BackoffUnit    time.Duration // delay before attempt k+1 is 2^k units
	MaxBytes       int64         // larger bodies fail the attempt
	AllowedHosts   []string      // if non-empty, the only hosts that may be fetched
}

// Default policy values.
const (
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 5 * time.Second
	DefaultBackoffUnit    = time.Second
	DefaultMaxBytes       = 32 << 20
	DefaultUserAgent      = "recipe-gen/1.0"
)

// DefaultPolicy returns the retry policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		AttemptTimeout: DefaultAttemptTimeout,
		BackoffUnit:    DefaultBackoffUnit,
		MaxBytes:       DefaultMaxBytes,
	}
}
