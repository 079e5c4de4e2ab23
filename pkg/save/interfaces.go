//go:generate mockgen -destination=./mocks/save.go . Saver

// Package save delivers exported blobs to their final destination: a local
// directory or an S3-compatible bucket.
package save

import "context"

// Blob is a named payload ready to be stored.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

// Saver stores a blob. Implementations must be safe for concurrent use.
type Saver interface {
	// Save stores blob and returns a human-readable location of the result.
	Save(ctx context.Context, blob Blob) (string, error)
}
