// Package errutils defines the error taxonomy shared by the export pipeline,
// configuration and CLI.
//
// Sentinel errors are matched with errors.Is. The typed errors (ValidationError,
// FetchError, EncodeError, ExportError, AllFailedError) carry detail and unwrap to
// both their sentinel and their cause, so callers can use errors.Is for the
// category and errors.As for the payload.
package errutils

import (
	"fmt"
	"strings"
)

// Common error types used throughout the application.
var (
	// Export pipeline errors.
	ErrValidation     = fmt.Errorf("validation failed")
	ErrDownloadFailed = fmt.Errorf("download failed")
	ErrEmptyExport    = fmt.Errorf("no images to export")
	ErrAllFailed      = fmt.Errorf("all images failed to download")
	ErrEncode         = fmt.Errorf("failed to encode image")
	ErrExport         = fmt.Errorf("export failed")

	// ErrArchiveFinalized is returned when an archive builder is used after Finalize.
	ErrArchiveFinalized = fmt.Errorf("archive already finalized")

	// ErrSaveFailed is returned when a save target cannot persist a blob.
	ErrSaveFailed = fmt.Errorf("save failed")

	// ErrSaveLocked is returned when the output directory is locked by another export.
	ErrSaveLocked = fmt.Errorf("output directory is locked")

	// ErrRecipeService is returned when the recipe-content service answers with an error.
	ErrRecipeService = fmt.Errorf("recipe service error")

	// ErrInvalidCuisine is returned for a cuisine the recipe service does not support.
	ErrInvalidCuisine = fmt.Errorf("invalid cuisine")

	// Config errors are related to configuration file operations and validation.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config to YAML")

	// ErrConfigFileExists is returned when attempting to create a configuration file that already exists.
	ErrConfigFileExists = fmt.Errorf("configuration file already exists (use --force to overwrite)")

	// ErrConfigVersion is returned when the config_version is outside the supported range.
	ErrConfigVersion = fmt.Errorf("unsupported config version")

	ErrMaxAttemptsInvalid    = fmt.Errorf("fetch.max_attempts must be at least 1")
	ErrAttemptTimeoutInvalid = fmt.Errorf("fetch.attempt_timeout must be positive")
	ErrBackoffUnitNegative   = fmt.Errorf("fetch.backoff_unit cannot be negative")
	ErrMaxImageBytesInvalid  = fmt.Errorf("fetch.max_image_bytes must be positive")
	ErrMaxConcurrentInvalid  = fmt.Errorf("export.max_concurrent cannot be negative")
	ErrBatchTimeoutNegative  = fmt.Errorf("export.batch_timeout cannot be negative")
	ErrInvalidStorageType    = fmt.Errorf("invalid storage type")
	ErrStorageBucketEmpty    = fmt.Errorf("storage.s3.bucket cannot be empty")
	ErrStorageEndpointEmpty  = fmt.Errorf("storage.s3.endpoint cannot be empty")
	ErrInvalidOutputFormat   = fmt.Errorf("invalid output format")
	ErrInvalidLogLevel       = fmt.Errorf("invalid log level")

	// Hook errors.
	ErrHookLoad      = fmt.Errorf("failed to load hook")
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
)

// Wrap wraps an error with additional context.
// If the error is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
// If the error is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ValidationError reports malformed or missing input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// FetchError is returned when every attempt to retrieve a locator failed.
// Cause is the failure of the final attempt.
type FetchError struct {
	Locator  string
	Attempts int
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch image after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *FetchError) Unwrap() []error { return []error{ErrDownloadFailed, e.Cause} }

// EncodeError is returned when a buffer cannot be turned into a transportable image.
type EncodeError struct {
	Cause error
}

func (e *EncodeError) Error() string {
	if e.Cause == nil {
		return ErrEncode.Error()
	}
	return fmt.Sprintf("%s: %v", ErrEncode, e.Cause)
}

func (e *EncodeError) Unwrap() []error { return []error{ErrEncode, e.Cause} }

// ExportError wraps the failure of a single-image export.
type ExportError struct {
	SequencePosition int
	Cause            error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to download image for step %d: %v", e.SequencePosition, e.Cause)
}

func (e *ExportError) Unwrap() []error { return []error{ErrExport, e.Cause} }

// Failure is one entry of a failure report.
type Failure struct {
	SequencePosition int    `json:"step_number" yaml:"step_number"`
	Reason           string `json:"reason" yaml:"reason"`
}

// FailureReport lists failed items ordered by ascending sequence position.
type FailureReport []Failure

// String renders the report one step per line.
func (r FailureReport) String() string {
	lines := make([]string, 0, len(r))
	for _, f := range r {
		lines = append(lines, fmt.Sprintf("Step %d: %s", f.SequencePosition, f.Reason))
	}
	return strings.Join(lines, "\n")
}

// AllFailedError is returned when a batch produced no successful image.
// NothingFetched is set when no item had a locator, in which case the error also
// matches ErrEmptyExport.
type AllFailedError struct {
	Report         FailureReport
	NothingFetched bool
}

func (e *AllFailedError) Error() string {
	return fmt.Sprintf("%s: %d image(s) failed", ErrAllFailed, len(e.Report))
}

func (e *AllFailedError) Unwrap() []error {
	if e.NothingFetched {
		return []error{ErrAllFailed, ErrEmptyExport}
	}
	return []error{ErrAllFailed}
}

// ErrInvalidStorageTypeWithDetails is a helper to create a wrapped error with the invalid type.
func ErrInvalidStorageTypeWithDetails(storageType string) error {
	return fmt.Errorf("%w: '%s', must be one of: dir, s3", ErrInvalidStorageType, storageType)
}

// ErrInvalidOutputFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: auto, text, json", ErrInvalidOutputFormat, format)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidCuisineWithDetails is a helper to create a wrapped error with the invalid cuisine and valid options.
func ErrInvalidCuisineWithDetails(cuisine string, valid []string) error {
	return fmt.Errorf("%w: '%s', must be one of: %s", ErrInvalidCuisine, cuisine, strings.Join(valid, ", "))
}

// ErrConfigVersionWithDetails is a helper to create a wrapped error with the rejected version.
func ErrConfigVersionWithDetails(got, constraint string) error {
	return fmt.Errorf("%w: %s (supported: %s)", ErrConfigVersion, got, constraint)
}
