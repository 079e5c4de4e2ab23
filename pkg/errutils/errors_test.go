package errutils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))
	assert.NoError(t, Wrapf(nil, "ignored %d", 1))

	err := Wrapf(ErrSaveFailed, "writing %s", "a.zip")
	assert.EqualError(t, err, "writing a.zip: save failed")
	assert.ErrorIs(t, err, ErrSaveFailed)
}

func TestFetchError_MatchesSentinelAndCause(t *testing.T) {
	cause := fmt.Errorf("unexpected status code: 500")
	err := error(&FetchError{Locator: "https://img", Attempts: 3, Cause: cause})

	assert.ErrorIs(t, err, ErrDownloadFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to fetch image after 3 attempts: unexpected status code: 500", err.Error())

	var fe *FetchError
	require.ErrorAs(t, Wrap(err, "step 2"), &fe)
	assert.Equal(t, 3, fe.Attempts)
}

func TestExportError_WrapsFetchError(t *testing.T) {
	fetchErr := &FetchError{Attempts: 3, Cause: errors.New("boom")}
	err := error(&ExportError{SequencePosition: 4, Cause: fetchErr})

	assert.ErrorIs(t, err, ErrExport)
	assert.ErrorIs(t, err, ErrDownloadFailed)
	assert.Contains(t, err.Error(), "step 4")

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Same(t, fetchErr, fe)
}

func TestEncodeError_NilCause(t *testing.T) {
	err := error(&EncodeError{})
	assert.ErrorIs(t, err, ErrEncode)
	assert.Equal(t, ErrEncode.Error(), err.Error())
}

func TestValidationError(t *testing.T) {
	err := error(NewValidationError("locator", "must not be empty"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: locator: must not be empty", err.Error())

	assert.Equal(t, "validation failed: bad", NewValidationError("", "bad").Error())
}

func TestAllFailedError(t *testing.T) {
	report := FailureReport{{SequencePosition: 1, Reason: "missing image URL"}}

	fetched := error(&AllFailedError{Report: report})
	assert.ErrorIs(t, fetched, ErrAllFailed)
	assert.NotErrorIs(t, fetched, ErrEmptyExport)

	nothing := error(&AllFailedError{Report: report, NothingFetched: true})
	assert.ErrorIs(t, nothing, ErrAllFailed)
	assert.ErrorIs(t, nothing, ErrEmptyExport)

	var afe *AllFailedError
	require.ErrorAs(t, nothing, &afe)
	assert.Equal(t, report, afe.Report)
}

func TestFailureReport_String(t *testing.T) {
	r := FailureReport{
		{SequencePosition: 1, Reason: "missing image URL"},
		{SequencePosition: 3, Reason: "timeout"},
	}
	assert.Equal(t, "Step 1: missing image URL\nStep 3: timeout", r.String())
	assert.Empty(t, FailureReport(nil).String())
}

func TestDetailHelpers(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidStorageTypeWithDetails("ftp"), ErrInvalidStorageType)
	assert.ErrorIs(t, ErrInvalidOutputFormatWithDetails("xml"), ErrInvalidOutputFormat)
	assert.ErrorIs(t, ErrInvalidLogLevelWithDetails("trace"), ErrInvalidLogLevel)
	assert.ErrorIs(t, ErrConfigVersionWithDetails("3.0", ">= 1.0, < 2.0"), ErrConfigVersion)

	err := ErrInvalidCuisineWithDetails("martian", []string{"indian", "latin"})
	assert.ErrorIs(t, err, ErrInvalidCuisine)
	assert.Contains(t, err.Error(), "indian, latin")
}
