package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataUnavailableError(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		source   string
		expected ErrorCode
	}{
		{source: SourceListingPool, expected: ErrCodePoolFetchFailed},
		{source: SourceCounters, expected: ErrCodeCountersFetchFailed},
		{source: SourceRankHistory, expected: ErrCodeHistoryFetchFailed},
		{source: SourceScoring, expected: ErrCodeDataUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			err := NewDataUnavailableError(tt.source, cause)

			assert.Equal(t, tt.expected, err.Code)
			assert.True(t, err.Retryable)
			assert.Equal(t, tt.source, err.Metadata["source"])
			assert.ErrorIs(t, err, cause)
			assert.True(t, IsDataUnavailable(err))
		})
	}
}

func TestIsDataUnavailable(t *testing.T) {
	wrapped := fmt.Errorf("search: %w", NewDataUnavailableError(SourceListingPool, context.Canceled))

	assert.True(t, IsDataUnavailable(wrapped))
	assert.ErrorIs(t, wrapped, context.Canceled)

	assert.False(t, IsDataUnavailable(nil))
	assert.False(t, IsDataUnavailable(stderrors.New("plain")))
	assert.False(t, IsDataUnavailable(NewInvalidSearchRequestError("query too long")))
	assert.False(t, IsDataUnavailable(NewListingNotFoundError("product", "p1")))
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("collaborator failure", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewDataUnavailableError(SourceCounters, stderrors.New("timeout")))

		assert.Equal(t, "DATA_UNAVAILABLE", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
		assert.Equal(t, "COUNTERS_FETCH_FAILED", bpmn.ErrorVariables["originalErrorCode"])
		assert.Equal(t, SourceCounters, bpmn.ErrorVariables["dataSource"])

		vars := bpmn.ToErrorVariables()
		assert.Equal(t, true, vars["retryable"])
		assert.Equal(t, "timeout", vars["errorDetails"])
	})

	t.Run("business error is not retried", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInvalidFilterFormatError("priceMin > priceMax"))

		assert.Equal(t, "INVALID_FILTER_FORMAT", bpmn.Code)
		assert.Zero(t, bpmn.Retries)
		assert.False(t, bpmn.Retryable)
	})

	t.Run("unknown code falls back to itself", func(t *testing.T) {
		bpmn := ConvertToBPMNError(&StandardError{Code: "SOMETHING_ELSE", Retryable: true})
		assert.Equal(t, "SOMETHING_ELSE", bpmn.Code)
		assert.Zero(t, bpmn.Retries)
	})
}

func TestNormalize(t *testing.T) {
	std := NewListingNotFoundError("service", "s1")
	assert.Same(t, std, Normalize(fmt.Errorf("lookup: %w", std)))

	timeout := Normalize(context.DeadlineExceeded)
	assert.Equal(t, ErrCodeSearchTimeout, timeout.Code)
	assert.Equal(t, 2, GetRetryCount(timeout.Code))

	other := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, other.Code)
	require.Error(t, other.Unwrap())
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeDataUnavailable:               "DATA",
		ErrCodePoolFetchFailed:               "DATA",
		ErrCodeDatabaseConnectionFailed:      "STORAGE",
		ErrCodeElasticsearchConnectionFailed: "STORAGE",
		ErrCodeSearchTimeout:                 "SEARCH",
		ErrCodeVocabularyLoadFailed:          "CONFIGURATION",
		ErrCodeInvalidSearchRequest:          "VALIDATION",
		ErrCodeListingNotFound:               "VALIDATION",
		ErrCodeBrokerUnavailable:             "INFRASTRUCTURE",
		ErrCodeInternal:                      "OTHER",
	}

	for code, category := range tests {
		assert.Equal(t, category, GetErrorCategory(code), string(code))
	}
	assert.True(t, IsRetryableErrorCode(ErrCodeHistoryFetchFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidFilterFormat))
}
