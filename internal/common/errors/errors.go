// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Collaborator failures. A pipeline that hits one of these returns no result.
	ErrCodeDataUnavailable     ErrorCode = "DATA_UNAVAILABLE"
	ErrCodePoolFetchFailed     ErrorCode = "POOL_FETCH_FAILED"
	ErrCodeCountersFetchFailed ErrorCode = "COUNTERS_FETCH_FAILED"
	ErrCodeHistoryFetchFailed  ErrorCode = "HISTORY_FETCH_FAILED"

	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeBrokerUnavailable             ErrorCode = "BROKER_UNAVAILABLE"

	ErrCodeVocabularyLoadFailed ErrorCode = "VOCABULARY_LOAD_FAILED"

	ErrCodeInvalidSearchRequest ErrorCode = "INVALID_SEARCH_REQUEST"
	ErrCodeInvalidFilterFormat  ErrorCode = "INVALID_FILTER_FORMAT"
	ErrCodeListingNotFound      ErrorCode = "LISTING_NOT_FOUND"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Data sources named in DataUnavailable errors.
const (
	SourceListingPool = "listing_pool"
	SourceCounters    = "interaction_counters"
	SourceRankHistory = "rank_history"
	SourceScoring     = "scoring"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewDataUnavailableError wraps a collaborator failure. The code is specific
// to the source when one is known.
func NewDataUnavailableError(source string, err error) *StandardError {
	code := ErrCodeDataUnavailable
	switch source {
	case SourceListingPool:
		code = ErrCodePoolFetchFailed
	case SourceCounters:
		code = ErrCodeCountersFetchFailed
	case SourceRankHistory:
		code = ErrCodeHistoryFetchFailed
	}

	details := ""
	if err != nil {
		details = err.Error()
	}

	return &StandardError{
		Code:      code,
		Message:   fmt.Sprintf("%s unavailable", source),
		Details:   details,
		Retryable: true,
		Metadata:  map[string]interface{}{"source": source},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Failed to connect to database",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Failed to connect to Elasticsearch",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewBrokerUnavailableError reports a Zeebe gateway that could not be reached.
func NewBrokerUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBrokerUnavailable,
		Message:   fmt.Sprintf("Zeebe operation '%s' failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSearchTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Search operation timed out",
		Details:   operation,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewVocabularyLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeVocabularyLoadFailed,
		Message:   "Failed to load vocabulary",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"path": path},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidSearchRequestError creates a non-retryable input error.
func NewInvalidSearchRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSearchRequest,
		Message:   "Invalid search request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidFilterFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewListingNotFoundError(listingType, listingID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeListingNotFound,
		Message:   "Listing not found",
		Details:   fmt.Sprintf("%s %s", listingType, listingID),
		Retryable: false,
		Metadata:  map[string]interface{}{"listingId": listingID, "listingType": listingType},
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. Every
// collaborator failure surfaces to the process as DATA_UNAVAILABLE.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeDataUnavailable:               "DATA_UNAVAILABLE",
	ErrCodePoolFetchFailed:               "DATA_UNAVAILABLE",
	ErrCodeCountersFetchFailed:           "DATA_UNAVAILABLE",
	ErrCodeHistoryFetchFailed:            "DATA_UNAVAILABLE",
	ErrCodeDatabaseConnectionFailed:      "DATA_UNAVAILABLE",
	ErrCodeElasticsearchConnectionFailed: "DATA_UNAVAILABLE",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeVocabularyLoadFailed:          "VOCABULARY_LOAD_FAILED",
	ErrCodeInvalidSearchRequest:          "INVALID_SEARCH_REQUEST",
	ErrCodeInvalidFilterFormat:           "INVALID_FILTER_FORMAT",
	ErrCodeListingNotFound:               "LISTING_NOT_FOUND",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDataUnavailable,
		ErrCodePoolFetchFailed,
		ErrCodeCountersFetchFailed,
		ErrCodeHistoryFetchFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeBrokerUnavailable:
		return 3

	case ErrCodeSearchTimeout:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if source, ok := stdErr.Metadata["source"]; ok {
		vars["dataSource"] = source
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError anywhere in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsDataUnavailable reports whether err is a collaborator failure, as opposed
// to a legitimate empty result or bad input.
func IsDataUnavailable(err error) bool {
	stdErr, ok := AsStandardError(err)
	if !ok {
		return false
	}
	switch stdErr.Code {
	case ErrCodeDataUnavailable,
		ErrCodePoolFetchFailed,
		ErrCodeCountersFetchFailed,
		ErrCodeHistoryFetchFailed:
		return true
	}
	return false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "BROKER"):
		return "INFRASTRUCTURE"
	case strings.Contains(codeStr, "FETCH") || strings.Contains(codeStr, "UNAVAILABLE"):
		return "DATA"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "ELASTICSEARCH"):
		return "STORAGE"
	case strings.Contains(codeStr, "SEARCH_TIMEOUT"):
		return "SEARCH"
	case strings.Contains(codeStr, "VOCABULARY"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "NOT_FOUND"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
