// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// Fatal input errors, raised before any branch starts.
	ErrCodeInvalidSearchEvent ErrorCode = "INVALID_SEARCH_EVENT"
	ErrCodeMissingParameter   ErrorCode = "MISSING_PARAMETER"

	// Per-branch upstream errors, recovered by the coordinator.
	ErrCodeUpstreamSearchFailed   ErrorCode = "UPSTREAM_SEARCH_FAILED"
	ErrCodeUpstreamTimeout        ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamMetadataFailed ErrorCode = "UPSTREAM_METADATA_FAILED"
	ErrCodeMappingFailed          ErrorCode = "MAPPING_FAILED"

	// Fatal delivery error.
	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata sets a metadata entry and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

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

func NewInvalidSearchEventError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSearchEvent,
		Message:   "Search event is malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMissingParameterError(parameter string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingParameter,
		Message:   "Required search parameter is missing",
		Details:   fmt.Sprintf("parameter: %s", parameter),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUpstreamSearchError(hotelKey string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamSearchFailed,
		Message:   "Package search request failed",
		Details:   fmt.Sprintf("hotelKey: %s, error: %s", hotelKey, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewUpstreamTimeoutError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   fmt.Sprintf("Upstream '%s' timeout", endpoint),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewUpstreamMetadataError(hotelKey string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamMetadataFailed,
		Message:   "Hotel metadata request failed",
		Details:   fmt.Sprintf("hotelKey: %s, error: %s", hotelKey, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewMappingError(hotelKey, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMappingFailed,
		Message:   "Offer cannot be mapped to a package result",
		Details:   fmt.Sprintf("hotelKey: %s, %s", hotelKey, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDeliveryError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeliveryFailed,
		Message:   fmt.Sprintf("Result delivery to '%s' failed", sink),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// CodeOf returns the code of the first StandardError in err's chain.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	if err == nil {
		return ""
	}
	return ErrCodeInternal
}

// IsInputError reports errors that abort a run before any branch starts.
func IsInputError(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeInvalidSearchEvent || code == ErrCodeMissingParameter
}

func IsDeliveryError(err error) bool {
	return CodeOf(err) == ErrCodeDeliveryFailed
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidSearchEvent:     "INVALID_SEARCH_EVENT",
	ErrCodeMissingParameter:       "MISSING_PARAMETER",
	ErrCodeUpstreamSearchFailed:   "UPSTREAM_SEARCH_FAILED",
	ErrCodeUpstreamTimeout:        "UPSTREAM_TIMEOUT",
	ErrCodeUpstreamMetadataFailed: "UPSTREAM_METADATA_FAILED",
	ErrCodeMappingFailed:          "MAPPING_FAILED",
	ErrCodeDeliveryFailed:         "DELIVERY_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDeliveryFailed:
		return 3
	case ErrCodeUpstreamSearchFailed,
		ErrCodeUpstreamMetadataFailed:
		return 2
	case ErrCodeUpstreamTimeout:
		return 1
	default:
		return 0 // input and mapping errors are not retried
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "EVENT") || strings.Contains(codeStr, "PARAMETER"):
		return "INPUT"
	case strings.Contains(codeStr, "UPSTREAM"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "MAPPING"):
		return "MAPPING"
	case strings.Contains(codeStr, "DELIVERY"):
		return "DELIVERY"
	default:
		return "OTHER"
	}
}
