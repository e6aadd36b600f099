// Package errors provides standardized error handling for generation-job orchestration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Billing / usage errors
	ErrCodeOverageConfirmationRequired ErrorCode = "JOB_CREDITS_OVERAGE_CONFIRMATION_REQUIRED"
	ErrCodeUsageLimitExceeded          ErrorCode = "USAGE_LIMIT_EXCEEDED"

	// Job lifecycle errors
	ErrCodeJobSubmissionFailed ErrorCode = "JOB_SUBMISSION_FAILED"
	ErrCodeJobFailed           ErrorCode = "JOB_FAILED"
	ErrCodeJobTimeout          ErrorCode = "JOB_TIMEOUT"
	ErrCodeJobNotFound         ErrorCode = "JOB_NOT_FOUND"

	// Input errors
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeUploadFailed     ErrorCode = "UPLOAD_FAILED"

	// Infrastructure errors
	ErrCodeNetworkError       ErrorCode = "NETWORK_ERROR"
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeHistoryWriteFailed ErrorCode = "HISTORY_WRITE_FAILED"
	ErrCodeTemplateNotFound   ErrorCode = "TEMPLATE_NOT_FOUND"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// OverageError is returned when the backend requires explicit consent before
// billing usage beyond the included credit allotment. It is not a hard failure:
// the caller must surface a confirmation and may resubmit with AllowOverage set.
type OverageError struct {
	Credits       int     `json:"overageCredits"`
	CostPerCredit float64 `json:"overageCostPerCredit"`
	CostTotal     float64 `json:"overageCostTotal"`
	Currency      string  `json:"currency"`
}

func (e *OverageError) Error() string {
	return fmt.Sprintf("overage confirmation required: %d credits (%.2f %s)",
		e.Credits, e.CostTotal, e.Currency)
}

// QuotaError is returned when the account has exhausted its quota. Submission
// is blocked entirely until the plan changes.
type QuotaError struct {
	CurrentUsage int `json:"currentUsage"`
	Limit        int `json:"limit"`
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("usage limit exceeded: %d/%d", e.CurrentUsage, e.Limit)
}

// IsOverage reports whether err is (or wraps) an OverageError.
func IsOverage(err error) (*OverageError, bool) {
	var oe *OverageError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// IsQuota reports whether err is (or wraps) a QuotaError.
func IsQuota(err error) (*QuotaError, bool) {
	var qe *QuotaError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// Error constructors

// NewJobSubmissionFailedError creates a retryable submission error.
func NewJobSubmissionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobSubmissionFailed,
		Message:   "Job submission failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewJobFailedError creates a non-retryable terminal job failure.
func NewJobFailedError(jobID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobFailed,
		Message:   "Generation job reported failure",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"jobId": jobID},
		Timestamp: time.Now().UTC(),
	}
}

// NewJobTimeoutError creates a non-retryable polling timeout error.
func NewJobTimeoutError(jobID string, attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobTimeout,
		Message:   "Generation job did not finish within the polling budget",
		Details:   fmt.Sprintf("jobId: %s, attempts: %d", jobID, attempts),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewJobNotFoundError creates a non-retryable lookup error.
func NewJobNotFoundError(jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobNotFound,
		Message:   "Job not found",
		Details:   fmt.Sprintf("jobId: %s", jobID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadFailedError creates a retryable upload error.
func NewUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadFailed,
		Message:   "Image upload failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNetworkError creates a retryable transport-level error.
func NewNetworkError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetworkError,
		Message:   "Network error talking to generation backend",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendUnavailableError creates a retryable backend error.
func NewBackendUnavailableError(status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnavailable,
		Message:   "Generation backend returned a server error",
		Details:   fmt.Sprintf("status: %d, body: %s", status, body),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryWriteFailedError creates a retryable persistence error.
func NewHistoryWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryWriteFailed,
		Message:   "Failed to record job history",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template lookup error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found in registry",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count for an error code.
// Billing and validation errors never retry automatically; the overage
// resubmission in particular happens only on explicit user consent.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeJobSubmissionFailed,
		ErrCodeUploadFailed,
		ErrCodeHistoryWriteFailed:
		return 3

	case ErrCodeNetworkError,
		ErrCodeBackendUnavailable:
		return 2

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	if oe, ok := IsOverage(err); ok {
		return &StandardError{
			Code:      ErrCodeOverageConfirmationRequired,
			Message:   "Overage confirmation required",
			Details:   oe.Error(),
			Retryable: false,
			Metadata: map[string]interface{}{
				"overageCredits":       oe.Credits,
				"overageCostPerCredit": oe.CostPerCredit,
				"overageCostTotal":     oe.CostTotal,
				"currency":             oe.Currency,
			},
			Timestamp: time.Now().UTC(),
		}
	}
	if qe, ok := IsQuota(err); ok {
		return &StandardError{
			Code:      ErrCodeUsageLimitExceeded,
			Message:   "Usage limit exceeded",
			Details:   qe.Error(),
			Retryable: false,
			Metadata: map[string]interface{}{
				"currentUsage": qe.CurrentUsage,
				"limit":        qe.Limit,
			},
			Timestamp: time.Now().UTC(),
		}
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "OVERAGE") || strings.Contains(codeStr, "USAGE"):
		return "BILLING"
	case strings.Contains(codeStr, "JOB"):
		return "JOB"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "UPLOAD"):
		return "INPUT"
	case strings.Contains(codeStr, "NETWORK") || strings.Contains(codeStr, "BACKEND"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	default:
		return "OTHER"
	}
}
