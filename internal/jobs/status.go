// internal/jobs/status.go
package jobs

import "strings"

// Status is the normalized job lifecycle state. The backend reports status
// strings in several case and suffix variants (COMPLETED, completed, SUCCEEDED,
// COMPLETED_PRELANDER_IMAGE_GEN, ...); every variant is folded into this enum
// at the ingestion boundary and nothing downstream ever sees a raw string.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further status changes can occur.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// NormalizeStatus folds a raw backend status string into a Status.
// Unrecognized non-empty strings are treated as running: the job exists and has
// not reported a terminal state, so polling must continue.
func NormalizeStatus(raw string) Status {
	normalized := strings.ToUpper(strings.TrimSpace(raw))

	switch normalized {
	case "", "PENDING", "QUEUED", "CREATED", "SUBMITTED", "WAITING":
		return StatusPending
	case "RUNNING", "IN_PROGRESS", "PROCESSING", "GENERATING", "STARTED", "ACTIVE":
		return StatusRunning
	case "COMPLETED", "SUCCEEDED", "SUCCESS", "DONE", "FINISHED":
		return StatusSucceeded
	case "FAILED", "ERROR", "ERRORED", "CANCELLED", "CANCELED", "TIMED_OUT":
		return StatusFailed
	}

	switch {
	case strings.HasPrefix(normalized, "COMPLETED_"),
		strings.HasPrefix(normalized, "SUCCEEDED_"):
		return StatusSucceeded
	case strings.HasPrefix(normalized, "FAILED_"),
		strings.HasPrefix(normalized, "ERROR_"):
		return StatusFailed
	case strings.HasPrefix(normalized, "PENDING_"),
		strings.HasPrefix(normalized, "QUEUED_"):
		return StatusPending
	}

	return StatusRunning
}
