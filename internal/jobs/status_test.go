// internal/jobs/status_test.go
package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Status
	}{
		{"upper completed", "COMPLETED", StatusSucceeded},
		{"lower completed", "completed", StatusSucceeded},
		{"succeeded", "SUCCEEDED", StatusSucceeded},
		{"suffixed completed", "COMPLETED_PRELANDER_IMAGE_GEN", StatusSucceeded},
		{"suffixed static ad", "COMPLETED_STATIC_AD_GEN", StatusSucceeded},
		{"done", "done", StatusSucceeded},
		{"failed", "FAILED", StatusFailed},
		{"lower failed", "failed", StatusFailed},
		{"suffixed failed", "FAILED_IMAGE_GEN", StatusFailed},
		{"error", "error", StatusFailed},
		{"cancelled", "CANCELLED", StatusFailed},
		{"pending", "PENDING", StatusPending},
		{"queued", "queued", StatusPending},
		{"created", "CREATED", StatusPending},
		{"empty string", "", StatusPending},
		{"running", "RUNNING", StatusRunning},
		{"in progress", "IN_PROGRESS", StatusRunning},
		{"processing", "processing", StatusRunning},
		{"generating", "GENERATING", StatusRunning},
		{"whitespace around", "  completed  ", StatusSucceeded},
		{"unknown string stays non-terminal", "WARMING_UP_GPUS", StatusRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.raw))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusSucceeded.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "running", StatusRunning.String())
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
