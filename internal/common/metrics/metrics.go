// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adgen_jobs_submitted_total",
			Help: "Total number of generation jobs submitted",
		},
		[]string{"job_kind"},
	)

	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adgen_jobs_completed_total",
			Help: "Total number of generation jobs that reached a terminal state",
		},
		[]string{"job_kind", "status"},
	)

	PollRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adgen_poll_requests_total",
			Help: "Total number of job status polls issued",
		},
		[]string{"job_kind", "outcome"},
	)

	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "adgen_job_wait_seconds",
			Help: "Wall-clock time from submission to terminal state",
		},
		[]string{"job_kind"},
	)

	OverageConfirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adgen_overage_confirmations_total",
			Help: "Overage confirmation prompts and their resolutions",
		},
		[]string{"resolution"},
	)

	BackgroundJobsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adgen_background_jobs_tracked",
			Help: "Number of jobs currently tracked by the background poller",
		},
	)
)
