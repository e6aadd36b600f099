// internal/jobs/poller.go
package jobs

import (
	"context"
	"time"

	"adgen-orchestrator/internal/common/config"
	stderrors "adgen-orchestrator/internal/common/errors"
	"adgen-orchestrator/internal/common/logger"
	"adgen-orchestrator/internal/common/metrics"
)

// StatusFetcher is the slice of the API client the poll loop needs.
type StatusFetcher interface {
	JobStatus(ctx context.Context, jobID string) (*StatusUpdate, error)
	JobResult(ctx context.Context, jobID string) (*Result, error)
}

// Policy is the single polling budget applied to every job kind.
type Policy struct {
	Interval         time.Duration // base delay between polls
	MaxAttempts      int           // 0 disables the attempt cap
	Timeout          time.Duration // wall-clock budget
	BackoffThreshold int           // consecutive transient errors before backoff
	MaxInterval      time.Duration // backoff ceiling
}

// PolicyFromConfig converts the millisecond-based config section.
func PolicyFromConfig(cfg config.PollingConfig) Policy {
	return Policy{
		Interval:         config.GetDuration(cfg.Interval),
		MaxAttempts:      cfg.MaxAttempts,
		Timeout:          config.GetDuration(cfg.Timeout),
		BackoffThreshold: cfg.BackoffThreshold,
		MaxInterval:      config.GetDuration(cfg.MaxInterval),
	}
}

// DefaultPolicy is used when no configuration is supplied: 2s interval,
// 150 attempts, 5 minute wall clock.
func DefaultPolicy() Policy {
	return Policy{
		Interval:         2 * time.Second,
		MaxAttempts:      150,
		Timeout:          5 * time.Minute,
		BackoffThreshold: 3,
		MaxInterval:      30 * time.Second,
	}
}

// Poller drives one job from submission to terminal state against the status
// endpoint. One Wait call issues at most one in-flight status request at a
// time; responses carry a monotonic sequence number and snapshots older than
// the newest applied one are discarded.
type Poller struct {
	api    StatusFetcher
	policy Policy
	logger logger.Logger
}

func NewPoller(api StatusFetcher, policy Policy, log logger.Logger) *Poller {
	return &Poller{
		api:    api,
		policy: policy,
		logger: log.WithFields(map[string]interface{}{"component": "poller"}),
	}
}

// Wait polls jobID until it reaches a terminal state, the polling budget is
// exhausted, or ctx is cancelled. Non-stale updates are delivered to onUpdate
// (which may be nil). On terminal success the full result is fetched once and
// returned; on terminal failure a JOB_FAILED error is returned. After a
// terminal state is observed no further status or result request is issued.
func (p *Poller) Wait(ctx context.Context, jobID string, kind Kind, onUpdate func(*StatusUpdate)) (*Result, error) {
	log := p.logger.WithFields(map[string]interface{}{
		"jobId":   jobID,
		"jobKind": string(kind),
	})

	start := time.Now()
	deadline := start.Add(p.policy.Timeout)
	interval := p.policy.Interval

	attempts := 0
	consecutiveErrs := 0
	seq := 0
	lastApplied := 0
	maxProgress := -1

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		if p.policy.MaxAttempts > 0 && attempts >= p.policy.MaxAttempts {
			metrics.PollRequests.WithLabelValues(string(kind), "timeout").Inc()
			return nil, stderrors.NewJobTimeoutError(jobID, attempts)
		}
		if time.Now().After(deadline) {
			metrics.PollRequests.WithLabelValues(string(kind), "timeout").Inc()
			return nil, stderrors.NewJobTimeoutError(jobID, attempts)
		}

		attempts++
		seq++

		update, err := p.api.JobStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Transient errors are swallowed and polling continues; after a
			// run of them the interval backs off exponentially up to the cap.
			consecutiveErrs++
			metrics.PollRequests.WithLabelValues(string(kind), "error").Inc()
			if consecutiveErrs >= p.policy.BackoffThreshold {
				interval = minDuration(interval*2, p.policy.MaxInterval)
				log.Warn("status poll failing, backing off", map[string]interface{}{
					"consecutiveErrors": consecutiveErrs,
					"nextInterval":      interval.String(),
					"error":             err.Error(),
				})
			}
			timer.Reset(interval)
			continue
		}

		consecutiveErrs = 0
		interval = p.policy.Interval
		update.Seq = seq
		update.Status = NormalizeStatus(update.RawStatus)
		metrics.PollRequests.WithLabelValues(string(kind), "ok").Inc()

		// Stale snapshot guard: a response whose sequence is not newer than
		// the last applied one, or whose progress regressed without reaching
		// a terminal state, is discarded.
		stale := update.Seq <= lastApplied ||
			(!update.Status.Terminal() && update.Progress < maxProgress)
		if stale {
			log.Debug("discarding stale status snapshot", map[string]interface{}{
				"seq":      update.Seq,
				"progress": update.Progress,
			})
			timer.Reset(interval)
			continue
		}

		lastApplied = update.Seq
		if update.Progress > maxProgress {
			maxProgress = update.Progress
		}

		if onUpdate != nil {
			onUpdate(update)
		}

		if !update.Status.Terminal() {
			timer.Reset(interval)
			continue
		}

		metrics.PollDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

		if update.Status == StatusFailed {
			log.Info("job reached terminal failure", map[string]interface{}{
				"rawStatus": update.RawStatus,
				"attempts":  attempts,
			})
			return nil, stderrors.NewJobFailedError(jobID, update.FailureReason)
		}

		log.Info("job succeeded, fetching result", map[string]interface{}{
			"attempts": attempts,
		})
		result, err := p.api.JobResult(ctx, jobID)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if b > 0 && a > b {
		return b
	}
	return a
}
