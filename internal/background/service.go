// internal/background/service.go
package background

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"adgen-orchestrator/internal/common/database"
	"adgen-orchestrator/internal/common/logger"
	"adgen-orchestrator/internal/common/metrics"
	"adgen-orchestrator/internal/jobs"
	"adgen-orchestrator/internal/store"
)

const (
	trackedSetKey    = "adgen:background:tracked"
	trackedJobPrefix = "adgen:background:job:"
	trackedJobTTL    = 24 * time.Hour
)

// TrackedJob is one job the background service watches to completion.
type TrackedJob struct {
	ID          string    `json:"id"`
	Kind        jobs.Kind `json:"kind"`
	SubmittedAt time.Time `json:"submittedAt"`
	NotifyEmail string    `json:"notifyEmail,omitempty"`
	NotifyPhone string    `json:"notifyPhone,omitempty"`
}

// TerminalObserver records measurements when a tracked job reaches a terminal
// state. Satisfied by observability.Observability.
type TerminalObserver interface {
	RecordJob(ctx context.Context, kind, status string)
	RecordJobDuration(ctx context.Context, duration time.Duration, kind string)
}

// UsageInvalidator drops cached account usage once a finished job has changed
// credit consumption. Satisfied by store.CachedUsage.
type UsageInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service is the app-lifecycle-scoped background poller. It is owned by the
// process entry point, started once, and stopped on shutdown; no component
// owns it and it is injected where needed rather than imported as a global.
// The tracked-job set lives in Redis so a restart resumes watching in-flight
// jobs.
type Service struct {
	api      jobs.StatusFetcher
	redis    *database.RedisClient
	history  *store.HistoryStore // optional
	notifier Notifier
	obs      TerminalObserver // optional
	usage    UsageInvalidator // optional
	interval time.Duration
	logger   logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewService(api jobs.StatusFetcher, redis *database.RedisClient, history *store.HistoryStore, notifier Notifier, obs TerminalObserver, usage UsageInvalidator, interval time.Duration, log logger.Logger) *Service {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Service{
		api:      api,
		redis:    redis,
		history:  history,
		notifier: notifier,
		obs:      obs,
		usage:    usage,
		interval: interval,
		logger:   log.WithFields(map[string]interface{}{"component": "background-poller"}),
	}
}

// Start launches the polling loop. Starting an already-running service is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(runCtx)
	s.logger.Info("background poller started", map[string]interface{}{
		"interval": s.interval.String(),
	})
}

// Stop halts the polling loop and waits for the in-flight sweep to finish.
// Stopping a stopped service is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("background poller stopped", nil)
}

// Track registers a job for background polling. The job survives restarts via Redis.
func (s *Service) Track(ctx context.Context, job *TrackedJob) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, trackedJobPrefix+job.ID, payload, trackedJobTTL); err != nil {
		return err
	}
	if err := s.redis.SAdd(ctx, trackedSetKey, job.ID); err != nil {
		return err
	}

	s.updateGauge(ctx)
	return nil
}

// Tracked returns the IDs currently being watched.
func (s *Service) Tracked(ctx context.Context) ([]string, error) {
	return s.redis.SMembers(ctx, trackedSetKey)
}

func (s *Service) untrack(ctx context.Context, jobID string) {
	_ = s.redis.SRem(ctx, trackedSetKey, jobID)
	_ = s.redis.Del(ctx, trackedJobPrefix+jobID)
	s.updateGauge(ctx)
}

func (s *Service) updateGauge(ctx context.Context) {
	if ids, err := s.redis.SMembers(ctx, trackedSetKey); err == nil {
		metrics.BackgroundJobsTracked.Set(float64(len(ids)))
	}
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep polls every tracked job once. Transient errors leave the job tracked
// for the next sweep; terminal states untrack, record history, and notify.
func (s *Service) sweep(ctx context.Context) {
	ids, err := s.redis.SMembers(ctx, trackedSetKey)
	if err != nil {
		s.logger.Warn("failed to load tracked jobs", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		s.poll(ctx, id)
	}
}

func (s *Service) poll(ctx context.Context, jobID string) {
	job := s.loadJob(ctx, jobID)

	update, err := s.api.JobStatus(ctx, jobID)
	if err != nil {
		metrics.PollRequests.WithLabelValues(string(job.Kind), "error").Inc()
		return
	}
	update.Status = jobs.NormalizeStatus(update.RawStatus)
	metrics.PollRequests.WithLabelValues(string(job.Kind), "ok").Inc()

	if !update.Status.Terminal() {
		return
	}

	s.logger.Info("tracked job reached terminal state", map[string]interface{}{
		"jobId":  jobID,
		"status": update.Status.String(),
	})
	metrics.JobsCompleted.WithLabelValues(string(job.Kind), update.Status.String()).Inc()
	if s.obs != nil {
		s.obs.RecordJob(ctx, string(job.Kind), update.Status.String())
		s.obs.RecordJobDuration(ctx, time.Since(job.SubmittedAt), string(job.Kind))
	}

	imageCount := 0
	creditsUsed := 0
	if update.Status == jobs.StatusSucceeded {
		if result, err := s.api.JobResult(ctx, jobID); err == nil {
			imageCount = len(result.Images)
			creditsUsed = result.CreditsUsed
		}
	}

	if s.history != nil {
		entry := &store.HistoryEntry{
			JobID:       jobID,
			Kind:        job.Kind,
			Status:      update.Status.String(),
			ImageCount:  imageCount,
			CreditsUsed: creditsUsed,
			SubmittedAt: job.SubmittedAt,
		}
		if err := s.history.Record(ctx, entry); err != nil {
			s.logger.Warn("history record failed", map[string]interface{}{
				"jobId": jobID,
				"error": err.Error(),
			})
		}
	}

	if err := s.notifier.NotifyTerminal(ctx, job, update.Status); err != nil {
		s.logger.Warn("terminal notification failed", map[string]interface{}{
			"jobId": jobID,
			"error": err.Error(),
		})
	}

	// The finished job changed credit consumption; the next usage check must
	// hit the backend.
	if s.usage != nil {
		s.usage.Invalidate(ctx)
	}

	s.untrack(ctx, jobID)
}

func (s *Service) loadJob(ctx context.Context, jobID string) *TrackedJob {
	job := &TrackedJob{ID: jobID, SubmittedAt: time.Now().UTC()}
	if raw, err := s.redis.Get(ctx, trackedJobPrefix+jobID); err == nil {
		_ = json.Unmarshal([]byte(raw), job)
	}
	job.ID = jobID
	return job
}
