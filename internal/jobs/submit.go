// internal/jobs/submit.go
package jobs

import (
	"context"

	stderrors "adgen-orchestrator/internal/common/errors"
	"adgen-orchestrator/internal/common/logger"
	"adgen-orchestrator/internal/common/metrics"

	"github.com/google/uuid"
)

// SubmitClient is the slice of the API client the submitter needs.
type SubmitClient interface {
	SubmitJob(ctx context.Context, req *SubmitRequest) (string, error)
}

// ConfirmFunc asks the user whether to proceed with billed overage. It is
// invoked at most once per submission and its answer is binding: true means
// resubmit with the overage flag, false means abandon the submission.
type ConfirmFunc func(ctx context.Context, overage *stderrors.OverageError) (bool, error)

// Submitter wraps job submission with the one real business rule of this
// product: no job may incur billing overage without an interactive
// confirmation step. A 402 overage response never silently drops the request;
// it either surfaces the confirmation or, after consent, resubmits the
// identical parameters with AllowOverage set and the same idempotency key.
type Submitter struct {
	api     SubmitClient
	confirm ConfirmFunc
	logger  logger.Logger
}

func NewSubmitter(api SubmitClient, confirm ConfirmFunc, log logger.Logger) *Submitter {
	return &Submitter{
		api:     api,
		confirm: confirm,
		logger:  log.WithFields(map[string]interface{}{"component": "submitter"}),
	}
}

// Submit creates a job and returns its normalized identifier. The request is
// never mutated except for assigning a missing idempotency key and, after
// explicit consent, setting AllowOverage for the single resubmission.
func (s *Submitter) Submit(ctx context.Context, req *SubmitRequest) (string, error) {
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}

	metrics.JobsSubmitted.WithLabelValues(string(req.Kind)).Inc()

	jobID, err := s.api.SubmitJob(ctx, req)
	if err == nil {
		return jobID, nil
	}

	overage, ok := stderrors.IsOverage(err)
	if !ok || req.AllowOverage {
		return "", err
	}

	if s.confirm == nil {
		metrics.OverageConfirmations.WithLabelValues("unhandled").Inc()
		return "", err
	}

	s.logger.Info("overage confirmation required", map[string]interface{}{
		"jobKind":        string(req.Kind),
		"overageCredits": overage.Credits,
		"costTotal":      overage.CostTotal,
		"currency":       overage.Currency,
	})

	consent, err := s.confirm(ctx, overage)
	if err != nil {
		metrics.OverageConfirmations.WithLabelValues("error").Inc()
		return "", err
	}
	if !consent {
		metrics.OverageConfirmations.WithLabelValues("declined").Inc()
		return "", stderrors.Normalize(overage)
	}

	metrics.OverageConfirmations.WithLabelValues("accepted").Inc()

	// Same parameters, same idempotency key, flag added. At most one retry.
	req.AllowOverage = true
	return s.api.SubmitJob(ctx, req)
}
