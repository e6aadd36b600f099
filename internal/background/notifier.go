// internal/background/notifier.go
package background

import (
	"context"
	"fmt"

	awsclients "adgen-orchestrator/internal/common/aws"
	"adgen-orchestrator/internal/common/config"
	"adgen-orchestrator/internal/common/logger"
	"adgen-orchestrator/internal/jobs"
)

// Notifier is told when a tracked job reaches a terminal state.
type Notifier interface {
	NotifyTerminal(ctx context.Context, job *TrackedJob, status jobs.Status) error
}

// NoopNotifier does nothing; used when notifications are disabled.
type NoopNotifier struct{}

func (NoopNotifier) NotifyTerminal(context.Context, *TrackedJob, jobs.Status) error {
	return nil
}

// AWSNotifier delivers terminal-state notices over SES email and SNS SMS,
// whichever channels are enabled and have a destination on the tracked job.
type AWSNotifier struct {
	cfg    config.NotificationConfig
	ses    *awsclients.SESClient
	sns    *awsclients.SNSClient
	logger logger.Logger
}

func NewAWSNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*AWSNotifier, error) {
	n := &AWSNotifier{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
	}

	if cfg.Email.Enabled {
		ses, err := awsclients.NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		n.ses = ses
	}
	if cfg.SMS.Enabled {
		sns, err := awsclients.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		n.sns = sns
	}

	return n, nil
}

func (n *AWSNotifier) NotifyTerminal(ctx context.Context, job *TrackedJob, status jobs.Status) error {
	subject := fmt.Sprintf("Your %s generation is %s", job.Kind, status)
	body := fmt.Sprintf("Job %s finished with status %s.", job.ID, status)

	if n.ses != nil && job.NotifyEmail != "" {
		if err := n.ses.SendPlainEmail(ctx, n.cfg.Email.FromEmail, job.NotifyEmail, subject, body); err != nil {
			n.logger.Warn("email notification failed", map[string]interface{}{
				"jobId": job.ID,
				"error": err.Error(),
			})
		}
	}

	if n.sns != nil && job.NotifyPhone != "" {
		if err := n.sns.PublishSMS(ctx, job.NotifyPhone, body); err != nil {
			n.logger.Warn("sms notification failed", map[string]interface{}{
				"jobId": job.ID,
				"error": err.Error(),
			})
		}
	}

	return nil
}
