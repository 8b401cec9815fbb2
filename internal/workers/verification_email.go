package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nexusquery/auth-gateway/internal/logger"
	"github.com/nexusquery/auth-gateway/internal/mailer"
	"github.com/nexusquery/auth-gateway/internal/queue"
	"go.uber.org/zap"
)

const defaultRetryDelay = 30 * time.Second

// VerificationEmailWorker delivers verification_email jobs.
type VerificationEmailWorker struct {
	mailer     mailer.Mailer
	jobQueue   queue.JobQueue // For re-enqueueing jobs with delays
	appName    string
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewVerificationEmailWorker creates a worker. jobQueue may be nil, in which
// case transient failures are dead-lettered like permanent ones.
func NewVerificationEmailWorker(m mailer.Mailer, jobQueue queue.JobQueue, appName string, zapLogger *zap.Logger) *VerificationEmailWorker {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &VerificationEmailWorker{
		mailer:     m,
		jobQueue:   jobQueue,
		appName:    appName,
		retryDelay: defaultRetryDelay,
		logger:     zapLogger,
	}
}

// Run processes messages until ctx is done or msgs is closed.
func (w *VerificationEmailWorker) Run(ctx context.Context, msgs <-chan queue.MessageInterface, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Info("message_channel_closed")
				return
			}
			if err := w.ProcessJob(ctx, msg); err != nil {
				w.logger.Error("job_failed",
					zap.Error(err),
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.String("job_type", string(msg.GetJob().Type)),
				)
			}
		}
	}
}

// ProcessJob handles one message and settles it with the broker.
func (w *VerificationEmailWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	switch job.Type {
	case queue.JobTypeVerificationEmail:
		if err := w.deliver(ctx, job); err != nil {
			return w.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		w.logger.Info("verification_email_delivered",
			zap.String("job_id", job.ID.String()),
			zap.String("email", logger.SanitizeEmail(job.Email)),
		)
		return nil

	default:
		// Unknown job type, send to DLQ
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (w *VerificationEmailWorker) deliver(ctx context.Context, job *queue.Job) error {
	if job.Link == "" {
		return fmt.Errorf("%w: job has no link", mailer.ErrPermanent)
	}
	m, err := mailer.VerificationEmail(w.appName, job.Email, job.Link)
	if err != nil {
		return err
	}
	return w.mailer.Send(ctx, m)
}

// handleJobError retries transient failures with a growing delay and sends
// permanent ones to the DLQ.
func (w *VerificationEmailWorker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if errors.Is(err, mailer.ErrPermanent) || !job.CanRetry() {
		w.logger.Warn("job_dead_lettered",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed permanently: %w", err)
	}

	if w.jobQueue != nil {
		retry := *job
		retry.RetryAfter(w.retryDelay * time.Duration(1<<job.RetryCount))
		enqueueErr := w.jobQueue.Enqueue(ctx, &retry)
		if enqueueErr == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				w.logger.Warn("ack_failed", zap.Error(ackErr))
			}
			w.logger.Info("job_rescheduled",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", retry.RetryCount),
				zap.Timep("not_before", retry.NotBefore),
			)
			return fmt.Errorf("job failed (rescheduled): %w", err)
		}
		w.logger.Warn("job_reschedule_failed", zap.Error(enqueueErr))
	}

	// Without a reschedule the retry count cannot advance, so a broker
	// requeue would loop on the same attempt. Dead-letter instead.
	w.logger.Warn("job_dead_lettered",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.String("reason", "reschedule_unavailable"),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		w.logger.Warn("nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (reschedule unavailable): %w", err)
}
