package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/nexusquery/auth-gateway/internal/logger"
	"go.uber.org/zap"
)

// Dispatcher enqueues verification links for the worker to deliver.
type Dispatcher struct {
	queue  JobQueue
	ttl    time.Duration
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher. ttl <= 0 selects DefaultJobTTL.
func NewDispatcher(queue JobQueue, ttl time.Duration, l *zap.Logger) *Dispatcher {
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Dispatcher{queue: queue, ttl: ttl, logger: l}
}

// DispatchVerificationLink enqueues a verification_email job.
func (d *Dispatcher) DispatchVerificationLink(ctx context.Context, email, link string) error {
	job := NewVerificationEmailJob(email, link, d.ttl)
	if err := d.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue verification email: %w", err)
	}
	d.logger.Info("verification_email_enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("email", logger.SanitizeEmail(email)),
	)
	return nil
}
