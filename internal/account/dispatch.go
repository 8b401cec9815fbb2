package account

import (
	"context"

	"github.com/nexusquery/auth-gateway/internal/logger"
	"go.uber.org/zap"
)

// LinkDispatcher hands a verification link to whatever delivers it.
type LinkDispatcher interface {
	DispatchVerificationLink(ctx context.Context, email, link string) error
}

// LogDispatcher records that a link was generated without delivering it.
// It is used when no message broker is configured.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher(l *zap.Logger) *LogDispatcher {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogDispatcher{logger: l}
}

// DispatchVerificationLink logs the event. The link itself is a credential
// and is never logged.
func (d *LogDispatcher) DispatchVerificationLink(_ context.Context, email, link string) error {
	d.logger.Info("verification_link_generated",
		zap.String("email", logger.SanitizeEmail(email)),
		zap.Int("link_length", len(link)),
		zap.String("delivery", "none"),
	)
	return nil
}
