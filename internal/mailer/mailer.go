// Package mailer delivers verification links to users.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/mail"

	"github.com/nexusquery/auth-gateway/internal/logger"
	"go.uber.org/zap"
)

// ErrPermanent marks a delivery failure that retrying will not fix.
var ErrPermanent = errors.New("permanent delivery failure")

// Message is a single outgoing email.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var verificationHTML = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html><body>
<p>Welcome to {{.App}}.</p>
<p>Confirm your email address to finish setting up your account:</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>If you did not sign up, ignore this message.</p>
</body></html>`))

// VerificationEmail builds the message carrying link to the address to.
func VerificationEmail(appName, to, link string) (Message, error) {
	if _, err := mail.ParseAddress(to); err != nil {
		return Message{}, fmt.Errorf("%w: invalid recipient: %v", ErrPermanent, err)
	}

	var html bytes.Buffer
	if err := verificationHTML.Execute(&html, struct{ App, Link string }{appName, link}); err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}

	return Message{
		To:      to,
		Subject: "Verify your email for " + appName,
		TextBody: fmt.Sprintf("Welcome to %s.\n\nConfirm your email address by opening this link:\n%s\n\nIf you did not sign up, ignore this message.\n",
			appName, link),
		HTMLBody: html.String(),
	}, nil
}

// LogMailer logs messages instead of sending them.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(l *zap.Logger) *LogMailer {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogMailer{logger: l}
}

// Send logs the recipient and subject. Bodies carry credentials and are
// never logged.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email_not_sent",
		zap.String("to", logger.SanitizeEmail(msg.To)),
		zap.String("subject", logger.SanitizeString(msg.Subject, 200)),
		zap.String("reason", "no smtp server configured"),
	)
	return nil
}
