package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/smilepoint-dental/contact-service/pkg/logging"
)

// ErrNotConfigured is returned when a provider is selected but its API key is
// missing. Callers treat it like any other dispatch failure.
var ErrNotConfigured = errors.New("mailer: email provider not configured")

// Sender defines the interface for sending emails.
// Implementations can be swapped (SendGrid, Resend, SES) without changing callers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message represents an email to be sent.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
}

// LogSender logs outbound messages instead of sending them. It is the default
// when no email provider is configured.
type LogSender struct {
	logger *logging.Logger
}

// NewLogSender creates a sender that logs but doesn't send.
func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the email and reports success.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("log email sender: would send email", "to", msg.To, "subject", msg.Subject)
	return nil
}

// misconfiguredSender stands in when a provider was selected but no API key
// was supplied. Every send fails so the client sees a dispatch error rather
// than a silently dropped message.
type misconfiguredSender struct {
	service string
	logger  *logging.Logger
}

func (s *misconfiguredSender) Send(ctx context.Context, msg Message) error {
	s.logger.Error("email provider selected but no API key configured", "service", s.service, "to", msg.To)
	return fmt.Errorf("%w: %s", ErrNotConfigured, s.service)
}

var (
	_ Sender = (*LogSender)(nil)
	_ Sender = (*misconfiguredSender)(nil)
)
