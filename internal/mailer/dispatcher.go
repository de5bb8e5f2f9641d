package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/smilepoint-dental/contact-service/pkg/logging"
)

// Submission carries the user-supplied contact fields the dispatcher forwards.
// Values arrive validated but unsanitized; the dispatcher escapes them before
// composing the outbound message.
type Submission struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
	Branch  string
}

// Dispatcher sanitizes a submission, routes it to the right mailbox and hands
// it to the configured sender. One delivery attempt, no retries.
type Dispatcher struct {
	sender Sender
	routes Routes
	logger *logging.Logger
}

// NewDispatcher creates a dispatcher over the given sender and routing table.
func NewDispatcher(sender Sender, routes Routes, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		sender: sender,
		routes: routes,
		logger: logger,
	}
}

// Dispatch forwards the submission as a plaintext email.
func (d *Dispatcher) Dispatch(ctx context.Context, sub Submission) error {
	msg := d.compose(sub)

	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailer: dispatch failed: %w", err)
	}

	d.logger.Info("contact submission dispatched", "to", msg.To, "branch", sub.Branch)
	return nil
}

func (d *Dispatcher) compose(sub Submission) Message {
	name := EscapeEntities(sub.Name)
	message := EscapeEntities(sub.Message)

	subject := "New contact form enquiry"
	if sub.Subject != "" {
		subject = "Contact form: " + EscapeEntities(sub.Subject)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "New enquiry via the practice website\n\n")
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Email: %s\n", sub.Email)
	if sub.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", EscapeEntities(sub.Phone))
	}
	if sub.Branch != "" {
		fmt.Fprintf(&b, "Branch: %s\n", EscapeEntities(sub.Branch))
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n", message)

	return Message{
		To:      d.routes.To(sub.Branch),
		ToName:  "Reception",
		Subject: subject,
		Body:    b.String(),
	}
}
