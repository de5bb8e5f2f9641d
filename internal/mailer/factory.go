package mailer

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/smilepoint-dental/contact-service/internal/config"
	"github.com/smilepoint-dental/contact-service/pkg/logging"
)

// NewFromConfig builds the Sender selected by EMAIL_SERVICE. With no service
// configured, messages are logged and reported as sent. With a service
// configured but no API key, every send fails with ErrNotConfigured.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *logging.Logger) (Sender, error) {
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.EmailService {
	case "sendgrid":
		if cfg.EmailAPIKey == "" {
			return &misconfiguredSender{service: "sendgrid", logger: logger}, nil
		}
		return NewSendGridSender(SendGridConfig{
			APIKey:    cfg.EmailAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger), nil

	case "resend":
		if cfg.EmailAPIKey == "" {
			return &misconfiguredSender{service: "resend", logger: logger}, nil
		}
		return NewResendSender(ResendConfig{
			APIKey:    cfg.EmailAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger), nil

	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("mailer: load AWS config: %w", err)
		}
		return NewSESSender(sesv2.NewFromConfig(awsCfg), SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger), nil

	case "":
		return NewLogSender(logger), nil

	default:
		return nil, fmt.Errorf("mailer: unknown EMAIL_SERVICE %q", cfg.EmailService)
	}
}
