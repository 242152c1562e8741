package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/safefam/api/config"
)

// NewFromConfig picks the transport named by email.provider. An empty
// provider logs messages instead of sending them.
func NewFromConfig(ctx context.Context, cfg config.EmailConfig, logger zerolog.Logger) (Service, error) {
	var sender Sender
	switch cfg.Provider {
	case "smtp":
		sender = NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
		})
	case "ses":
		s, err := NewSESSender(ctx, cfg.SESRegion, cfg.From)
		if err != nil {
			return nil, fmt.Errorf("failed to create SES sender: %w", err)
		}
		sender = s
	case "":
		sender = NewLogSender(logger)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
	return NewService(sender, cfg.AppURL), nil
}
