package email

import (
	"context"

	"github.com/rs/zerolog"
)

type logSender struct {
	logger zerolog.Logger
}

// NewLogSender only logs outgoing mail. Used when no provider is configured.
func NewLogSender(logger zerolog.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(_ context.Context, msg Message) error {
	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email delivery disabled, message not sent")
	return nil
}
