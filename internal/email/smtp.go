package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via smtp: %w", err)
	}
	return nil
}
