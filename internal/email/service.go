package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message over some transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Service interface {
	SendVerification(ctx context.Context, email string, token string) error
	SendPasswordReset(ctx context.Context, email string, token string) error
	SendWelcome(ctx context.Context, email string, name string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type service struct {
	sender Sender
	appURL string
}

// NewService renders the account emails and hands them to sender. Links
// point at appURL.
func NewService(sender Sender, appURL string) Service {
	return &service{sender: sender, appURL: strings.TrimRight(appURL, "/")}
}

func (s *service) link(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", s.appURL, path, url.QueryEscape(token))
}

func (s *service) SendVerification(ctx context.Context, email string, token string) error {
	body := fmt.Sprintf(`Welcome to SafeFam!

Please confirm your email address by opening the link below:

%s

This link expires in 48 hours. If you did not create an account you can ignore this email.
`, s.link("/auth/verify-email", token))

	return s.sender.Send(ctx, Message{To: email, Subject: "Confirm your SafeFam email", Body: body})
}

func (s *service) SendPasswordReset(ctx context.Context, email string, token string) error {
	body := fmt.Sprintf(`We received a request to reset your SafeFam password.

Open the link below to choose a new one:

%s

This link expires in 1 hour. If you did not ask for a reset you can ignore this email.
`, s.link("/auth/reset-password", token))

	return s.sender.Send(ctx, Message{To: email, Subject: "Reset your SafeFam password", Body: body})
}

func (s *service) SendWelcome(ctx context.Context, email string, name string) error {
	greeting := "Hi"
	if name != "" {
		greeting = "Hi " + name
	}
	body := fmt.Sprintf(`%s,

Your email is confirmed. Sign in at %s to set up your family and start tracking medications, appointments and vaccinations.
`, greeting, s.appURL)

	return s.sender.Send(ctx, Message{To: email, Subject: "Welcome to SafeFam", Body: body})
}

func (s *service) SendCustom(ctx context.Context, to string, subject string, content string) error {
	return s.sender.Send(ctx, Message{To: to, Subject: subject, Body: content})
}
