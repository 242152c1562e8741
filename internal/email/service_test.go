package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/config"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestService_SendVerificationLink(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "https://app.safefam.test/")

	require.NoError(t, svc.SendVerification(context.Background(), "ann@example.com", "tok en"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ann@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "https://app.safefam.test/auth/verify-email?token=tok+en")
}

func TestService_SendPasswordReset(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "http://localhost:3000")

	require.NoError(t, svc.SendPasswordReset(context.Background(), "ann@example.com", "abc"))
	assert.Equal(t, "Reset your SafeFam password", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Body, "http://localhost:3000/auth/reset-password?token=abc")
}

func TestService_PropagatesSenderError(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	svc := NewService(sender, "http://localhost")

	err := svc.SendCustom(context.Background(), "a@b.c", "s", "b")
	assert.EqualError(t, err, "smtp down")
}

type fakeSES struct {
	input *sesv2.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	return &sesv2.SendEmailOutput{}, nil
}

func TestSESSender_BuildsSimpleMessage(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSenderWithClient(client, "no-reply@safefam.test")

	require.NoError(t, sender.Send(context.Background(), Message{To: "ann@example.com", Subject: "Hi", Body: "Body"}))
	require.NotNil(t, client.input)
	assert.Equal(t, "no-reply@safefam.test", *client.input.FromEmailAddress)
	assert.Equal(t, []string{"ann@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hi", *client.input.Content.Simple.Subject.Data)
	assert.Equal(t, "Body", *client.input.Content.Simple.Body.Text.Data)
}

func TestLogSender_NeverFails(t *testing.T) {
	sender := NewLogSender(zerolog.Nop())
	assert.NoError(t, sender.Send(context.Background(), Message{To: "x@y.z"}))
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()

	svc, err := NewFromConfig(ctx, config.EmailConfig{AppURL: "http://app"}, zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, svc.SendWelcome(ctx, "a@example.com", "Alex"))

	svc, err = NewFromConfig(ctx, config.EmailConfig{Provider: "smtp", SMTPHost: "localhost", SMTPPort: 2525}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, svc)

	_, err = NewFromConfig(ctx, config.EmailConfig{Provider: "fax"}, zerolog.Nop())
	assert.Error(t, err)
}
