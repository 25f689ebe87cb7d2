package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

func TestSMTPMailerSendsCode(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "mailer",
		Password: "pw",
		From:     "noreply@example.com",
	}, 5*time.Minute)

	var sent *mail.Msg
	m.send = func(_ context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}

	if err := m.SendVerificationCode(context.Background(), "a@example.com", "042917"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent == nil {
		t.Fatalf("expected a message to be sent")
	}

	rcpts, err := sent.GetRecipients()
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if len(rcpts) != 1 || rcpts[0] != "a@example.com" {
		t.Fatalf("unexpected recipients: %v", rcpts)
	}

	var buf bytes.Buffer
	if _, err := sent.WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	raw := buf.String()

	for _, want := range []string{"Subject: " + subject, "Date: ", "Message-ID: ", "042917", "5 minutes"} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected message to contain %q:\n%s", want, raw)
		}
	}
}

func TestSMTPMailerRejectsInvalidSender(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25, From: "not an address"}, time.Minute)
	m.send = func(context.Context, *mail.Msg) error {
		t.Fatalf("send should not be attempted")
		return nil
	}

	if err := m.SendVerificationCode(context.Background(), "a@example.com", "123456"); err == nil {
		t.Fatalf("expected invalid sender to fail")
	}
}

func TestSMTPMailerWrapsErrors(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.com"}, time.Minute)
	boom := errors.New("connection refused")
	m.send = func(context.Context, *mail.Msg) error { return boom }

	err := m.SendVerificationCode(context.Background(), "a@example.com", "123456")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestSMTPMailerPassesContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.com"}, time.Minute)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "req")

	m.send = func(got context.Context, _ *mail.Msg) error {
		if got.Value(ctxKey{}) != "req" {
			t.Fatalf("expected request context to reach the SMTP exchange")
		}
		return nil
	}

	if err := m.SendVerificationCode(ctx, "a@example.com", "123456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@example.com"}, time.Minute)
	m.send = func(context.Context, *mail.Msg) error {
		t.Fatalf("send should not be attempted")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.SendVerificationCode(ctx, "a@example.com", "123456"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSMTPMailerClientOptions(t *testing.T) {
	tests := []struct {
		name string
		cfg  SMTPConfig
		addr string
	}{
		{"starttls with auth", SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Password: "p"}, "smtp.example.com:587"},
		{"implicit tls", SMTPConfig{Host: "smtp.example.com", Port: 465, Secure: true}, "smtp.example.com:465"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSMTPMailer(tt.cfg, time.Minute)

			client, err := mail.NewClient(tt.cfg.Host, m.clientOptions()...)
			if err != nil {
				t.Fatalf("create client: %v", err)
			}
			if got := client.ServerAddr(); got != tt.addr {
				t.Fatalf("expected server address %s, got %s", tt.addr, got)
			}
		})
	}
}

func TestLogMailerLogsCode(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))

	if err := m.SendVerificationCode(context.Background(), "a@example.com", "123456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"code":"123456"`) || !strings.Contains(out, `"email":"a@example.com"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}
