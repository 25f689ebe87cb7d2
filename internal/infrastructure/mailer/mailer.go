// Package mailer delivers verification codes by SMTP, or to the log when no
// SMTP server is configured.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

const (
	subject = "[Ourllet] Your verification code"

	dialTimeout = 10 * time.Second
)

// SMTPConfig holds SMTP connection settings. Secure selects implicit TLS
// (usually port 465); otherwise STARTTLS is used when the server offers it.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Secure   bool
}

type sendFunc func(ctx context.Context, msg *mail.Msg) error

// SMTPMailer implements usecase.Mailer over SMTP.
type SMTPMailer struct {
	cfg     SMTPConfig
	codeTTL time.Duration
	send    sendFunc
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig, codeTTL time.Duration) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg, codeTTL: codeTTL}
	m.send = m.dialAndSend
	return m
}

// SendVerificationCode mails code to email. The SMTP exchange is bound to ctx.
func (m *SMTPMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.message(email, code)
	if err != nil {
		return err
	}

	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}

	return nil
}

func (m *SMTPMailer) message(to, code string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Your verification code is %s.\r\nIt expires in %d minutes.\r\n",
		code, int(m.codeTTL.Minutes()),
	))

	return msg, nil
}

func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithTimeout(dialTimeout)}

	if m.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	opts = append(opts, mail.WithPort(m.cfg.Port))

	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Password),
		)
	}

	return opts
}

// LogMailer implements usecase.Mailer by logging the code. For development.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a new LogMailer.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendVerificationCode logs the code at warn level.
func (m *LogMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.logger.Warn().
		Str("email", email).
		Str("code", code).
		Msg("SMTP not configured, verification code not mailed")
	return nil
}
