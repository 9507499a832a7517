// Package mail sends password-reset email over SMTP.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Config holds SMTP connection settings. Host and From are required;
// Username enables PLAIN authentication.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL of the web UI the reset link points at.
	BaseURL string
}

// SMTPMailer delivers password-reset mail through an SMTP relay with
// STARTTLS.
type SMTPMailer struct {
	cfg Config
	log *slog.Logger
}

// NewSMTPMailer creates a mailer for the given SMTP relay.
func NewSMTPMailer(cfg Config, log *slog.Logger) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg, log: log.With("component", "mail")}
}

// SendPasswordReset emails a reset link carrying the token to the recipient.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/auth/resetpassword?token=%s", strings.TrimRight(m.cfg.BaseURL, "/"), token)
	msg := m.buildMessage(to, "Reset your password",
		"A password reset was requested for your account.\r\n\r\n"+
			"To choose a new password, open the link below:\r\n\r\n"+
			link+"\r\n\r\n"+
			"If you did not request this, you can ignore this message.\r\n")

	var auth sasl.Client
	if m.cfg.Username != "" {
		auth = sasl.NewPlainClient("", m.cfg.Username, m.cfg.Password)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.cfg.From, []string{to}, strings.NewReader(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send reset mail: %w", err)
		}
		m.log.InfoContext(ctx, "sent password reset email")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SMTPMailer) buildMessage(to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
