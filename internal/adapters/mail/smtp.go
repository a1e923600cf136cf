package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/forgecloud/identity-service/internal/ports"
)

// Config holds SMTP connection settings for the dispatcher.
type Config struct {
	Addr     string // host:port
	Username string
	Password string
	From     string
}

// SMTPDispatcher delivers transactional mail over SMTP. Template rendering
// here is intentionally plain text; styling lives with the provider, not in
// the auth core.
type SMTPDispatcher struct {
	cfg    Config
	sendFn func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPDispatcher builds a dispatcher from explicit configuration. The
// credentials are injected here once; no business logic reads them.
func NewSMTPDispatcher(cfg Config) *SMTPDispatcher {
	return &SMTPDispatcher{cfg: cfg, sendFn: smtp.SendMail}
}

type message struct {
	subject string
	body    string
}

func buildMessage(template ports.MailTemplate, data ports.MailData) (message, error) {
	name := data.DisplayName
	if name == "" {
		name = "there"
	}
	switch template {
	case ports.MailVerificationCode:
		return message{
			subject: "Verify your email address",
			body:    fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in 10 minutes.\n", name, data.Code),
		}, nil
	case ports.MailLoginCode:
		return message{
			subject: "Your login code",
			body:    fmt.Sprintf("Hi %s,\n\nYour login code is %s. It expires in 10 minutes.\n", name, data.Code),
		}, nil
	case ports.MailPasswordResetCode:
		return message{
			subject: "Reset your password",
			body:    fmt.Sprintf("Hi %s,\n\nYour password reset code is %s. It expires in 10 minutes.\n", name, data.Code),
		}, nil
	case ports.MailEmailVerified:
		return message{
			subject: "Email verified",
			body:    fmt.Sprintf("Hi %s,\n\nYour email address has been verified. You can now set a password to activate your account.\n", name),
		}, nil
	case ports.MailPasswordChanged:
		return message{
			subject: "Your password was changed",
			body:    fmt.Sprintf("Hi %s,\n\nYour password was just changed. If this wasn't you, reset it immediately.\n", name),
		}, nil
	}
	return message{}, fmt.Errorf("unknown mail template %q", template)
}

func (d *SMTPDispatcher) Send(ctx context.Context, to string, template ports.MailTemplate, data ports.MailData) error {
	msg, err := buildMessage(template, data)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if d.cfg.Username != "" {
		host := d.cfg.Addr
		if idx := strings.LastIndex(host, ":"); idx > 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, host)
	}

	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		d.cfg.From, to, msg.subject, msg.body)

	if err := d.sendFn(d.cfg.Addr, auth, d.cfg.From, []string{to}, []byte(raw)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	slog.Default().InfoContext(ctx, "mail dispatched",
		"module", "mail",
		"layer", "adapter",
		"operation", "send",
		"outcome", "success",
		"template", string(template),
	)
	return nil
}
