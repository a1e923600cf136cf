package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/forgecloud/identity-service/internal/ports"
)

func TestSendBuildsTemplatedMessage(t *testing.T) {
	t.Parallel()

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	d := NewSMTPDispatcher(Config{Addr: "mail.example.com:587", From: "no-reply@example.com"})
	d.sendFn = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := d.Send(context.Background(), "user@example.com", ports.MailVerificationCode, ports.MailData{
		DisplayName: "Test User",
		Code:        "123456",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotAddr != "mail.example.com:587" || gotFrom != "no-reply@example.com" {
		t.Fatalf("unexpected connection params: %q %q", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "user@example.com" {
		t.Fatalf("unexpected recipients: %v", gotTo)
	}
	raw := string(gotMsg)
	if !strings.Contains(raw, "Subject: Verify your email address") {
		t.Fatalf("missing subject header: %q", raw)
	}
	if !strings.Contains(raw, "123456") || !strings.Contains(raw, "Test User") {
		t.Fatalf("body missing substitutions: %q", raw)
	}
}

func TestSendPropagatesTransportFailure(t *testing.T) {
	t.Parallel()

	d := NewSMTPDispatcher(Config{Addr: "mail.example.com:587", From: "no-reply@example.com"})
	d.sendFn = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := d.Send(context.Background(), "user@example.com", ports.MailLoginCode, ports.MailData{Code: "123456"})
	if err == nil || !strings.Contains(err.Error(), "smtp send") {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestBuildMessageCoversAllTemplates(t *testing.T) {
	t.Parallel()

	templates := []ports.MailTemplate{
		ports.MailVerificationCode,
		ports.MailLoginCode,
		ports.MailPasswordResetCode,
		ports.MailEmailVerified,
		ports.MailPasswordChanged,
	}
	for _, template := range templates {
		msg, err := buildMessage(template, ports.MailData{DisplayName: "User", Code: "654321"})
		if err != nil {
			t.Fatalf("template %q failed: %v", template, err)
		}
		if msg.subject == "" || msg.body == "" {
			t.Fatalf("template %q produced empty message", template)
		}
	}

	if _, err := buildMessage(ports.MailTemplate("nonsense"), ports.MailData{}); err == nil {
		t.Fatalf("unknown template should fail")
	}
}

func TestAnonymousGreetingFallback(t *testing.T) {
	t.Parallel()

	msg, err := buildMessage(ports.MailVerificationCode, ports.MailData{Code: "123456"})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.Contains(msg.body, "Hi there,") {
		t.Fatalf("expected neutral greeting, got %q", msg.body)
	}
}
