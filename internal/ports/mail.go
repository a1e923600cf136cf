package ports

import "context"

// MailTemplate selects one of the transactional messages the flows send.
type MailTemplate string

const (
	MailVerificationCode  MailTemplate = "verification-code"
	MailLoginCode         MailTemplate = "login-code"
	MailPasswordResetCode MailTemplate = "password-reset-code"
	MailEmailVerified     MailTemplate = "email-verified"
	MailPasswordChanged   MailTemplate = "password-changed"
)

// MailData carries the per-message substitution values.
type MailData struct {
	DisplayName string
	Code        string
}

// MailDispatcher delivers one templated message to one address. The flows
// await code-delivery sends before deciding a step's outcome; confirmation
// sends are best-effort.
type MailDispatcher interface {
	Send(ctx context.Context, to string, template MailTemplate, data MailData) error
}
