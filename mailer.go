package biopass

import (
	"context"
	"fmt"
)

// LogMailer writes outbound mail to the logger instead of delivering it.
// Useful for development and tests; production wires a real provider behind
// the Mailer interface.
type LogMailer struct {
	Logger Logger
}

func (m LogMailer) Send(ctx context.Context, msg Email) error {
	logger := m.Logger
	if logger == nil {
		logger = defLogger{}
	}

	logger.Info("outbound email to %s: %s", msg.To, msg.Subject)
	logger.Debug("outbound email body: %s", msg.Text)
	return nil
}

// BuildResetEmail renders the password-reset message carrying the 6-digit
// code and the 30-minute warning.
func BuildResetEmail(to, fullName, code string) Email {
	text := fmt.Sprintf(
		"Hello %s,\n\nYour password reset code is: %s\n\nThis code expires in 30 minutes.",
		fullName, code,
	)

	html := fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; line-height: 1.6;">
      <h2 style="color: #dc2626;">Password Reset</h2>
      <p>Hello %s,</p>
      <p>You requested a password reset for your biometric access-control account.</p>

      <div style="background-color: #fef2f2; padding: 16px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #dc2626;">
        <p style="margin: 0; font-size: 18px;"><strong>Reset code:</strong></p>
        <p style="margin: 5px 0 0; font-size: 24px; font-weight: bold; color: #dc2626;">%s</p>
      </div>

      <p><strong>Instructions:</strong></p>
      <ol>
        <li>Enter this code on the password reset screen</li>
        <li>The code expires in <strong>30 minutes</strong></li>
        <li>If you did not request a reset, ignore this email</li>
      </ol>

      <p>Regards,<br>Access Control Team</p>
    </div>`, fullName, code)

	return Email{
		To:      to,
		Subject: "Password Reset - Biometric Access Control",
		Text:    text,
		HTML:    html,
	}
}

// BuildWelcomeEmail renders the provisioning message that delivers a new
// person's temporary password.
func BuildWelcomeEmail(to, fullName, temporaryPassword string) Email {
	text := fmt.Sprintf(
		"Hello %s,\n\nYour account was created. Temporary password: %s\n\nYou will be asked to change it on first login.",
		fullName, temporaryPassword,
	)

	html := fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; line-height: 1.6;">
      <h2 style="color: #2563eb;">Welcome</h2>
      <p>Hello %s,</p>
      <p>Your account on the biometric access-control system was created.</p>

      <div style="background-color: #eff6ff; padding: 16px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #2563eb;">
        <p style="margin: 0; font-size: 18px;"><strong>Temporary password:</strong></p>
        <p style="margin: 5px 0 0; font-size: 24px; font-weight: bold; color: #2563eb;">%s</p>
      </div>

      <p>You will be asked to change it on first login.</p>

      <p>Regards,<br>Access Control Team</p>
    </div>`, fullName, temporaryPassword)

	return Email{
		To:      to,
		Subject: "Welcome - Biometric Access Control",
		Text:    text,
		HTML:    html,
	}
}
