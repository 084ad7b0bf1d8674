package email

import "carsource_backend/internal/logger"

// NoopSender logs instead of sending. Used when email is disabled.
type NoopSender struct{}

func (NoopSender) Send(email *Email) error {
	logger.Debug("email sending disabled, dropping message",
		"to", email.To, "subject", email.Subject)
	return nil
}
