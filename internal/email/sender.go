package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// GomailSender implements Sender over SMTP via gomail.
type GomailSender struct {
	config Config
	dialer *gomail.Dialer
}

func NewGomailSender(config Config) (*GomailSender, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.Username, config.Password)

	return &GomailSender{
		config: config,
		dialer: dialer,
	}, nil
}

func (s *GomailSender) Send(email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
