package email

import "fmt"

// Email is a single outgoing message.
type Email struct {
	To      []string
	Subject string
	Body    string // HTML
}

// Config holds SMTP settings.
type Config struct {
	SMTPHost  string
	SMTPPort  int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func (c Config) Validate() error {
	if c.SMTPHost == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.SMTPPort == 0 {
		return fmt.Errorf("smtp port is required")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// Sender sends email messages.
type Sender interface {
	Send(email *Email) error
}
