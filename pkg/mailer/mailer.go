// Package mailer sends transactional emails over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds the SMTP server settings.
type Config struct {
	Host   string
	Port   string
	User   string
	Pass   string
	Sender string
}

// Mailer sends emails through one SMTP server.
type Mailer struct {
	cfg  Config
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates a Mailer. All Config fields are required.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, fmt.Errorf("SMTP host and port must be provided")
	}
	if cfg.User == "" || cfg.Pass == "" {
		return nil, fmt.Errorf("SMTP username and password must be provided")
	}
	if cfg.Sender == "" {
		return nil, fmt.Errorf("sender email address cannot be empty")
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}, nil
}

// SendEmail sends body to recipient. The Content-Type is text/html when body looks like
// HTML, text/plain otherwise.
func (m *Mailer) SendEmail(recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}

	msg := buildMessage(m.cfg.Sender, recipient, subject, body)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	if err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.Sender, []string{recipient}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(sender, recipient, subject, body string) []byte {
	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}

	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, sender, subject, contentType, body))
}
