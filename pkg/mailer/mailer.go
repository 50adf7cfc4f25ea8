// Package mailer sends e-mail over SMTP. The defaults point at Mailtrap
// (smtp.mailtrap.io:2525), which is what development and staging use.
package mailer

import (
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Config holds SMTP settings.
type Config struct {
	Host   string
	Port   int
	User   string
	Pass   string
	Sender string
}

// Mailer sends messages with PLAIN auth.
type Mailer struct {
	cfg  Config
	send SendFunc
}

// New returns a Mailer. A nil send uses smtp.SendMail.
func New(cfg Config, send SendFunc) (*Mailer, error) {
	if cfg.Host == "" {
		cfg.Host = "smtp.mailtrap.io"
	}
	if cfg.Port == 0 {
		cfg.Port = 2525
	}
	if cfg.Sender == "" {
		return nil, errors.New("sender email address cannot be empty")
	}
	if cfg.User == "" || cfg.Pass == "" {
		return nil, errors.New("SMTP username and password must be provided")
	}
	if send == nil {
		send = smtp.SendMail
	}
	return &Mailer{cfg: cfg, send: send}, nil
}

// Send delivers a single message. HTML bodies are detected from <html> or <p> tags.
func (m *Mailer) Send(recipient, subject, body string) error {
	if recipient == "" {
		return errors.New("recipient email address cannot be empty")
	}
	if subject == "" {
		return errors.New("email subject cannot be empty")
	}

	msg := BuildMessage(m.cfg.Sender, recipient, subject, body)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)

	if err := m.send(addr, auth, m.cfg.Sender, []string{recipient}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// BuildMessage renders the RFC 822 message.
func BuildMessage(sender, recipient, subject, body string) []byte {
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
