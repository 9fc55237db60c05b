// Package mail delivers the transactional emails of the invitation and
// password flows. Failures are logged, not surfaced: email delivery is
// best-effort and never blocks a state transition.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/expodesk/expodesk/internal/config"
	log "github.com/sirupsen/logrus"
)

// Sender delivers a plain-text email to a single recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a configured SMTP relay.
type SMTPSender struct {
	cfg config.MailConfig
}

// NewSMTPSender constructs an SMTPSender.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers the message via SMTP with PLAIN auth when credentials are set.
func (s *SMTPSender) Send(to, subject, body string) error {
	from := strings.TrimSpace(s.cfg.From)
	if from == "" {
		from = "no-reply@expodesk.local"
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// LogSender writes mail to the log instead of the network. Used in
// development and tests where no relay is configured.
type LogSender struct{}

// Send logs the message.
func (LogSender) Send(to, subject, body string) error {
	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("mail (log sender)")
	log.Debug(body)
	return nil
}

// NewSender picks an SMTP sender when a host is configured, otherwise the
// log sender.
func NewSender(cfg config.MailConfig) Sender {
	if strings.TrimSpace(cfg.Host) == "" {
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}
