package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds SMTP connection settings and the notification recipient.
type Config struct {
	Host        string
	Port        int
	User        string
	Pass        string
	FromAddress string
	FromName    string
	To          string
}

// Message is a single outbound plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer sends plain-text email over SMTP.
type Mailer struct {
	cfg Config

	// sendFn is swapped out in tests.
	sendFn func(msg Message) error
}

func New(cfg Config) *Mailer {
	m := &Mailer{cfg: cfg}
	m.sendFn = m.smtpSend
	return m
}

func (m *Mailer) send(msg Message) error {
	return m.sendFn(msg)
}

func (m *Mailer) smtpSend(msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	return smtp.SendMail(addr, auth, m.cfg.FromAddress, msg.To, []byte(m.formatMessage(msg)))
}

func (m *Mailer) formatMessage(msg Message) string {
	from := m.cfg.FromAddress
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromAddress)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(msg.Body)
	return sb.String()
}
