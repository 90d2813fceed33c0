package mailer

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Mail is a plain-text message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers mail.
type Sender interface {
	Send(ctx context.Context, m Mail) error
}

// SMTPConfig holds the relay settings. User may be empty for relays that
// accept unauthenticated submission.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTP sends mail through a relay.
type SMTP struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now      func() time.Time
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTP{cfg: cfg, sendMail: smtp.SendMail, now: time.Now}
}

func (s *SMTP) Send(ctx context.Context, m Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(m.To, "\r\n") || strings.ContainsAny(m.Subject, "\r\n") {
		return fmt.Errorf("mailer: header contains line break")
	}
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	if err := s.sendMail(addr, auth, s.cfg.From, []string{m.To}, s.compose(m)); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", m.To, err)
	}
	return nil
}

func (s *SMTP) compose(m Mail) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// New returns an SMTP sender, or Log when no host is configured.
func New(cfg SMTPConfig) Sender {
	if cfg.Host == "" {
		log.Println("mailer: no SMTP host configured, mail is written to the log")
		return Log{}
	}
	return NewSMTP(cfg)
}

// Log records mail in the process log instead of sending it. Used when no
// relay is configured. Bodies can carry reset tokens, so only the envelope
// is written.
type Log struct {
	logf func(format string, args ...any)
}

func (l Log) Send(_ context.Context, m Mail) error {
	logf := l.logf
	if logf == nil {
		logf = log.Printf
	}
	logf("mail not sent (no relay) to=%s subject=%q body=%d bytes", m.To, m.Subject, len(m.Body))
	return nil
}
