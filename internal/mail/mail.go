// Package mail delivers account emails. Delivery is best effort: callers go
// through SendQuietly so a failed send never aborts the change that caused it.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/yukikurage/taskflow/internal/config"
	applog "github.com/yukikurage/taskflow/internal/logger"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("SMTP not configured")

// DefaultTimeout bounds a whole SMTP conversation, dial included.
const DefaultTimeout = 10 * time.Second

// Message is a plain text email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer sends a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	timeout time.Duration
}

// New returns an SMTPMailer when a host is configured, otherwise a NoopMailer.
func New(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		return NoopMailer{}
	}
	return &SMTPMailer{cfg: cfg, timeout: DefaultTimeout}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Host == "" || m.cfg.Port == "" {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = m.cfg.From
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		from, strings.Join(msg.To, ", "), msg.Subject, msg.Body)

	if err := m.deliver(ctx, auth, from, msg.To, []byte(body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// deliver runs the SMTP conversation on a connection whose deadline follows
// ctx, so a silent relay cannot hold the caller past the timeout.
func (m *SMTPMailer) deliver(ctx context.Context, auth smtp.Auth, from string, to []string, body []byte) error {
	timeout := m.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.cfg.Host, m.cfg.Port))
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// NoopMailer drops every message.
type NoopMailer struct{}

func (NoopMailer) Send(_ context.Context, msg Message) error {
	applog.Log.Debug("mail delivery disabled, dropping message",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// SendQuietly sends msg and logs a failure instead of returning it.
func SendQuietly(ctx context.Context, m Mailer, msg Message) {
	if m == nil {
		return
	}
	if err := m.Send(ctx, msg); err != nil {
		applog.Log.Warn("failed to send email",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}
