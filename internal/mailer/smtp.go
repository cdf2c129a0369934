// Package mailer delivers send tasks over SMTP. It owns message
// construction (headers, MIME attachment encoding) and the server
// conversation; retry policy lives with the caller.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/invoicepost/internal/model"
)

const dialTimeout = 15 * time.Second

type Config struct {
	Host string
	Port int
	User string
	Pass string
	TLS  bool // explicit STARTTLS before anything else
	From string
}

// NewConfigFromSettings extracts the transport part of the app settings.
func NewConfigFromSettings(s *model.AppSettings) Config {
	return Config{
		Host: s.SMTPHost,
		Port: s.SMTPPort,
		User: s.SMTPUser,
		Pass: s.SMTPPass,
		TLS:  s.SMTPTLS,
		From: s.FromAddress,
	}
}

// Sender is the SMTP transport.
type Sender struct {
	cfg Config
}

func New(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

// Send builds the multipart message for one task, attaching the invoice
// file from disk, and delivers it to all of the task's recipients.
func (s *Sender) Send(ctx context.Context, task model.SendTask) error {
	msg, err := s.formatMessage(task)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	return s.deliver(ctx, task.Recipients, msg)
}

// Ping connects and authenticates without sending anything. Used by the
// settings form's "test connection" action.
func (s *Sender) Ping(ctx context.Context) error {
	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Quit()
}

func (s *Sender) deliver(ctx context.Context, recipients []string, msg []byte) error {
	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return c.Quit()
}

// connect dials the server, upgrades to TLS when configured and logs in
// when a username is set. Servers without auth are left alone, matching
// internal relays that accept unauthenticated mail.
func (s *Sender) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", addr, err)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}

	if s.cfg.TLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			c.Close()
			return nil, fmt.Errorf("smtp server %s does not support STARTTLS", s.cfg.Host)
		}
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			c.Close()
			return nil, fmt.Errorf("smtp STARTTLS: %w", err)
		}
	}

	if s.cfg.User != "" {
		auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			c.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}
	return c, nil
}
