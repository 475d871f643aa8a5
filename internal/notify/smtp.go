package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
)

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPMailer sends messages through an SMTP server.
//
// Design decision: We drive net/smtp.Client step by step instead of calling
// smtp.SendMail because:
// 1. SendMail cannot dial with a context, so a hung server would block forever
// 2. SendMail upgrades to TLS whenever offered; tls=false must stay plain
// 3. The EHLO domain must be Domain, not "localhost"
type SMTPMailer struct {
	opts      Options
	logger    *slog.Logger
	dial      func(ctx context.Context, network, addr string) (net.Conn, error)
	tlsConfig *tls.Config
}

// MailerOption configures an SMTPMailer.
type MailerOption func(*SMTPMailer)

// WithMailerLogger sets the logger for delivery progress.
func WithMailerLogger(logger *slog.Logger) MailerOption {
	return func(m *SMTPMailer) {
		m.logger = logger
	}
}

// WithTLSConfig replaces the STARTTLS configuration. ServerName defaults to
// the server address.
func WithTLSConfig(cfg *tls.Config) MailerOption {
	return func(m *SMTPMailer) {
		m.tlsConfig = cfg
	}
}

// NewSMTPMailer returns a mailer for the server described by opts.
func NewSMTPMailer(opts Options, mopts ...MailerOption) *SMTPMailer {
	d := &net.Dialer{}
	m := &SMTPMailer{
		opts:   opts,
		logger: slog.Default(),
		dial:   d.DialContext,
	}
	for _, o := range mopts {
		o(m)
	}
	return m
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	recipients := msg.Recipients()
	if len(recipients) == 0 {
		return ErrNoRecipients
	}
	data, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	addr := m.opts.ServerAddr()
	m.logger.Debug("connecting to SMTP server", "server", addr, "tls", m.opts.TLS)

	conn, err := m.dial(ctx, "tcp", addr)
	if err != nil {
		return m.wrap(ctx, "connect to "+addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Closing the connection unblocks the client when ctx ends mid-session.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, m.opts.ServerAddress)
	if err != nil {
		_ = conn.Close()
		return m.wrap(ctx, "greeting", err)
	}
	defer c.Close()

	if err := c.Hello(Domain); err != nil {
		return m.wrap(ctx, "EHLO", err)
	}

	if m.opts.TLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return ErrSTARTTLSUnsupported
		}
		if err := c.StartTLS(m.tlsConfigFor()); err != nil {
			return m.wrap(ctx, "STARTTLS", err)
		}
	}

	if auth := m.auth(); auth != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return ErrAuthUnsupported
		}
		if err := c.Auth(auth); err != nil {
			return m.wrap(ctx, "AUTH", err)
		}
	}

	if err := c.Mail(msg.From); err != nil {
		return m.wrap(ctx, "MAIL FROM", err)
	}
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt); err != nil {
			return m.wrap(ctx, "RCPT TO "+rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return m.wrap(ctx, "DATA", err)
	}
	if _, err := w.Write(data); err != nil {
		return m.wrap(ctx, "DATA", err)
	}
	if err := w.Close(); err != nil {
		return m.wrap(ctx, "DATA", err)
	}

	m.logger.Debug("message accepted", "server", addr, "recipients", len(recipients))
	return c.Quit()
}

// wrap prefers the context's error, since a cancelled context surfaces as
// a closed-connection error from the client.
func (m *SMTPMailer) wrap(ctx context.Context, step string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("SMTP %s: %w", step, ctxErr)
	}
	return fmt.Errorf("SMTP %s: %w", step, err)
}

func (m *SMTPMailer) tlsConfigFor() *tls.Config {
	if m.tlsConfig != nil {
		cfg := m.tlsConfig.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = m.opts.ServerAddress
		}
		return cfg
	}
	return &tls.Config{
		ServerName: m.opts.ServerAddress,
		MinVersion: tls.VersionTLS12,
	}
}

func (m *SMTPMailer) auth() smtp.Auth {
	switch m.opts.Authentication {
	case AuthPlain:
		return smtp.PlainAuth("", m.opts.Username, m.opts.Password, m.opts.ServerAddress)
	case AuthLogin:
		return &loginAuth{username: m.opts.Username, password: m.opts.Password}
	case AuthCRAMMD5:
		return smtp.CRAMMD5Auth(m.opts.Username, m.opts.Password)
	default:
		return nil
	}
}

// loginAuth implements the LOGIN mechanism, which net/smtp lacks.
type loginAuth struct {
	username string
	password string
}

func (a *loginAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS && !isLocalhost(server.Name) {
		return "", nil, errors.New("LOGIN authentication requires an encrypted connection")
	}
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(string(fromServer))) {
	case "username:", "user name", "username":
		return []byte(a.username), nil
	case "password:", "password":
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedChallenge, fromServer)
	}
}

func isLocalhost(name string) bool {
	return name == "localhost" || name == "127.0.0.1" || name == "::1"
}
