package mail

import (
	"context"
	"errors"
	"net"
	"net/smtp"
	"strconv"
)

// ErrSMTPHostPortRequired is returned when Host/Port are missing.
var ErrSMTPHostPortRequired = errors.New("smtp host and port are required")

// SMTPConfig configures the SMTP relay used for OTP mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // used when Message.From is empty
}

// SMTP relays mail through a single SMTP server. PLAIN auth is used only when
// both Username and Password are set.
type SMTP struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, raw []byte) error
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	return &SMTP{cfg: cfg, send: smtp.SendMail}, nil
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from, err := resolveSender(msg, s.cfg.From)
	if err != nil {
		return err
	}

	var a smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		a = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	return s.send(addr, a, from, msg.recipients(), compose(from, msg))
}

func (s *SMTP) Close() error { return nil }
