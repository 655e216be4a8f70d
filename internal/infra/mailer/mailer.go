package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/harborexpo/backend/internal/config"
)

// Sender delivers a single notification email. Delivery is best-effort: the
// workflow that triggered the send never depends on the outcome.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPSender struct {
	addr string
	from string
}

func NewSMTPSender(host string, port int, from string) *SMTPSender {
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
	}
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("recipient address is required")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	if err := smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail via %s: %w", s.addr, err)
	}
	return nil
}

// LogSender is the dev fallback: it records the message instead of sending.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("mail_send",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_len", len(body)),
	)
	return nil
}

// LoggingSender wraps another Sender and records delivery failures. Callers
// treat notification mail as best-effort, so errors stop here.
type LoggingSender struct {
	inner  Sender
	logger *zap.Logger
}

func NewLoggingSender(inner Sender, logger *zap.Logger) *LoggingSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingSender{inner: inner, logger: logger}
}

func (s *LoggingSender) Send(ctx context.Context, to, subject, body string) error {
	if s.inner == nil {
		return nil
	}
	if err := s.inner.Send(ctx, to, subject, body); err != nil {
		s.logger.Warn("mail_send_failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func NewSender(cfg config.SMTPConfig, logger *zap.Logger) Sender {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "smtp":
		return NewLoggingSender(NewSMTPSender(cfg.Host, cfg.Port, cfg.From), logger)
	default:
		return NewLogSender(logger)
	}
}
