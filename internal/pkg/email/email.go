package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Message is a rendered email
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures a Sender
type Config struct {
	Provider       string // log, smtp or sendgrid
	FromEmail      string
	FromName       string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPUseTLS     bool
	SendgridAPIKey string
}

// NewSender builds the sender named by cfg.Provider
func NewSender(cfg Config, logger zerolog.Logger) (Sender, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "log":
		return NewLogSender(logger), nil
	case "smtp":
		return NewSMTPSender(SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromName:  cfg.FromName,
			FromEmail: cfg.FromEmail,
			UseTLS:    cfg.SMTPUseTLS,
		}, logger), nil
	case "sendgrid":
		return NewSendgridSender(cfg.SendgridAPIKey, cfg.FromName, cfg.FromEmail), nil
	}
	return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
}

// LogSender writes messages to the log instead of delivering them
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info().
		Str("toEmail", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.TextBody).
		Msg("Email provider is log - message not delivered")
	return nil
}
