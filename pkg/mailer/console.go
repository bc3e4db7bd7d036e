package mailer

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleMailer logs messages instead of sending them. Development default.
type ConsoleMailer struct {
	logger *zap.Logger
}

// NewConsole builds a console mailer.
func NewConsole(logger *zap.Logger) *ConsoleMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleMailer{logger: logger}
}

// Send writes the message to the log.
func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.logger.Sugar().Infow("email (console)",
		"to", msg.ToEmail,
		"subject", msg.Subject,
		"body", msg.HTML,
	)
	return nil
}
