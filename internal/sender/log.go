package sender

import (
	"context"
	"log/slog"
	"strings"
)

// LogSender writes messages to the log instead of delivering them. Used in
// development where no SMTP relay is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and reports success.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email suppressed, logging instead",
		slog.String("to", strings.Join(msg.To, ",")),
		slog.String("subject", msg.Subject),
	)
	return nil
}
