// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package mail

import (
	"context"
	"log/slog"
)

// LogTransport records messages in the log instead of sending them. The body
// is never logged because it carries a plaintext password.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport creates a LogTransport. A nil logger uses slog.Default.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTransport{logger: logger}
}

// Send implements Transport.
func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	t.logger.InfoContext(ctx, "email not delivered (log transport)",
		"from", msg.From.String(),
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
