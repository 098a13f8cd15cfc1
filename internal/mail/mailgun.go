// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package mail

import (
	"context"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/samber/oops"
)

// MailgunTransport delivers mail through the Mailgun HTTP API.
type MailgunTransport struct {
	mg mailgun.Mailgun
}

// NewMailgunTransport creates a transport for domain. An empty apiBase keeps
// Mailgun's default US endpoint.
func NewMailgunTransport(domain, apiKey, apiBase string) (*MailgunTransport, error) {
	if domain == "" {
		return nil, oops.Errorf("mailgun domain is required")
	}
	if apiKey == "" {
		return nil, oops.Errorf("mailgun API key is required")
	}
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	return &MailgunTransport{mg: mg}, nil
}

// Send implements Transport.
func (t *MailgunTransport) Send(ctx context.Context, msg Message) error {
	m := t.mg.NewMessage(msg.From.String(), msg.Subject, "", msg.To)
	m.SetHtml(msg.HTML)

	if _, _, err := t.mg.Send(ctx, m); err != nil {
		return oops.With("provider", "mailgun").Wrap(err)
	}
	return nil
}
