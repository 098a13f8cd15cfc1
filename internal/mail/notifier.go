// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package mail

import (
	"context"
	"fmt"

	"github.com/samber/oops"

	"github.com/ccaw/speakerauth/internal/auth"
	"github.com/ccaw/speakerauth/internal/observability"
)

// Notification kinds used as metric labels.
const (
	KindCopresenter   = "copresenter"
	KindPasswordReset = "password_reset"
)

// Config holds the fixed parts of every credential email.
type Config struct {
	From     Sender
	LoginURL string
}

// Notifier renders credential emails and hands them to a Transport.
type Notifier struct {
	transport Transport
	cfg       Config
	metrics   *observability.Metrics
}

var _ auth.Notifier = (*Notifier)(nil)

// NewNotifier creates a Notifier. metrics may be nil.
func NewNotifier(transport Transport, cfg Config, metrics *observability.Metrics) (*Notifier, error) {
	if transport == nil {
		return nil, oops.Errorf("mail transport is required")
	}
	if cfg.From.Address == "" {
		return nil, oops.Errorf("sender address is required")
	}
	if cfg.LoginURL == "" {
		return nil, oops.Errorf("login URL is required")
	}
	return &Notifier{transport: transport, cfg: cfg, metrics: metrics}, nil
}

// NotifyCopresenter emails a delegated signup its login details.
func (n *Notifier) NotifyCopresenter(ctx context.Context, invite auth.CopresenterInvite) error {
	body, err := render(copresenterBody, copresenterData{
		LeadName: invite.LeadName,
		LoginURL: n.cfg.LoginURL,
		Username: invite.Username,
		Password: invite.Password,
	})
	if err == nil {
		err = n.send(ctx, Message{
			From:    n.cfg.From,
			To:      invite.To,
			Subject: fmt.Sprintf(copresenterSubjectFormat, invite.LeadName),
			HTML:    body,
		})
	}
	n.metrics.RecordNotification(KindCopresenter, err)
	return err
}

// NotifyPasswordReset emails a speaker the password that replaced theirs.
func (n *Notifier) NotifyPasswordReset(ctx context.Context, notice auth.PasswordResetNotice) error {
	body, err := render(passwordResetBody, passwordResetData{
		Password: notice.Password,
		LoginURL: n.cfg.LoginURL,
	})
	if err == nil {
		err = n.send(ctx, Message{
			From:    n.cfg.From,
			To:      notice.To,
			Subject: passwordResetSubject,
			HTML:    body,
		})
	}
	n.metrics.RecordNotification(KindPasswordReset, err)
	return err
}

func (n *Notifier) send(ctx context.Context, msg Message) error {
	if err := n.transport.Send(ctx, msg); err != nil {
		return oops.With("to", msg.To).With("subject", msg.Subject).Wrap(err)
	}
	return nil
}
