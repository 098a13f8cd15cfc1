// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth

import "context"

// CopresenterInvite is sent when a lead presenter registers a copresenter.
type CopresenterInvite struct {
	To       string
	LeadName string
	Username string
	Password string
}

// PasswordResetNotice carries a freshly generated password to its owner.
type PasswordResetNotice struct {
	To       string
	Password string
}

// Notifier delivers credential emails.
type Notifier interface {
	NotifyCopresenter(ctx context.Context, invite CopresenterInvite) error
	NotifyPasswordReset(ctx context.Context, notice PasswordResetNotice) error
}
