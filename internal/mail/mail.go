// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

// Package mail renders and delivers the credential emails sent to speakers.
package mail

import (
	"context"
	"fmt"
)

// Sender is the From identity of outgoing mail.
type Sender struct {
	Name    string
	Address string
}

// String formats the sender as "Name <address>", or just the address when
// there is no name.
func (s Sender) String() string {
	if s.Name == "" {
		return s.Address
	}
	return fmt.Sprintf("%s <%s>", s.Name, s.Address)
}

// Message is a single rendered email.
type Message struct {
	From    Sender
	To      string
	Subject string
	HTML    string
}

// Transport delivers rendered messages.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}
