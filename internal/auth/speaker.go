// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Speaker is the credential record for a conference speaker.
type Speaker struct {
	ID             ulid.ULID `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Admin          bool      `json:"admin"`
	ChangePassword bool      `json:"changePassword"`

	// Profile fields owned by the upload and response-form features.
	Headshot     string         `json:"headshot"`
	AdminUploads []string       `json:"adminUploads"`
	ResponseForm map[string]any `json:"responseForm,omitempty"`

	// Version is bumped by every successful update.
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSpeaker creates a validated Speaker with a fresh ID.
func NewSpeaker(email, firstName, lastName, passwordHash string, changePassword bool) (*Speaker, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, oops.Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &Speaker{
		ID:             ulid.Make(),
		Email:          email,
		PasswordHash:   passwordHash,
		FirstName:      strings.TrimSpace(firstName),
		LastName:       strings.TrimSpace(lastName),
		ChangePassword: changePassword,
		AdminUploads:   []string{},
		ResponseForm:   map[string]any{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// FullName returns "First Last".
func (s *Speaker) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// SetPasswordHash replaces the stored hash. The change-password flag is left alone.
func (s *Speaker) SetPasswordHash(hash string) {
	s.PasswordHash = hash
	s.UpdatedAt = time.Now().UTC()
}

// SetAdmin sets the admin privilege flag.
func (s *Speaker) SetAdmin(admin bool) {
	s.Admin = admin
	s.UpdatedAt = time.Now().UTC()
}

// SpeakerRepository manages speaker persistence.
type SpeakerRepository interface {
	// Create stores a new speaker.
	// Returns ErrDuplicateEmail if the email is already registered.
	Create(ctx context.Context, speaker *Speaker) error

	// GetByID retrieves a speaker by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Speaker, error)

	// GetByEmail retrieves a speaker by email (case-insensitive).
	// Returns ErrNotFound if no speaker has the given email.
	GetByEmail(ctx context.Context, email string) (*Speaker, error)

	// Update persists all mutable fields of an existing speaker.
	// Returns ErrVersionConflict if speaker.Version no longer matches the stored row.
	Update(ctx context.Context, speaker *Speaker) error

	// ClearUploads blanks headshot, admin uploads and the W-9 response on every
	// speaker and returns the number of rows touched.
	ClearUploads(ctx context.Context) (int64, error)
}
