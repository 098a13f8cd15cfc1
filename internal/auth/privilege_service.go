// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// PrivilegeService toggles the admin flag.
type PrivilegeService struct {
	speakers SpeakerRepository
	logger   *slog.Logger
}

// NewPrivilegeService creates a PrivilegeService.
func NewPrivilegeService(speakers SpeakerRepository) (*PrivilegeService, error) {
	return NewPrivilegeServiceWithLogger(speakers, slog.New(slog.DiscardHandler))
}

// NewPrivilegeServiceWithLogger creates a PrivilegeService that logs through logger.
func NewPrivilegeServiceWithLogger(speakers SpeakerRepository, logger *slog.Logger) (*PrivilegeService, error) {
	if speakers == nil {
		return nil, oops.Errorf("speakers repository is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &PrivilegeService{speakers: speakers, logger: logger}, nil
}

// GrantAdmin makes the speaker an admin. Granting twice is not an error.
func (s *PrivilegeService) GrantAdmin(ctx context.Context, speakerID ulid.ULID) error {
	return s.setAdmin(ctx, speakerID, true)
}

// RevokeAdmin removes admin from the speaker. Revoking twice is not an error.
func (s *PrivilegeService) RevokeAdmin(ctx context.Context, speakerID ulid.ULID) error {
	return s.setAdmin(ctx, speakerID, false)
}

func (s *PrivilegeService) setAdmin(ctx context.Context, speakerID ulid.ULID, admin bool) error {
	speaker, err := s.speakers.GetByID(ctx, speakerID)
	if err != nil {
		return oops.Code(CodeNotFound).
			With("speaker_id", speakerID.String()).
			Wrap(err)
	}

	speaker.SetAdmin(admin)
	if err := s.speakers.Update(ctx, speaker); err != nil {
		return oops.Code(CodePersistence).
			With("operation", "update speaker").
			With("speaker_id", speakerID.String()).
			With("admin", admin).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "admin flag updated", "speaker_id", speakerID.String(), "admin", admin)
	return nil
}
