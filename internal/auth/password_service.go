// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// PasswordService handles password change and forgotten-password resets.
type PasswordService struct {
	speakers SpeakerRepository
	hasher   PasswordHasher
	notifier Notifier
	logger   *slog.Logger
}

// NewPasswordService creates a PasswordService.
func NewPasswordService(speakers SpeakerRepository, hasher PasswordHasher, notifier Notifier) (*PasswordService, error) {
	return NewPasswordServiceWithLogger(speakers, hasher, notifier, slog.New(slog.DiscardHandler))
}

// NewPasswordServiceWithLogger creates a PasswordService that logs through logger.
func NewPasswordServiceWithLogger(speakers SpeakerRepository, hasher PasswordHasher, notifier Notifier, logger *slog.Logger) (*PasswordService, error) {
	if speakers == nil {
		return nil, oops.Errorf("speakers repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &PasswordService{
		speakers: speakers,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// ChangePassword sets a new password chosen by the speaker and clears the
// change-password flag. No email is sent.
func (s *PasswordService) ChangePassword(ctx context.Context, speakerID ulid.ULID, newPassword string) (*Speaker, error) {
	speaker, err := s.speakers.GetByID(ctx, speakerID)
	if err != nil {
		return nil, oops.Code(CodeNotFound).
			With("speaker_id", speakerID.String()).
			Wrap(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, oops.Code(CodeValidation).
			With("operation", "hash password").
			With("speaker_id", speakerID.String()).
			Wrap(err)
	}

	speaker.SetPasswordHash(hash)
	speaker.ChangePassword = false

	if err := s.speakers.Update(ctx, speaker); err != nil {
		return nil, oops.Code(CodePersistence).
			With("operation", "update speaker").
			With("speaker_id", speakerID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password changed", "speaker_id", speakerID.String())
	return speaker, nil
}

// ForgotPassword replaces the speaker's password with a generated one and
// emails it. The change-password flag is left as is.
//
// The new password is persisted before the email is attempted, so a returned
// notification error means the stored password already changed.
func (s *PasswordService) ForgotPassword(ctx context.Context, email string) error {
	speaker, err := s.speakers.GetByEmail(ctx, email)
	if err != nil {
		return oops.Code(CodeNotFound).
			With("email", email).
			Wrap(err)
	}

	password := GeneratePassword()
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return oops.Code(CodePersistence).
			With("operation", "hash password").
			With("speaker_id", speaker.ID.String()).
			Wrap(err)
	}
	speaker.SetPasswordHash(hash)

	if err := s.speakers.Update(ctx, speaker); err != nil {
		return oops.Code(CodePersistence).
			With("operation", "update speaker").
			With("speaker_id", speaker.ID.String()).
			Wrap(err)
	}

	notice := PasswordResetNotice{To: speaker.Email, Password: password}
	if err := s.notifier.NotifyPasswordReset(ctx, notice); err != nil {
		return oops.Code(CodeNotification).
			With("speaker_id", speaker.ID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password reset sent", "speaker_id", speaker.ID.String())
	return nil
}
