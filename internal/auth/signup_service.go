// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/samber/oops"

	"github.com/ccaw/speakerauth/pkg/errutil"
)

// LeadPresenter identifies the speaker registering a copresenter.
type LeadPresenter struct {
	FirstName string
	LastName  string
}

// FullName returns "First Last".
func (l LeadPresenter) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// SignupRequest describes a new speaker account.
// A non-nil Lead selects delegated signup and Password is ignored.
type SignupRequest struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Lead      *LeadPresenter
}

// Delegated reports whether the request registers a copresenter.
func (r SignupRequest) Delegated() bool {
	return r.Lead != nil
}

// Validate checks the request fields.
func (r SignupRequest) Validate() error {
	fields := []*validation.FieldRules{
		validation.Field(&r.Email, validation.Required, is.Email),
	}
	if !r.Delegated() {
		fields = append(fields, validation.Field(&r.Password, validation.Required))
	}
	return validation.ValidateStruct(&r, fields...)
}

// SignupService creates speaker accounts.
type SignupService struct {
	speakers SpeakerRepository
	hasher   PasswordHasher
	notifier Notifier
	logger   *slog.Logger
}

// NewSignupService creates a SignupService.
func NewSignupService(speakers SpeakerRepository, hasher PasswordHasher, notifier Notifier) (*SignupService, error) {
	return NewSignupServiceWithLogger(speakers, hasher, notifier, slog.New(slog.DiscardHandler))
}

// NewSignupServiceWithLogger creates a SignupService that logs through logger.
func NewSignupServiceWithLogger(speakers SpeakerRepository, hasher PasswordHasher, notifier Notifier, logger *slog.Logger) (*SignupService, error) {
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
	return &SignupService{
		speakers: speakers,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Signup creates a speaker.
//
// Delegated signups get a generated password, are always flagged to change it,
// and trigger one copresenter invite. A failed invite is logged and does not
// fail the signup. Self-service signups are flagged only when they use
// SharedSpeakerPassword, and send no email.
func (s *SignupService) Signup(ctx context.Context, req SignupRequest) (*Speaker, error) {
	password := req.Password
	changePassword := password == SharedSpeakerPassword
	if req.Delegated() {
		password = GeneratePassword()
		changePassword = true
	}

	if err := req.Validate(); err != nil {
		return nil, oops.Code(CodeValidation).
			With("email", req.Email).
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code(CodeValidation).
			With("operation", "hash password").
			Wrap(err)
	}

	speaker, err := NewSpeaker(req.Email, req.FirstName, req.LastName, hash, changePassword)
	if err != nil {
		return nil, oops.Code(CodeValidation).Wrap(err)
	}

	if err := s.speakers.Create(ctx, speaker); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, oops.Code(CodeDuplicateEmail).
				With("email", speaker.Email).
				Wrap(err)
		}
		return nil, oops.Code(CodeValidation).
			With("operation", "create speaker").
			With("email", speaker.Email).
			Wrap(err)
	}

	if req.Delegated() {
		invite := CopresenterInvite{
			To:       speaker.Email,
			LeadName: req.Lead.FullName(),
			Username: speaker.Email,
			Password: password,
		}
		if err := s.notifier.NotifyCopresenter(ctx, invite); err != nil {
			errutil.LogErrorContext(ctx, s.logger, "copresenter invite failed",
				oops.With("speaker_id", speaker.ID.String()).Wrap(err))
		} else {
			s.logger.InfoContext(ctx, "copresenter invite sent", "speaker_id", speaker.ID.String())
		}
	}

	return speaker, nil
}
