// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/ccaw/speakerauth/pkg/errutil"
)

// dummyPasswordHash is verified when the email is unknown so both failure
// paths cost the same. It never matches any password.
//
//nolint:gosec // G101: intentionally fake hash, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// SessionService logs speakers in and out and resolves sessions.
type SessionService struct {
	speakers SpeakerRepository
	sessions WebSessionRepository
	hasher   PasswordHasher
	ttl      time.Duration
	logger   *slog.Logger
}

// NewSessionService creates a SessionService. A non-positive ttl selects DefaultSessionTTL.
func NewSessionService(speakers SpeakerRepository, sessions WebSessionRepository, hasher PasswordHasher, ttl time.Duration) (*SessionService, error) {
	return NewSessionServiceWithLogger(speakers, sessions, hasher, ttl, slog.New(slog.DiscardHandler))
}

// NewSessionServiceWithLogger creates a SessionService that logs through logger.
func NewSessionServiceWithLogger(speakers SpeakerRepository, sessions WebSessionRepository, hasher PasswordHasher, ttl time.Duration, logger *slog.Logger) (*SessionService, error) {
	if speakers == nil {
		return nil, oops.Errorf("speakers repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		speakers: speakers,
		sessions: sessions,
		hasher:   hasher,
		ttl:      ttl,
		logger:   logger,
	}, nil
}

// Login verifies the credentials and opens a session.
// Returns the speaker and the plaintext session token.
func (s *SessionService) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*Speaker, string, error) {
	speaker, lookupErr := s.speakers.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	switch {
	case lookupErr == nil:
		targetHash = speaker.PasswordHash
	case errors.Is(lookupErr, ErrNotFound):
		speaker = nil
	default:
		return nil, "", oops.Code(CodeInternal).
			With("operation", "get speaker by email").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if speaker == nil {
			return nil, "", oops.Code(CodeInvalidCredentials).Errorf(InvalidCredentialsMessage)
		}
		return nil, "", oops.Code(CodeInternal).
			With("operation", "verify password").
			With("speaker_id", speaker.ID.String()).
			Wrap(verifyErr)
	}
	if speaker == nil || !valid {
		return nil, "", oops.Code(CodeInvalidCredentials).Errorf(InvalidCredentialsMessage)
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", oops.Code(CodeInternal).
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewWebSession(speaker.ID, tokenHash, userAgent, ipAddress, time.Now().Add(s.ttl))
	if err != nil {
		return nil, "", oops.Code(CodeInternal).
			With("operation", "create web session").
			Wrap(err)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", oops.Code(CodeInternal).
			With("operation", "persist session").
			With("speaker_id", speaker.ID.String()).
			Wrap(err)
	}

	return speaker, token, nil
}

// CheckSession returns the speaker bound to token, or nil when there is no
// valid session. It never fails; lookup errors are logged.
func (s *SessionService) CheckSession(ctx context.Context, token string) *Speaker {
	if len(token) != sessionTokenHexLength {
		return nil
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			errutil.LogErrorContext(ctx, s.logger, "session lookup failed", err)
		}
		return nil
	}
	if session.IsExpired() {
		return nil
	}

	speaker, err := s.speakers.GetByID(ctx, session.SpeakerID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			errutil.LogErrorContext(ctx, s.logger, "session speaker lookup failed", err)
		}
		return nil
	}
	return speaker
}

// Logout destroys the session for token. It always succeeds.
func (s *SessionService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.sessions.DeleteByTokenHash(ctx, HashSessionToken(token)); err != nil {
		errutil.LogErrorContext(ctx, s.logger, "session delete failed", err)
	}
}

// SweepExpired removes expired sessions and returns how many were removed.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, oops.Code(CodePersistence).
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return n, nil
}
