// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes     = 32 // 64 hex chars on the wire
	DefaultSessionTTL     = 24 * time.Hour
	sessionTokenHexLength = SessionTokenBytes * 2
)

// WebSession binds an opaque browser token to a speaker.
// Only the SHA-256 of the token is stored.
type WebSession struct {
	ID        ulid.ULID
	SpeakerID ulid.ULID
	TokenHash string
	UserAgent string
	IPAddress string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewWebSession creates a validated WebSession.
// UserAgent and IPAddress are optional.
func NewWebSession(speakerID ulid.ULID, tokenHash, userAgent, ipAddress string, expiresAt time.Time) (*WebSession, error) {
	if speakerID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Errorf("speaker ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Errorf("expiry time cannot be zero")
	}

	return &WebSession{
		ID:        ulid.Make(),
		SpeakerID: speakerID,
		TokenHash: tokenHash,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *WebSession) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the session would be expired at t.
func (s *WebSession) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// GenerateSessionToken creates a random token and its hash.
// The plaintext token goes to the client; the hash is stored.
func GenerateSessionToken() (token, hash string, err error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", oops.
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}
	token = hex.EncodeToString(buf)
	return token, HashSessionToken(token), nil
}

// HashSessionToken returns the hex SHA-256 of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// WebSessionRepository manages web session persistence.
type WebSessionRepository interface {
	// Create stores a new web session.
	Create(ctx context.Context, session *WebSession) error

	// GetByTokenHash retrieves a session by its token hash.
	// Returns ErrNotFound if no session matches.
	GetByTokenHash(ctx context.Context, tokenHash string) (*WebSession, error)

	// DeleteByTokenHash removes a session. Deleting a missing session is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteExpired removes all expired sessions and returns the count removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
