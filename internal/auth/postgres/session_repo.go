// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ccaw/speakerauth/internal/auth"
)

// WebSessionRepository implements auth.WebSessionRepository using PostgreSQL.
type WebSessionRepository struct {
	db DB
}

// NewWebSessionRepository creates a new WebSessionRepository.
func NewWebSessionRepository(db DB) *WebSessionRepository {
	return &WebSessionRepository{db: db}
}

// Create stores a new web session.
func (r *WebSessionRepository) Create(ctx context.Context, session *auth.WebSession) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO web_sessions (id, speaker_id, token_hash, user_agent, ip_address, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		session.ID.String(),
		session.SpeakerID.String(),
		session.TokenHash,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return oops.
			With("operation", "insert web_session").
			With("speaker_id", session.SpeakerID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *WebSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.WebSession, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, speaker_id, token_hash, user_agent, ip_address, expires_at, created_at
		FROM web_sessions
		WHERE token_hash = $1
	`, tokenHash)

	var (
		s                   auth.WebSession
		idStr, speakerIDStr string
	)
	err := row.Scan(&idStr, &speakerIDStr, &s.TokenHash, &s.UserAgent, &s.IPAddress, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("operation", "get session by token hash").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get session by token hash").Wrap(err)
	}

	if s.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse session id").With("id", idStr).Wrap(err)
	}
	if s.SpeakerID, err = ulid.Parse(speakerIDStr); err != nil {
		return nil, oops.With("operation", "parse speaker id").With("speaker_id", speakerIDStr).Wrap(err)
	}
	return &s, nil
}

// DeleteByTokenHash removes the session with the given token hash, if any.
func (r *WebSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM web_sessions WHERE token_hash = $1`, tokenHash); err != nil {
		return oops.With("operation", "delete session by token hash").Wrap(err)
	}
	return nil
}

// DeleteExpired removes all expired sessions and returns the count removed.
func (r *WebSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM web_sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, oops.With("operation", "delete expired sessions").Wrap(err)
	}
	return result.RowsAffected(), nil
}
