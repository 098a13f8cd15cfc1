// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccaw/speakerauth/internal/auth"
	"github.com/ccaw/speakerauth/internal/auth/postgres"
)

func TestWebSessionRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)

	session, err := auth.NewWebSession(ulid.Make(), "hash", "agent", "10.0.0.1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO web_sessions`).
		WithArgs(session.ID.String(), session.SpeakerID.String(), "hash", "agent", "10.0.0.1",
			session.ExpiresAt, session.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, postgres.NewWebSessionRepository(mock).Create(ctx, session))
}

func TestWebSessionRepository_GetByTokenHash(t *testing.T) {
	ctx := context.Background()
	cols := []string{"id", "speaker_id", "token_hash", "user_agent", "ip_address", "expires_at", "created_at"}

	t.Run("returns session", func(t *testing.T) {
		mock := newMockPool(t)
		id, speakerID := ulid.Make(), ulid.Make()
		expires := time.Now().Add(time.Hour).UTC()

		mock.ExpectQuery(`FROM web_sessions\s+WHERE token_hash = \$1`).
			WithArgs("hash").
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(id.String(), speakerID.String(), "hash", "agent", "10.0.0.1", expires, time.Now()))

		got, err := postgres.NewWebSessionRepository(mock).GetByTokenHash(ctx, "hash")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, speakerID, got.SpeakerID)
		assert.Equal(t, expires, got.ExpiresAt)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM web_sessions`).WithArgs("missing").WillReturnError(pgx.ErrNoRows)

		_, err := postgres.NewWebSessionRepository(mock).GetByTokenHash(ctx, "missing")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("query failure", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM web_sessions`).WithArgs("hash").WillReturnError(errors.New("timeout"))

		_, err := postgres.NewWebSessionRepository(mock).GetByTokenHash(ctx, "hash")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestWebSessionRepository_DeleteByTokenHash(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting a missing session is fine", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM web_sessions WHERE token_hash = \$1`).
			WithArgs("hash").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		require.NoError(t, postgres.NewWebSessionRepository(mock).DeleteByTokenHash(ctx, "hash"))
	})

	t.Run("store failure", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM web_sessions`).WithArgs("hash").WillReturnError(errors.New("timeout"))

		require.Error(t, postgres.NewWebSessionRepository(mock).DeleteByTokenHash(ctx, "hash"))
	})
}

func TestWebSessionRepository_DeleteExpired(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(`DELETE FROM web_sessions WHERE expires_at < NOW\(\)`).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := postgres.NewWebSessionRepository(mock).DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
