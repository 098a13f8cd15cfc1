// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ccaw/speakerauth/internal/auth"
)

// speakerEmailIndex is the unique index that enforces one account per email.
const speakerEmailIndex = "idx_speakers_email_lower"

const speakerColumns = `id, email, password_hash, first_name, last_name, admin, change_password,
	headshot, admin_uploads, response_form, version, created_at, updated_at`

// SpeakerRepository implements auth.SpeakerRepository using PostgreSQL.
type SpeakerRepository struct {
	db DB
}

// NewSpeakerRepository creates a new SpeakerRepository.
func NewSpeakerRepository(db DB) *SpeakerRepository {
	return &SpeakerRepository{db: db}
}

// Create stores a new speaker.
func (r *SpeakerRepository) Create(ctx context.Context, speaker *auth.Speaker) error {
	form, err := marshalForm(speaker.ResponseForm)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO speakers (`+speakerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		speaker.ID.String(),
		speaker.Email,
		speaker.PasswordHash,
		speaker.FirstName,
		speaker.LastName,
		speaker.Admin,
		speaker.ChangePassword,
		speaker.Headshot,
		uploadsOrEmpty(speaker.AdminUploads),
		form,
		speaker.Version,
		speaker.CreatedAt,
		speaker.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, speakerEmailIndex) {
			return oops.With("email", speaker.Email).Wrap(auth.ErrDuplicateEmail)
		}
		return oops.
			With("operation", "insert speaker").
			With("email", speaker.Email).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a speaker by ID.
func (r *SpeakerRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Speaker, error) {
	row := r.db.QueryRow(ctx, `SELECT `+speakerColumns+` FROM speakers WHERE id = $1`, id.String())

	speaker, err := scanSpeaker(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.
			With("operation", "get speaker by id").
			With("id", id.String()).
			Wrap(err)
	}
	return speaker, nil
}

// GetByEmail retrieves a speaker by email (case-insensitive).
func (r *SpeakerRepository) GetByEmail(ctx context.Context, email string) (*auth.Speaker, error) {
	row := r.db.QueryRow(ctx, `SELECT `+speakerColumns+` FROM speakers WHERE LOWER(email) = LOWER($1)`, email)

	speaker, err := scanSpeaker(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("email", email).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.
			With("operation", "get speaker by email").
			With("email", email).
			Wrap(err)
	}
	return speaker, nil
}

// Update writes every mutable field if the stored version still matches
// speaker.Version, then advances speaker.Version.
func (r *SpeakerRepository) Update(ctx context.Context, speaker *auth.Speaker) error {
	form, err := marshalForm(speaker.ResponseForm)
	if err != nil {
		return err
	}
	updatedAt := time.Now().UTC()

	result, err := r.db.Exec(ctx, `
		UPDATE speakers SET
			email = $3,
			password_hash = $4,
			first_name = $5,
			last_name = $6,
			admin = $7,
			change_password = $8,
			headshot = $9,
			admin_uploads = $10,
			response_form = $11,
			updated_at = $12,
			version = version + 1
		WHERE id = $1 AND version = $2
	`,
		speaker.ID.String(),
		speaker.Version,
		speaker.Email,
		speaker.PasswordHash,
		speaker.FirstName,
		speaker.LastName,
		speaker.Admin,
		speaker.ChangePassword,
		speaker.Headshot,
		uploadsOrEmpty(speaker.AdminUploads),
		form,
		updatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, speakerEmailIndex) {
			return oops.With("email", speaker.Email).Wrap(auth.ErrDuplicateEmail)
		}
		return oops.
			With("operation", "update speaker").
			With("id", speaker.ID.String()).
			Wrap(err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM speakers WHERE id = $1)`, speaker.ID.String()).Scan(&exists); err != nil {
			return oops.
				With("operation", "check speaker exists").
				With("id", speaker.ID.String()).
				Wrap(err)
		}
		if !exists {
			return oops.With("id", speaker.ID.String()).Wrap(auth.ErrNotFound)
		}
		return oops.
			With("id", speaker.ID.String()).
			With("version", speaker.Version).
			Wrap(auth.ErrVersionConflict)
	}

	speaker.Version++
	speaker.UpdatedAt = updatedAt
	return nil
}

// ClearUploads blanks headshot, admin uploads and the W-9 response on every speaker.
func (r *SpeakerRepository) ClearUploads(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE speakers SET
			headshot = '',
			admin_uploads = '{}',
			response_form = jsonb_set(response_form, '{w9}', '""'::jsonb),
			updated_at = NOW(),
			version = version + 1
	`)
	if err != nil {
		return 0, oops.With("operation", "clear uploads").Wrap(err)
	}
	return result.RowsAffected(), nil
}

func scanSpeaker(row pgx.Row) (*auth.Speaker, error) {
	var (
		s       auth.Speaker
		idStr   string
		uploads []string
		form    []byte
	)
	err := row.Scan(
		&idStr,
		&s.Email,
		&s.PasswordHash,
		&s.FirstName,
		&s.LastName,
		&s.Admin,
		&s.ChangePassword,
		&s.Headshot,
		&uploads,
		&form,
		&s.Version,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers add lookup context
		}
		return nil, oops.With("operation", "scan speaker").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.
			With("operation", "parse speaker id").
			With("id", idStr).
			Wrap(err)
	}
	s.ID = id
	s.AdminUploads = uploadsOrEmpty(uploads)

	s.ResponseForm = map[string]any{}
	if len(form) > 0 {
		if err := json.Unmarshal(form, &s.ResponseForm); err != nil {
			return nil, oops.
				With("operation", "unmarshal response form").
				With("id", idStr).
				Wrap(err)
		}
	}
	return &s, nil
}

func marshalForm(form map[string]any) ([]byte, error) {
	if form == nil {
		return []byte(`{}`), nil
	}
	b, err := json.Marshal(form)
	if err != nil {
		return nil, oops.With("operation", "marshal response form").Wrap(err)
	}
	return b, nil
}

func uploadsOrEmpty(uploads []string) []string {
	if uploads == nil {
		return []string{}
	}
	return uploads
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == constraint
}
