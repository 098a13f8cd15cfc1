// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// RedactionService wipes uploaded documents from every speaker.
type RedactionService struct {
	speakers SpeakerRepository
	logger   *slog.Logger
}

// NewRedactionService creates a RedactionService.
func NewRedactionService(speakers SpeakerRepository) (*RedactionService, error) {
	return NewRedactionServiceWithLogger(speakers, slog.New(slog.DiscardHandler))
}

// NewRedactionServiceWithLogger creates a RedactionService that logs through logger.
func NewRedactionServiceWithLogger(speakers SpeakerRepository, logger *slog.Logger) (*RedactionService, error) {
	if speakers == nil {
		return nil, oops.Errorf("speakers repository is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &RedactionService{speakers: speakers, logger: logger}, nil
}

// ClearUploads clears headshot, admin uploads and the W-9 response on all
// speakers unconditionally and returns the number of records touched.
func (s *RedactionService) ClearUploads(ctx context.Context) (int64, error) {
	n, err := s.speakers.ClearUploads(ctx)
	if err != nil {
		return 0, oops.Code(CodePersistence).
			With("operation", "clear uploads").
			Wrap(err)
	}
	s.logger.WarnContext(ctx, "uploads cleared", "count", n)
	return n, nil
}
