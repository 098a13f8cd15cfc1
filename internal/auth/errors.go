// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned by SpeakerRepository.Create when the email is taken.
var ErrDuplicateEmail = errors.New("email taken")

// ErrVersionConflict is returned by SpeakerRepository.Update when the record
// changed since it was loaded.
var ErrVersionConflict = errors.New("speaker was modified concurrently")

// Error codes attached by the services.
const (
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeDuplicateEmail     = "AUTH_DUPLICATE_EMAIL"
	CodeValidation         = "AUTH_VALIDATION_FAILED"
	CodeNotFound           = "AUTH_NOT_FOUND"
	CodePersistence        = "AUTH_PERSISTENCE_FAILED"
	CodeNotification       = "AUTH_NOTIFICATION_FAILED"
	CodeInternal           = "AUTH_INTERNAL_ERROR"
)

// InvalidCredentialsMessage is the single message used for both unknown emails
// and wrong passwords.
const InvalidCredentialsMessage = "invalid email or password"
