// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

// Package mocks provides testify mocks for the auth collaborator interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/ccaw/speakerauth/internal/auth"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockSpeakerRepository mocks auth.SpeakerRepository.
type MockSpeakerRepository struct {
	mock.Mock
}

// NewMockSpeakerRepository creates a mock whose expectations are asserted on cleanup.
func NewMockSpeakerRepository(t cleanupT) *MockSpeakerRepository {
	m := &MockSpeakerRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSpeakerRepository) Create(ctx context.Context, speaker *auth.Speaker) error {
	return m.Called(ctx, speaker).Error(0)
}

func (m *MockSpeakerRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Speaker, error) {
	args := m.Called(ctx, id)
	speaker, _ := args.Get(0).(*auth.Speaker)
	return speaker, args.Error(1)
}

func (m *MockSpeakerRepository) GetByEmail(ctx context.Context, email string) (*auth.Speaker, error) {
	args := m.Called(ctx, email)
	speaker, _ := args.Get(0).(*auth.Speaker)
	return speaker, args.Error(1)
}

func (m *MockSpeakerRepository) Update(ctx context.Context, speaker *auth.Speaker) error {
	return m.Called(ctx, speaker).Error(0)
}

func (m *MockSpeakerRepository) ClearUploads(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// MockWebSessionRepository mocks auth.WebSessionRepository.
type MockWebSessionRepository struct {
	mock.Mock
}

// NewMockWebSessionRepository creates a mock whose expectations are asserted on cleanup.
func NewMockWebSessionRepository(t cleanupT) *MockWebSessionRepository {
	m := &MockWebSessionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockWebSessionRepository) Create(ctx context.Context, session *auth.WebSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockWebSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.WebSession, error) {
	args := m.Called(ctx, tokenHash)
	session, _ := args.Get(0).(*auth.WebSession)
	return session, args.Error(1)
}

func (m *MockWebSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *MockWebSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// MockPasswordHasher mocks auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock whose expectations are asserted on cleanup.
func NewMockPasswordHasher(t cleanupT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// MockNotifier mocks auth.Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a mock whose expectations are asserted on cleanup.
func NewMockNotifier(t cleanupT) *MockNotifier {
	m := &MockNotifier{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockNotifier) NotifyCopresenter(ctx context.Context, invite auth.CopresenterInvite) error {
	return m.Called(ctx, invite).Error(0)
}

func (m *MockNotifier) NotifyPasswordReset(ctx context.Context, notice auth.PasswordResetNotice) error {
	return m.Called(ctx, notice).Error(0)
}

var (
	_ auth.SpeakerRepository    = (*MockSpeakerRepository)(nil)
	_ auth.WebSessionRepository = (*MockWebSessionRepository)(nil)
	_ auth.PasswordHasher       = (*MockPasswordHasher)(nil)
	_ auth.Notifier             = (*MockNotifier)(nil)
)
