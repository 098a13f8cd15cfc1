// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ccaw/speakerauth/internal/auth"
	"github.com/ccaw/speakerauth/internal/auth/mocks"
	"github.com/ccaw/speakerauth/pkg/errutil"
)

func TestNewPrivilegeService_NilRepository(t *testing.T) {
	svc, err := auth.NewPrivilegeService(nil)
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "speakers repository is required")
}

func TestPrivilegeService(t *testing.T) {
	ctx := context.Background()

	ops := []struct {
		name  string
		admin bool
		call  func(*auth.PrivilegeService, context.Context, ulid.ULID) error
	}{
		{name: "grant", admin: true, call: (*auth.PrivilegeService).GrantAdmin},
		{name: "revoke", admin: false, call: (*auth.PrivilegeService).RevokeAdmin},
	}

	for _, op := range ops {
		t.Run(op.name+" sets flag and saves", func(t *testing.T) {
			for _, start := range []bool{false, true} {
				repo := mocks.NewMockSpeakerRepository(t)
				svc, err := auth.NewPrivilegeService(repo)
				require.NoError(t, err)

				speaker := testSpeaker("ann@example.org")
				speaker.Admin = start
				speaker.ChangePassword = true
				repo.On("GetByID", ctx, speaker.ID).Return(speaker, nil).Once()
				repo.On("Update", ctx, speaker).Return(nil).Once()

				require.NoError(t, op.call(svc, ctx, speaker.ID), "starting admin=%v", start)
				assert.Equal(t, op.admin, speaker.Admin)
				assert.True(t, speaker.ChangePassword, "admin toggle leaves change flag alone")
			}
		})

		t.Run(op.name+" unknown id is not found", func(t *testing.T) {
			repo := mocks.NewMockSpeakerRepository(t)
			svc, err := auth.NewPrivilegeService(repo)
			require.NoError(t, err)

			id := ulid.Make()
			repo.On("GetByID", ctx, id).Return(nil, auth.ErrNotFound)

			err = op.call(svc, ctx, id)
			errutil.AssertErrorCode(t, err, auth.CodeNotFound)
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})

		t.Run(op.name+" save failure is persistence error", func(t *testing.T) {
			repo := mocks.NewMockSpeakerRepository(t)
			svc, err := auth.NewPrivilegeService(repo)
			require.NoError(t, err)

			speaker := testSpeaker("ann@example.org")
			repo.On("GetByID", ctx, speaker.ID).Return(speaker, nil)
			repo.On("Update", ctx, speaker).Return(errors.New("deadlock detected"))

			err = op.call(svc, ctx, speaker.ID)
			errutil.AssertErrorCode(t, err, auth.CodePersistence)
			errutil.AssertErrorContext(t, err, "admin", op.admin)
		})
	}
}
