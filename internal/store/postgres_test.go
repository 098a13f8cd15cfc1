// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccaw/speakerauth/pkg/errutil"
)

type flakyDB struct {
	failures int
	calls    int
}

func (f *flakyDB) Ping(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func fastOptions(timeout time.Duration) ConnectOptions {
	return ConnectOptions{
		Timeout:   timeout,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
	}.withDefaults()
}

func TestWaitForDatabase_RetriesUntilReady(t *testing.T) {
	db := &flakyDB{failures: 3}
	require.NoError(t, waitForDatabase(context.Background(), db, fastOptions(time.Second)))
	assert.Equal(t, 4, db.calls)
}

func TestWaitForDatabase_GivesUpAfterTimeout(t *testing.T) {
	db := &flakyDB{failures: 1 << 30}
	err := waitForDatabase(context.Background(), db, fastOptions(30*time.Millisecond))
	errutil.AssertErrorCode(t, err, "DB_CONNECT_FAILED")
	assert.Greater(t, db.calls, 1)
}

func TestWaitForDatabase_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := waitForDatabase(ctx, &flakyDB{failures: 1 << 30}, fastOptions(time.Minute))
	require.Error(t, err)
}

func TestConnect_Validation(t *testing.T) {
	_, err := Connect(context.Background(), "", ConnectOptions{})
	errutil.AssertErrorCode(t, err, "DB_URL_MISSING")

	_, err = Connect(context.Background(), "postgres://%zz", ConnectOptions{})
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}

func TestConnectOptions_Defaults(t *testing.T) {
	o := ConnectOptions{}.withDefaults()
	assert.Equal(t, 30*time.Second, o.Timeout)
	assert.Equal(t, 250*time.Millisecond, o.BaseDelay)
	assert.Equal(t, 5*time.Second, o.MaxDelay)
	assert.NotNil(t, o.Logger)
}
