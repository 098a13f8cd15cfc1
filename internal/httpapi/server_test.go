// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package httpapi_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ccaw/speakerauth/internal/auth"
	"github.com/ccaw/speakerauth/internal/auth/mocks"
	"github.com/ccaw/speakerauth/internal/httpapi"
	"github.com/ccaw/speakerauth/internal/mail"
)

func TestServer_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreCurrent(),
		// fasthttp's idle-worker cleaner sleeps out its interval after shutdown.
		goleak.IgnoreAnyFunction("github.com/valyala/fasthttp.(*workerPool).Start.func2"),
	)

	speakers := mocks.NewMockSpeakerRepository(t)
	hasher := auth.NewArgon2idHasherWithParams(fastParams)
	notifier, err := mail.NewNotifier(mail.NewLogTransport(slog.New(slog.DiscardHandler)),
		mail.Config{From: mail.Sender{Address: "a@b.c"}, LoginURL: "http://x/login"}, nil)
	require.NoError(t, err)

	sessions, err := auth.NewSessionService(speakers, mocks.NewMockWebSessionRepository(t), hasher, 0)
	require.NoError(t, err)
	signups, err := auth.NewSignupService(speakers, hasher, notifier)
	require.NoError(t, err)
	passwords, err := auth.NewPasswordService(speakers, hasher, notifier)
	require.NoError(t, err)
	privileges, err := auth.NewPrivilegeService(speakers)
	require.NoError(t, err)
	uploads, err := auth.NewRedactionService(speakers)
	require.NoError(t, err)

	srv, err := httpapi.NewServer(httpapi.Config{Addr: "127.0.0.1:0", BasePath: "/auth"}, httpapi.Services{
		Sessions: sessions, Signups: signups, Passwords: passwords, Privileges: privileges, Uploads: uploads,
	}, nil, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	errCh, err := srv.Start()
	require.NoError(t, err)
	require.NotEmpty(t, srv.Addr())

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + srv.Addr() + "/auth/checkSession")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"user":null}`, string(body))

	_, err = srv.Start()
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, srv.Stop(ctx))

	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("server goroutine did not exit")
	}
	http.DefaultClient.CloseIdleConnections()
}
