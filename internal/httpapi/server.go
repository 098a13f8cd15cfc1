// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

// Package httpapi exposes the speaker auth operations over HTTP with fiber.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ccaw/speakerauth/internal/auth"
	"github.com/ccaw/speakerauth/internal/observability"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "ccaw_session"

// Sessions is the session surface the API needs.
type Sessions interface {
	Login(ctx context.Context, email, password, userAgent, ipAddress string) (*auth.Speaker, string, error)
	CheckSession(ctx context.Context, token string) *auth.Speaker
	Logout(ctx context.Context, token string)
}

// Signups creates speaker accounts.
type Signups interface {
	Signup(ctx context.Context, req auth.SignupRequest) (*auth.Speaker, error)
}

// Passwords changes and resets passwords.
type Passwords interface {
	ChangePassword(ctx context.Context, speakerID ulid.ULID, newPassword string) (*auth.Speaker, error)
	ForgotPassword(ctx context.Context, email string) error
}

// Privileges toggles the admin flag.
type Privileges interface {
	GrantAdmin(ctx context.Context, speakerID ulid.ULID) error
	RevokeAdmin(ctx context.Context, speakerID ulid.ULID) error
}

// Uploads clears uploaded documents.
type Uploads interface {
	ClearUploads(ctx context.Context) (int64, error)
}

// Services groups the operations served by the API.
type Services struct {
	Sessions   Sessions
	Signups    Signups
	Passwords  Passwords
	Privileges Privileges
	Uploads    Uploads
}

func (s Services) validate() error {
	switch {
	case s.Sessions == nil:
		return oops.Errorf("session service is required")
	case s.Signups == nil:
		return oops.Errorf("signup service is required")
	case s.Passwords == nil:
		return oops.Errorf("password service is required")
	case s.Privileges == nil:
		return oops.Errorf("privilege service is required")
	case s.Uploads == nil:
		return oops.Errorf("uploads service is required")
	}
	return nil
}

// Config controls routing and cookies.
type Config struct {
	Addr string
	// BasePath prefixes every route, e.g. "/auth".
	BasePath     string
	SecureCookie bool
	// SessionTTL sets the cookie lifetime; it should match the session service TTL.
	SessionTTL time.Duration
}

// Server is the auth HTTP API.
type Server struct {
	app      *fiber.App
	cfg      Config
	svc      Services
	metrics  *observability.Metrics
	logger   *slog.Logger
	listener net.Listener
	running  atomic.Bool
}

// NewServer builds the fiber app and registers the routes. metrics may be nil.
func NewServer(cfg Config, svc Services, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if err := svc.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = auth.DefaultSessionTTL
	}

	s := &Server{cfg: cfg, svc: svc, metrics: metrics, logger: logger}
	s.app = fiber.New(fiber.Config{
		AppName:      "ccaw-auth",
		ErrorHandler: s.handleError,
	})
	s.registerRoutes()
	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) registerRoutes() {
	api := s.app.Group(s.cfg.BasePath, s.instrument)

	api.Get("/checkSession", s.checkSession)
	api.Post("/login", s.login)
	api.Post("/signup", s.signup)
	api.Get("/logout", s.logout)
	api.Post("/changePassword", s.changePassword)
	api.Post("/forgotpassword", s.forgotPassword)
	api.Get("/addadmin/:id", s.addAdmin)
	api.Get("/deleteadmin/:id", s.deleteAdmin)
	api.Get("/clearuploads", s.clearUploads)
}

// instrument counts every response by route pattern and status.
func (s *Server) instrument(c fiber.Ctx) error {
	err := c.Next()
	if err != nil {
		if handlerErr := s.app.Config().ErrorHandler(c, err); handlerErr != nil {
			s.logger.Error("error handler failed", "error", handlerErr)
		}
	}
	s.metrics.RecordHTTP(c.Route().Path, strconv.Itoa(c.Response().StatusCode()))
	return nil
}

func (s *Server) handleError(c fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"alert": fe.Message})
	}
	s.logger.ErrorContext(c.Context(), "unhandled request error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"alert": err.Error()})
}

// Start listens on cfg.Addr. The returned channel receives a serve error, if
// any, and is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("http server already running")
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.cfg.Addr).Wrap(err)
	}
	s.listener = listener

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := s.app.Listener(listener, fiber.ListenConfig{DisableStartupMessage: true}); serveErr != nil {
			s.logger.Error("http server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("http server started", "addr", listener.Addr().String(), "base_path", s.cfg.BasePath)
	return errCh, nil
}

// Stop shuts the server down. Stopping a server that is not running is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		s.running.Store(true)
		return oops.With("operation", "shutdown http server").Wrap(err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
