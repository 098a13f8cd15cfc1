// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/ccaw/speakerauth/internal/auth"
	"github.com/ccaw/speakerauth/internal/auth/postgres"
	"github.com/ccaw/speakerauth/internal/config"
	"github.com/ccaw/speakerauth/internal/httpapi"
	"github.com/ccaw/speakerauth/internal/logging"
	"github.com/ccaw/speakerauth/internal/mail"
	"github.com/ccaw/speakerauth/internal/observability"
	"github.com/ccaw/speakerauth/internal/store"
	"github.com/ccaw/speakerauth/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	autoMigrate bool
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the auth API server",
		Long: `Start the speaker auth HTTP API together with the metrics and health
server. Expired web sessions are swept periodically.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, opts, cmd, nil)
		},
	}

	cmd.Flags().BoolVar(&opts.autoMigrate, "auto-migrate", false, "apply pending migrations before serving")
	return cmd
}

// runServeWithDeps runs the service until ctx is cancelled, a shutdown
// signal arrives, or a server fails. Nil deps use the defaults.
func runServeWithDeps(ctx context.Context, cfg *config.Config, opts *serveOptions, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()

	logger := logging.Setup(logging.Options{
		Service: "ccaw",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
	}, deps.LogWriter)

	databaseURL, err := requireDatabaseURL(cfg)
	if err != nil {
		return err
	}

	if opts.autoMigrate {
		if err := autoMigrate(deps, databaseURL, logger); err != nil {
			return err
		}
	}

	db, err := deps.DatabaseFactory(ctx, databaseURL, store.ConnectOptions{
		Timeout: cfg.Database.ConnectTimeout,
		Logger:  logger,
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		metrics   *observability.Metrics
		obsServer ObservabilityServer
		obsErrCh  <-chan error
	)
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, db.Ping, logger)
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return oops.Code("SERVER_START_FAILED").With("server", "observability").Wrap(err)
		}
		defer stopServer(obsServer, "observability", logger)
		metrics = obsServer.Metrics()
	}

	services, sessions, err := buildServices(cfg, db, metrics, logger, deps)
	if err != nil {
		return err
	}

	httpServer, err := deps.HTTPServerFactory(httpapi.Config{
		Addr:         cfg.HTTP.Addr,
		BasePath:     cfg.HTTP.BasePath,
		SecureCookie: cfg.HTTP.SecureCookie,
		SessionTTL:   cfg.Session.TTL,
	}, services, metrics, logger)
	if err != nil {
		return oops.Code("SERVER_INIT_FAILED").With("server", "http").Wrap(err)
	}
	httpErrCh, err := httpServer.Start()
	if err != nil {
		return oops.Code("SERVER_START_FAILED").With("server", "http").Wrap(err)
	}
	defer stopServer(httpServer, "http", logger)

	go runSweeper(ctx, cfg.Session.SweepInterval, sessions, metrics, logger)

	if cmd != nil {
		cmd.Println("ccaw serving on", httpServer.Addr())
	}
	logger.Info("ccaw ready", "http_addr", httpServer.Addr(), "base_path", cfg.HTTP.BasePath)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err, ok := <-httpErrCh:
		if ok && err != nil {
			return oops.Code("SERVER_FAILED").With("server", "http").Wrap(err)
		}
		return nil
	case err, ok := <-obsErrCh:
		if ok && err != nil {
			return oops.Code("SERVER_FAILED").With("server", "observability").Wrap(err)
		}
		return nil
	}
}

func autoMigrate(deps *ServeDeps, databaseURL string, logger *slog.Logger) error {
	migrator, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("AUTO_MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	logger.Info("database migrations applied")
	return nil
}

// buildServices wires repositories, hasher and mailer into the auth services.
func buildServices(cfg *config.Config, db Database, metrics *observability.Metrics, logger *slog.Logger, deps *ServeDeps) (httpapi.Services, *auth.SessionService, error) {
	speakers := postgres.NewSpeakerRepository(db)
	webSessions := postgres.NewWebSessionRepository(db)
	hasher := auth.NewArgon2idHasher()

	transport, err := deps.TransportFactory(cfg.Mail, logger)
	if err != nil {
		return httpapi.Services{}, nil, oops.Code("CONFIG_INVALID").With("component", "mail transport").Wrap(err)
	}
	if cfg.Mail.Provider == config.MailProviderLog {
		logger.Warn("credential emails are logged, not delivered; forgot-password will rotate passwords users never receive",
			"mail_provider", cfg.Mail.Provider)
	}
	notifier, err := mail.NewNotifier(transport, mail.Config{
		From:     mail.Sender{Name: cfg.Mail.FromName, Address: cfg.Mail.FromAddress},
		LoginURL: cfg.Mail.LoginURL,
	}, metrics)
	if err != nil {
		return httpapi.Services{}, nil, oops.Code("CONFIG_INVALID").With("component", "notifier").Wrap(err)
	}

	sessions, err := auth.NewSessionServiceWithLogger(speakers, webSessions, hasher, cfg.Session.TTL, logger)
	if err != nil {
		return httpapi.Services{}, nil, err
	}
	signups, err := auth.NewSignupServiceWithLogger(speakers, hasher, notifier, logger)
	if err != nil {
		return httpapi.Services{}, nil, err
	}
	passwords, err := auth.NewPasswordServiceWithLogger(speakers, hasher, notifier, logger)
	if err != nil {
		return httpapi.Services{}, nil, err
	}
	privileges, err := auth.NewPrivilegeServiceWithLogger(speakers, logger)
	if err != nil {
		return httpapi.Services{}, nil, err
	}
	uploads, err := auth.NewRedactionServiceWithLogger(speakers, logger)
	if err != nil {
		return httpapi.Services{}, nil, err
	}

	return httpapi.Services{
		Sessions:   sessions,
		Signups:    signups,
		Passwords:  passwords,
		Privileges: privileges,
		Uploads:    uploads,
	}, sessions, nil
}

func stopServer(s Server, name string, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		logger.Warn("error stopping server", "server", name, "error", err)
	}
}

// sessionSweeper removes expired sessions.
type sessionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// runSweeper calls SweepExpired every interval until ctx is done. A
// non-positive interval disables sweeping.
func runSweeper(ctx context.Context, interval time.Duration, sweeper sessionSweeper, metrics *observability.Metrics, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweeper.SweepExpired(ctx)
			if err != nil {
				errutil.LogErrorContext(ctx, logger, "session sweep failed", err)
				continue
			}
			metrics.RecordSweep(n)
			if n > 0 {
				logger.InfoContext(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}
