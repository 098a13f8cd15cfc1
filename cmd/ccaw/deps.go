// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/ccaw/speakerauth/internal/auth/postgres"
	"github.com/ccaw/speakerauth/internal/config"
	"github.com/ccaw/speakerauth/internal/httpapi"
	"github.com/ccaw/speakerauth/internal/mail"
	"github.com/ccaw/speakerauth/internal/observability"
	"github.com/ccaw/speakerauth/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// Nil fields use their default implementations.
type ServeDeps struct {
	// DatabaseFactory opens the database.
	// Default: store.Connect
	DatabaseFactory func(ctx context.Context, url string, opts store.ConnectOptions) (Database, error)

	// MigratorFactory creates the migrator used by --auto-migrate.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (AutoMigrator, error)

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServerWithLogger
	ObservabilityServerFactory func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// TransportFactory creates the mail transport.
	// Default: newMailTransport
	TransportFactory func(cfg config.MailConfig, logger *slog.Logger) (mail.Transport, error)

	// HTTPServerFactory creates the auth API server.
	// Default: httpapi.NewServer
	HTTPServerFactory func(cfg httpapi.Config, svc httpapi.Services, metrics *observability.Metrics, logger *slog.Logger) (Server, error)

	// LogWriter receives log output. Default: os.Stderr.
	LogWriter io.Writer
}

// Database is the part of *pgxpool.Pool the service uses.
type Database interface {
	postgres.DB
	Ping(ctx context.Context) error
	Close()
}

// AutoMigrator is the part of store.Migrator used at startup.
type AutoMigrator interface {
	Up() error
	Close() error
}

// Server is a background listener with graceful shutdown.
type Server interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ObservabilityServer is a Server that also owns the application metrics.
type ObservabilityServer interface {
	Server
	Metrics() *observability.Metrics
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	if d == nil {
		d = &ServeDeps{}
	}
	if d.DatabaseFactory == nil {
		d.DatabaseFactory = func(ctx context.Context, url string, opts store.ConnectOptions) (Database, error) {
			return store.Connect(ctx, url, opts)
		}
	}
	if d.MigratorFactory == nil {
		d.MigratorFactory = func(url string) (AutoMigrator, error) {
			return store.NewMigrator(url)
		}
	}
	if d.ObservabilityServerFactory == nil {
		d.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServerWithLogger(addr, ready, logger)
		}
	}
	if d.TransportFactory == nil {
		d.TransportFactory = newMailTransport
	}
	if d.HTTPServerFactory == nil {
		d.HTTPServerFactory = func(cfg httpapi.Config, svc httpapi.Services, metrics *observability.Metrics, logger *slog.Logger) (Server, error) {
			return httpapi.NewServer(cfg, svc, metrics, logger)
		}
	}
	return d
}

func newMailTransport(cfg config.MailConfig, logger *slog.Logger) (mail.Transport, error) {
	if cfg.Provider == config.MailProviderMailgun {
		return mail.NewMailgunTransport(cfg.Domain, cfg.APIKey, cfg.APIBase)
	}
	return mail.NewLogTransport(logger), nil
}
