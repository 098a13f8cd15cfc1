// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

// Package config loads service configuration from defaults, an optional YAML
// file, command-line flags and a few well-known environment variables, in
// that order of increasing precedence (environment only fills empty values).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Mail providers.
const (
	MailProviderLog     = "log"
	MailProviderMailgun = "mailgun"
)

// Environment variables consulted when the matching key is empty.
const (
	EnvDatabaseURL   = "DATABASE_URL"
	EnvMailgunAPIKey = "MAILGUN_API_KEY"
)

// HTTPConfig configures the auth API listener.
type HTTPConfig struct {
	Addr         string `koanf:"addr"`
	BasePath     string `koanf:"base_path"`
	SecureCookie bool   `koanf:"secure_cookie"`
}

// MetricsConfig configures the observability listener. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// DatabaseConfig configures PostgreSQL access.
type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// SessionConfig configures web sessions.
type SessionConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// MailConfig configures outgoing credential email.
type MailConfig struct {
	Provider    string `koanf:"provider"`
	Domain      string `koanf:"domain"`
	APIKey      string `koanf:"api_key"`
	APIBase     string `koanf:"api_base"`
	FromName    string `koanf:"from_name"`
	FromAddress string `koanf:"from_address"`
	LoginURL    string `koanf:"login_url"`
}

// Config is the complete service configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Mail     MailConfig     `koanf:"mail"`
}

var defaults = map[string]any{
	"http.addr":                ":8080",
	"http.base_path":           "/auth",
	"http.secure_cookie":       false,
	"metrics.addr":             "127.0.0.1:9100",
	"log.format":               "json",
	"log.level":                "info",
	"database.url":             "",
	"database.connect_timeout": 30 * time.Second,
	"session.ttl":              24 * time.Hour,
	"session.sweep_interval":   time.Hour,
	"mail.provider":            MailProviderLog,
	"mail.domain":              "conferencecaw.org",
	"mail.api_key":             "",
	"mail.api_base":            "",
	"mail.from_name":           "Brooke Meyer",
	"mail.from_address":        "bmeyer@genesisshelter.org",
	"mail.login_url":           "https://ccaw-angcli.herokuapp.com/login",
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"http-addr":       "http.addr",
	"base-path":       "http.base_path",
	"secure-cookie":   "http.secure_cookie",
	"metrics-addr":    "metrics.addr",
	"log-format":      "log.format",
	"log-level":       "log.level",
	"database-url":    "database.url",
	"session-ttl":     "session.ttl",
	"mail-provider":   "mail.provider",
	"mail-login-url":  "mail.login_url",
	"connect-timeout": "database.connect_timeout",
}

// RegisterFlags adds the configuration flags to fs. Flag defaults mirror the
// built-in defaults and only take effect when no file sets the key.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("http-addr", defaults["http.addr"].(string), "auth API listen address")
	fs.String("base-path", defaults["http.base_path"].(string), "route prefix for the auth API")
	fs.Bool("secure-cookie", false, "mark the session cookie Secure")
	fs.String("metrics-addr", defaults["metrics.addr"].(string), "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", defaults["log.format"].(string), "log format (json or text)")
	fs.String("log-level", defaults["log.level"].(string), "log level (debug, info, warn, error)")
	fs.String("database-url", "", "PostgreSQL URL (default: $DATABASE_URL)")
	fs.Duration("session-ttl", defaults["session.ttl"].(time.Duration), "web session lifetime")
	fs.String("mail-provider", MailProviderLog, "mail provider (log or mailgun)")
	fs.String("mail-login-url", defaults["mail.login_url"].(string), "login link placed in credential emails")
	fs.Duration("connect-timeout", defaults["database.connect_timeout"].(time.Duration), "how long to wait for the database")
}

// LoadOptions controls Load.
type LoadOptions struct {
	// File is an optional YAML file path.
	File string
	// Flags, if set, overrides keys for flags the user changed.
	Flags *pflag.FlagSet
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Load builds and validates the configuration.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", key).Wrap(err)
		}
	}

	if opts.File != "" {
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("file", opts.File).Wrap(err)
		}
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "unmarshal").Wrap(err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = opts.Getenv(EnvDatabaseURL)
	}
	if cfg.Mail.APIKey == "" {
		cfg.Mail.APIKey = opts.Getenv(EnvMailgunAPIKey)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := func(key, format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
	}

	switch {
	case c.HTTP.Addr == "":
		return invalid("http.addr", "http.addr is required")
	case c.HTTP.BasePath != "" && !strings.HasPrefix(c.HTTP.BasePath, "/"):
		return invalid("http.base_path", "http.base_path must start with '/', got %q", c.HTTP.BasePath)
	case c.Log.Format != "json" && c.Log.Format != "text":
		return invalid("log.format", "log.format must be 'json' or 'text', got %q", c.Log.Format)
	case c.Database.ConnectTimeout <= 0:
		return invalid("database.connect_timeout", "database.connect_timeout must be positive")
	case c.Session.TTL <= 0:
		return invalid("session.ttl", "session.ttl must be positive")
	case c.Session.SweepInterval < 0:
		return invalid("session.sweep_interval", "session.sweep_interval cannot be negative")
	case c.Mail.FromAddress == "":
		return invalid("mail.from_address", "mail.from_address is required")
	case c.Mail.LoginURL == "":
		return invalid("mail.login_url", "mail.login_url is required")
	}

	switch c.Mail.Provider {
	case MailProviderLog:
	case MailProviderMailgun:
		if c.Mail.Domain == "" {
			return invalid("mail.domain", "mail.domain is required for mailgun")
		}
		if c.Mail.APIKey == "" {
			return invalid("mail.api_key", "mail.api_key (or %s) is required for mailgun", EnvMailgunAPIKey)
		}
	default:
		return invalid("mail.provider", "mail.provider must be %q or %q, got %q", MailProviderLog, MailProviderMailgun, c.Mail.Provider)
	}
	return nil
}
