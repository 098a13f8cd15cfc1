// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccaw/speakerauth/internal/config"
	"github.com/ccaw/speakerauth/pkg/errutil"
)

func noEnv(string) string { return "" }

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ccaw.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func flagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	fs.String("config", "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.LoadOptions{Getenv: noEnv})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "/auth", cfg.HTTP.BasePath)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 30*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, config.MailProviderLog, cfg.Mail.Provider)
	assert.Equal(t, "conferencecaw.org", cfg.Mail.Domain)
	assert.Equal(t, "Brooke Meyer", cfg.Mail.FromName)
	assert.Equal(t, "bmeyer@genesisshelter.org", cfg.Mail.FromAddress)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeYAML(t, `
http:
  addr: ":9090"
  secure_cookie: true
session:
  ttl: 2h
mail:
  provider: mailgun
  api_key: key-from-file
`)

	cfg, err := config.Load(config.LoadOptions{File: path, Getenv: noEnv})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.True(t, cfg.HTTP.SecureCookie)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, config.MailProviderMailgun, cfg.Mail.Provider)
	assert.Equal(t, "key-from-file", cfg.Mail.APIKey)
	assert.Equal(t, "/auth", cfg.HTTP.BasePath, "unset keys keep defaults")
}

func TestLoad_ChangedFlagsOverrideFile(t *testing.T) {
	path := writeYAML(t, "http:\n  addr: \":9090\"\nlog:\n  format: text\n")

	cfg, err := config.Load(config.LoadOptions{
		File:   path,
		Flags:  flagSet(t, "--http-addr", ":7070", "--session-ttl", "30m"),
		Getenv: noEnv,
	})
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "text", cfg.Log.Format, "unchanged flags must not clobber the file")
}

func TestLoad_EnvironmentFillsEmptyValues(t *testing.T) {
	env := map[string]string{
		config.EnvDatabaseURL:   "postgres://env/db",
		config.EnvMailgunAPIKey: "key-env",
	}
	getenv := func(k string) string { return env[k] }

	cfg, err := config.Load(config.LoadOptions{Getenv: getenv})
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.Equal(t, "key-env", cfg.Mail.APIKey)

	cfg, err = config.Load(config.LoadOptions{
		Flags:  flagSet(t, "--database-url", "postgres://flag/db"),
		Getenv: getenv,
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag/db", cfg.Database.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(config.LoadOptions{File: filepath.Join(t.TempDir(), "absent.yaml"), Getenv: noEnv})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		cfg, err := config.Load(config.LoadOptions{Getenv: noEnv})
		require.NoError(t, err)
		return *cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		errMsg string
	}{
		{"empty http addr", func(c *config.Config) { c.HTTP.Addr = "" }, "http.addr is required"},
		{"relative base path", func(c *config.Config) { c.HTTP.BasePath = "auth" }, "must start with '/'"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"zero ttl", func(c *config.Config) { c.Session.TTL = 0 }, "session.ttl must be positive"},
		{"negative sweep", func(c *config.Config) { c.Session.SweepInterval = -time.Second }, "sweep_interval"},
		{"zero connect timeout", func(c *config.Config) { c.Database.ConnectTimeout = 0 }, "connect_timeout"},
		{"unknown mail provider", func(c *config.Config) { c.Mail.Provider = "smtp" }, "mail.provider"},
		{"mailgun without key", func(c *config.Config) { c.Mail.Provider = config.MailProviderMailgun }, "mail.api_key"},
		{"mailgun without domain", func(c *config.Config) {
			c.Mail.Provider = config.MailProviderMailgun
			c.Mail.APIKey = "k"
			c.Mail.Domain = ""
		}, "mail.domain"},
		{"missing sender", func(c *config.Config) { c.Mail.FromAddress = "" }, "mail.from_address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})
}
