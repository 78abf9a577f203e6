// Lux
// Copyright (c) 2026 The Lux Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Lux.
//
// Lux is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lux is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lux.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFrom(t *testing.T, content string) *Instance {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	cfg := &Instance{
		cfgPath:  cfgPath,
		vals:     BaseDefaults,
		defaults: BaseDefaults,
	}
	require.NoError(t, cfg.Load())
	return cfg
}

func TestNewConfig_CreatesDefaults(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfg, err := NewConfig(filepath.Join(tempDir, "lux"), BaseDefaults)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(tempDir, "lux", CfgFile))
	_, err = uuid.Parse(cfg.DeviceID())
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalogURL, cfg.CatalogURL())
	assert.Equal(t, DialogsAuto, cfg.DialogsBackend())
	assert.False(t, cfg.ErrorReporting())

	again, err := NewConfig(filepath.Join(tempDir, "lux"), BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, cfg.DeviceID(), again.DeviceID())
}

//nolint:paralleltest // modifies environment
func TestNewConfig_EnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "custom.toml")
	t.Setenv(CfgEnv, cfgPath)

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, cfg.Path())
	assert.FileExists(t, cfgPath)
}

func TestLoad_PreservesDefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	cfg := loadFrom(t, fmt.Sprintf("config_schema = %d\n", SchemaVersion))

	assert.Equal(t, DefaultCatalogURL, cfg.CatalogURL())
	assert.Equal(t, DialogsAuto, cfg.DialogsBackend())
	assert.True(t, cfg.HistoryEnabled())
	assert.True(t, cfg.RememberChoices())
	assert.Equal(t, DefaultLockWaitTimeout, cfg.LockWaitTimeout())
	assert.Equal(t, DefaultLockPollInterval, cfg.LockPollInterval())
	assert.Equal(t, DefaultCatalogRefreshTimeout, cfg.CatalogRefreshTimeout())
	assert.Equal(t, DefaultHistoryRetention, cfg.HistoryRetention())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	cfg := loadFrom(t, fmt.Sprintf(`config_schema = %d
error_reporting = true
error_reporting_dsn = "https://key@sentry.example.com/1"

[catalog]
url = "https://example.com/packages.json"
user_packages = "/srv/lux/user.json"
refresh_timeout = "5s"

[lock]
wait_timeout = "1m"
poll_interval = "250ms"

[logging]
debug = true
write_file = true

[dialogs]
backend = "terminal"

[history]
enabled = false
retention = "24h"

[choices]
remember = false
`, SchemaVersion))

	assert.True(t, cfg.ErrorReporting())
	assert.Equal(t, "https://key@sentry.example.com/1", cfg.ErrorReportingDSN())
	assert.Equal(t, "https://example.com/packages.json", cfg.CatalogURL())
	assert.Equal(t, "/srv/lux/user.json", cfg.UserPackagesPath("/home/deck/.config/lux"))
	assert.Equal(t, 5*time.Second, cfg.CatalogRefreshTimeout())
	assert.Equal(t, time.Minute, cfg.LockWaitTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.LockPollInterval())
	assert.True(t, cfg.DebugLogging())
	assert.True(t, cfg.WriteLogFile())
	assert.Equal(t, DialogsTerminal, cfg.DialogsBackend())
	assert.False(t, cfg.HistoryEnabled())
	assert.Equal(t, 24*time.Hour, cfg.HistoryRetention())
	assert.False(t, cfg.RememberChoices())
}

func TestLoad_SchemaMismatch(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte("config_schema = 99\n"), 0o600))
	cfg := &Instance{cfgPath: cfgPath, vals: BaseDefaults, defaults: BaseDefaults}

	require.ErrorIs(t, cfg.Load(), ErrSchemaMismatch)
}

func TestLoad_InvalidToml(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte("[catalog\nurl = 1"), 0o600))
	cfg := &Instance{cfgPath: cfgPath, vals: BaseDefaults, defaults: BaseDefaults}

	err := cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestInvalidDurationsFallBack(t *testing.T) {
	t.Parallel()

	cfg := loadFrom(t, fmt.Sprintf(`config_schema = %d
[lock]
wait_timeout = "soon"
poll_interval = "-1s"
`, SchemaVersion))

	assert.Equal(t, DefaultLockWaitTimeout, cfg.LockWaitTimeout())
	assert.Equal(t, DefaultLockPollInterval, cfg.LockPollInterval())
}

func TestUserPackagesPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "default", value: "", want: filepath.Join("/cfg", UserPackages)},
		{name: "relative", value: "mine.json", want: filepath.Join("/cfg", "mine.json")},
		{name: "absolute", value: "/data/mine.json", want: "/data/mine.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &Instance{vals: Values{Catalog: Catalog{UserPackages: tt.value}}}
			assert.Equal(t, tt.want, cfg.UserPackagesPath("/cfg"))
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	cfg, err := NewConfig(tempDir, BaseDefaults)
	require.NoError(t, err)

	cfg.SetDialogsBackend(DialogsZenity)
	require.NoError(t, cfg.Save())
	require.NoError(t, cfg.Load())
	assert.Equal(t, DialogsZenity, cfg.DialogsBackend())

	data, err := os.ReadFile(filepath.Join(tempDir, CfgFile))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "remember", "nil pointers should be omitted")
	assert.Contains(t, string(data), "config_schema = 1")
}

//nolint:paralleltest // changes the global log level
func TestApplyLogLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	loadFrom(t, "config_schema = 1\n[logging]\ndebug = true\n").ApplyLogLevel()
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	loadFrom(t, "config_schema = 1\n").ApplyLogLevel()
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
