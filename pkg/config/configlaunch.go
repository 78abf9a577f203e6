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
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultCatalogURL            = "https://luxtorpeda-dev.github.io/packages.json"
	DefaultCatalogRefreshTimeout = 30 * time.Second
	DefaultLockWaitTimeout       = 5 * time.Minute
	DefaultLockPollInterval      = 500 * time.Millisecond
	DefaultHistoryRetention      = 90 * 24 * time.Hour

	DialogsAuto     = "auto"
	DialogsZenity   = "zenity"
	DialogsNative   = "native"
	DialogsTerminal = "terminal"
)

// Catalog configures where title descriptors come from.
type Catalog struct {
	URL string `toml:"url"`
	// UserPackages is a descriptor file merged over the downloaded catalog.
	// Relative paths are resolved against the config dir.
	UserPackages   string `toml:"user_packages,omitempty"`
	RefreshTimeout string `toml:"refresh_timeout,omitempty"`
}

// Lock configures waiting on another running lux process.
type Lock struct {
	WaitTimeout  string `toml:"wait_timeout,omitempty"`
	PollInterval string `toml:"poll_interval,omitempty"`
}

type Dialogs struct {
	Backend string `toml:"backend"`
}

type History struct {
	Enabled   *bool  `toml:"enabled,omitempty"`
	Retention string `toml:"retention,omitempty"`
}

type Choices struct {
	Remember *bool `toml:"remember,omitempty"`
}

func parseDuration(name, s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Warn().Str("setting", name).Str("value", s).Msg("invalid duration, using default")
		return def
	}
	return d
}

func (c *Instance) CatalogURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Catalog.URL == "" {
		return DefaultCatalogURL
	}
	return c.vals.Catalog.URL
}

// UserPackagesPath returns the user override file, resolved against
// configDir when relative.
func (c *Instance) UserPackagesPath(configDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	path := c.vals.Catalog.UserPackages
	if path == "" {
		path = UserPackages
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configDir, path)
}

func (c *Instance) CatalogRefreshTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("catalog.refresh_timeout", c.vals.Catalog.RefreshTimeout, DefaultCatalogRefreshTimeout)
}

func (c *Instance) LockWaitTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("lock.wait_timeout", c.vals.Lock.WaitTimeout, DefaultLockWaitTimeout)
}

func (c *Instance) LockPollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("lock.poll_interval", c.vals.Lock.PollInterval, DefaultLockPollInterval)
}

func (c *Instance) DialogsBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Dialogs.Backend == "" {
		return DialogsAuto
	}
	return c.vals.Dialogs.Backend
}

func (c *Instance) SetDialogsBackend(backend string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Dialogs.Backend = backend
}

// HistoryEnabled defaults to true.
func (c *Instance) HistoryEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.History.Enabled == nil {
		return true
	}
	return *c.vals.History.Enabled
}

func (c *Instance) HistoryRetention() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("history.retention", c.vals.History.Retention, DefaultHistoryRetention)
}

// RememberChoices defaults to true.
func (c *Instance) RememberChoices() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Choices.Remember == nil {
		return true
	}
	return *c.vals.Choices.Remember
}
