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

package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/luxtorpeda-dev/lux/pkg/config"
)

// Dirs are the base directories lux keeps its files in.
type Dirs struct {
	// Config holds config.toml, user packages and remembered choices.
	Config string
	// Cache holds packages.json and downloaded archives.
	Cache string
	// State holds the log file.
	State string
	// Data holds the history database.
	Data string
	// Runtime holds the lock marker.
	Runtime string
}

// DefaultDirs returns the XDG base directories for lux.
func DefaultDirs() Dirs {
	return DirsUnder(
		xdg.ConfigHome,
		xdg.CacheHome,
		xdg.StateHome,
		xdg.DataHome,
		xdg.RuntimeDir,
	)
}

// DirsUnder places each lux directory inside the matching base.
func DirsUnder(configHome, cacheHome, stateHome, dataHome, runtimeDir string) Dirs {
	return Dirs{
		Config:  filepath.Join(configHome, config.AppName),
		Cache:   filepath.Join(cacheHome, config.AppName),
		State:   filepath.Join(stateHome, config.AppName),
		Data:    filepath.Join(dataHome, config.AppName),
		Runtime: filepath.Join(runtimeDir, config.AppName),
	}
}

func (d Dirs) LogFile() string {
	return filepath.Join(d.State, config.LogFile)
}

func (d Dirs) PidFile() string {
	return filepath.Join(d.Runtime, config.PidFile)
}

func (d Dirs) HistoryFile() string {
	return filepath.Join(d.Data, config.HistoryFile)
}

func (d Dirs) ChoicesDir() string {
	return filepath.Join(d.Config, config.ChoicesDir)
}

// EnsureDirectories creates every directory in d.
func EnsureDirectories(d Dirs) error {
	for _, dir := range []string{d.Config, d.Cache, d.State, d.Data, d.Runtime} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
