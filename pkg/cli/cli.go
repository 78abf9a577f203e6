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

// Package cli wires configuration, logging and the lux components into the
// lux command line.
package cli

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/luxtorpeda-dev/lux/internal/telemetry"
	"github.com/luxtorpeda-dev/lux/pkg/config"
	"github.com/luxtorpeda-dev/lux/pkg/helpers"
	"github.com/luxtorpeda-dev/lux/pkg/platforms/steamos"
	"github.com/rs/zerolog/log"
)

// Session is the per-invocation state shared by every command.
type Session struct {
	Config *config.Instance
	Dirs   helpers.Dirs
	RunID  string
	// Environ is the environment lux was started with.
	Environ []string
}

// PlatformName names the detected platform for logs and error reports.
func PlatformName(environ []string) string {
	p, err := steamos.Detect(steamos.Snapshot(environ))
	switch {
	case err != nil:
		return "linux"
	case p.GamingMode:
		return "steamdeck-gamingmode"
	case p.Handheld:
		return "steamdeck"
	default:
		return "linux"
	}
}

// Setup creates the lux directories, loads the user config and initializes
// logging and error reporting.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	dirs helpers.Dirs,
	defaults config.Values,
	writers []io.Writer,
	environ []string,
	getenv func(string) string,
) (*Session, error) {
	if err := helpers.EnsureDirectories(dirs); err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	// console only until the config says whether to write a file
	if err := helpers.InitLogging("", writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(dirs.Config, defaults)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	logFile := ""
	if cfg.WriteLogFile() || helpers.WriteLoggingRequested(getenv) {
		logFile = dirs.LogFile()
	}
	if err := helpers.InitLogging(logFile, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg.ApplyLogLevel()

	runID := uuid.New().String()
	log.Logger = log.With().Str("run_id", runID).Logger()
	platform := PlatformName(environ)
	log.Info().
		Str("version", config.AppVersion).
		Str("platform", platform).
		Str("log_file", logFile).
		Msg("lux starting")

	if err := telemetry.Init(telemetry.Options{
		Enabled:    cfg.ErrorReporting(),
		DSN:        cfg.ErrorReportingDSN(),
		DeviceID:   cfg.DeviceID(),
		AppVersion: config.AppVersion,
		Platform:   platform,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return &Session{
		Config:  cfg,
		Dirs:    dirs,
		RunID:   runID,
		Environ: environ,
	}, nil
}
