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

// Package setup runs a title's one-time setup: license review, input
// prompts, the setup command and the completion sentinel.
package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/luxtorpeda-dev/lux/pkg/descriptor"
	"github.com/luxtorpeda-dev/lux/pkg/dialog"
	"github.com/luxtorpeda-dev/lux/pkg/helpers/command"
	"github.com/luxtorpeda-dev/lux/pkg/platforms/steamos"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	LicenseTitle       = "Closed Source Engine EULA"
	ErrorTitle         = "Setup Error"
	ErrorMessage       = "Setup failed to complete"
	InputDialogType    = "input"
	sentinelLockSuffix = ".lock"
)

var (
	// ErrRejected means the user declined the license.
	ErrRejected = errors.New("license was rejected")
	// ErrPromptFailed means an input dialog failed or was cancelled.
	ErrPromptFailed = errors.New("setup input dialog failed")
	// ErrInstallFailed means the setup command failed or the sentinel could
	// not be written.
	ErrInstallFailed = errors.New("setup failed")
	// ErrUnsafeKey means an input dialog key is not a plain relative path.
	ErrUnsafeKey = errors.New("input key escapes the game directory")
)

// State is a step of the setup sequence.
type State int

const (
	NotStarted State = iota
	LicenseReview
	InteractivePrompts
	Installing
	Complete
	Rejected
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case LicenseReview:
		return "license_review"
	case InteractivePrompts:
		return "interactive_prompts"
	case Installing:
		return "installing"
	case Complete:
		return "complete"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Locker guards the setup of one title across concurrent lux processes.
type Locker interface {
	Lock(ctx context.Context, path string) (unlock func(), err error)
}

// Machine runs the setup sequence. Paths in the descriptor are relative to
// the working directory, which is the game directory.
type Machine struct {
	FS      afero.Fs
	Exec    command.Executor
	Dialogs dialog.Dialogs
	// Locker is optional. Without it two racing processes may both run the
	// setup command; the sentinel itself is still created exclusively.
	Locker Locker
	// Env is the environment for setup children, LD_PRELOAD is cleared on
	// top of it.
	Env   steamos.Env
	state State
}

// State returns the step the machine last reached.
func (m *Machine) State() State {
	return m.state
}

func (m *Machine) enter(s State) {
	log.Debug().Stringer("from", m.state).Stringer("to", s).Msg("setup state")
	m.state = s
}

// IsComplete reports whether the setup sentinel exists.
func IsComplete(fs afero.Fs, s *descriptor.Setup) bool {
	ok, err := afero.Exists(fs, s.CompletePath)
	if err != nil {
		log.Warn().Err(err).Str("path", s.CompletePath).Msg("failed to check setup sentinel")
		return false
	}
	return ok
}

// Run performs the setup described by s unless its sentinel already exists.
func (m *Machine) Run(ctx context.Context, s *descriptor.Setup) error {
	if IsComplete(m.FS, s) {
		log.Info().Msg("setup already complete")
		m.enter(Complete)
		return nil
	}

	if m.Locker != nil {
		unlock, err := m.Locker.Lock(ctx, s.CompletePath+sentinelLockSuffix)
		if err != nil {
			return fmt.Errorf("failed to lock setup: %w", err)
		}
		defer unlock()

		// another process may have finished setup while we waited
		if IsComplete(m.FS, s) {
			log.Info().Msg("setup completed by another process")
			m.enter(Complete)
			return nil
		}
	}

	if err := m.reviewLicense(ctx, s); err != nil {
		return err
	}
	if err := m.prompt(ctx, s); err != nil {
		return err
	}
	return m.install(ctx, s)
}

func (m *Machine) childEnv() []string {
	return steamos.WithPreloadCleared(m.Env).Environ()
}

func (m *Machine) reviewLicense(ctx context.Context, s *descriptor.Setup) error {
	if s.LicensePath == "" {
		return nil
	}
	if ok, _ := afero.Exists(m.FS, s.LicensePath); !ok {
		log.Debug().Str("path", s.LicensePath).Msg("license file missing, skipping review")
		return nil
	}

	m.enter(LicenseReview)
	err := m.Dialogs.ShowFileWithConfirm(ctx, LicenseTitle, s.LicensePath)
	if err == nil {
		log.Info().Msg("license accepted")
		return nil
	}

	log.Info().Err(err).Msg("license rejected")
	m.enter(Rejected)
	if s.UninstallCommand != "" {
		log.Info().Str("command", s.UninstallCommand).Msg("running uninstall command")
		code, runErr := m.Exec.Run(ctx, command.Options{Env: m.childEnv(), InheritStdio: true}, s.UninstallCommand)
		if runErr != nil || code != 0 {
			log.Warn().Err(runErr).Int("exit_code", code).Msg("uninstall command failed")
		}
	}
	return ErrRejected
}

func (m *Machine) prompt(ctx context.Context, s *descriptor.Setup) error {
	entered := false
	for _, d := range s.Dialogs {
		if d.Type != InputDialogType {
			continue
		}
		if !entered {
			m.enter(InteractivePrompts)
			entered = true
		}

		if !filepath.IsLocal(d.Key) {
			log.Error().Str("key", d.Key).Msg("refusing input dialog key")
			return fmt.Errorf("%w: %w: %s", ErrPromptFailed, ErrUnsafeKey, d.Key)
		}

		value, err := m.Dialogs.TextInput(ctx, d.Title, d.Label)
		if err != nil {
			log.Error().Err(err).Str("key", d.Key).Msg("input dialog failed")
			return fmt.Errorf("%w: %w", ErrPromptFailed, err)
		}
		if err := afero.WriteFile(m.FS, d.Key, []byte(value), 0o600); err != nil {
			return fmt.Errorf("%w: failed to save %s: %w", ErrPromptFailed, d.Key, err)
		}
	}
	return nil
}

func (m *Machine) install(ctx context.Context, s *descriptor.Setup) error {
	m.enter(Installing)
	log.Info().Str("command", s.Command).Msg("running setup command")

	code, err := m.Exec.Run(ctx, command.Options{Env: m.childEnv(), InheritStdio: true}, s.Command)
	if err != nil || code != 0 {
		log.Error().Err(err).Int("exit_code", code).Msg("setup command failed")
		if derr := m.Dialogs.ShowError(ctx, ErrorTitle, ErrorMessage); derr != nil {
			log.Warn().Err(derr).Msg("failed to show setup error dialog")
		}
		if err == nil {
			err = fmt.Errorf("exit status %d", code)
		}
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}

	f, err := m.FS.OpenFile(s.CompletePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	switch {
	case errors.Is(err, os.ErrExist):
		log.Info().Msg("setup sentinel already created")
	case err != nil:
		return fmt.Errorf("%w: failed to create %s: %w", ErrInstallFailed, s.CompletePath, err)
	default:
		if err := f.Close(); err != nil {
			return fmt.Errorf("%w: failed to close %s: %w", ErrInstallFailed, s.CompletePath, err)
		}
	}

	m.enter(Complete)
	return nil
}
