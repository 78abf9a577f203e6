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

// Package launcher turns a Steam compatibility tool invocation into a
// prepared and running game: it looks up the title, fetches and installs its
// engine, runs first-time setup and finally starts the engine.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/luxtorpeda-dev/lux/pkg/database/historydb"
	"github.com/luxtorpeda-dev/lux/pkg/descriptor"
	"github.com/luxtorpeda-dev/lux/pkg/dialog"
	"github.com/luxtorpeda-dev/lux/pkg/helpers/command"
	"github.com/luxtorpeda-dev/lux/pkg/platforms/steamos"
	"github.com/luxtorpeda-dev/lux/pkg/setup"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/text/cases"
)

const (
	// ReservedExitCode is returned by engines that already wrote their own
	// error report to LastErrorFile.
	ReservedExitCode = 10
	LastErrorFile    = "last_error.txt"
	RunErrorTitle    = "Run Error"
	ChoiceTitle      = "Pick the engine below"

	ignoredExeSuffix = "iscriptevaluator.exe"
)

var errEmptyInvocation = errors.New("no executable given")

// Invocation is the command line Steam asked lux to run. The first token is
// the game executable, or an app id for manual use.
type Invocation []string

// Program returns the first token.
func (inv Invocation) Program() string {
	if len(inv) == 0 {
		return ""
	}
	return inv[0]
}

// Args returns the tokens after the first.
func (inv Invocation) Args() []string {
	if len(inv) < 2 {
		return nil
	}
	return inv[1:]
}

func (inv Invocation) String() string {
	return strings.Join(inv, " ")
}

// LaunchContext is everything a launch reads from the outside world.
type LaunchContext struct {
	Env        steamos.Env
	Invocation Invocation
	Platform   steamos.Platform
}

// NewLaunchContext snapshots environ and detects the platform.
func NewLaunchContext(args, environ []string) (LaunchContext, error) {
	env := steamos.Snapshot(environ)
	p, err := steamos.Detect(env)
	if err != nil {
		return LaunchContext{}, fmt.Errorf("failed to detect platform: %w", err)
	}
	return LaunchContext{Env: env, Invocation: slices.Clone(args), Platform: p}, nil
}

// Catalog looks up title descriptors.
type Catalog interface {
	Refresh(ctx context.Context) error
	Load(appID string) (*descriptor.Descriptor, error)
}

// Packages fetches and unpacks engine archives.
type Packages interface {
	Download(ctx context.Context, appID string, files []descriptor.Download) error
	Install(ctx context.Context, appID string, files []descriptor.Download, dest string) error
}

// ChoiceStore remembers the engine picked for a title.
type ChoiceStore interface {
	Get(appID string) (string, bool)
	Put(appID, name string) error
}

// Recorder stores finished launches.
type Recorder interface {
	Record(ctx context.Context, l historydb.Launch) error
}

// Deps are the collaborators of a Launcher. Choices, History and
// SetupLocker are optional.
type Deps struct {
	FS          afero.Fs
	Exec        command.Executor
	Catalog     Catalog
	Packages    Packages
	Choices     ChoiceStore
	History     Recorder
	SetupLocker setup.Locker
	Clock       clockwork.Clock
	// Dialogs builds the dialogs for a child environment.
	Dialogs func(env []string) dialog.Dialogs
	// AppID resolves the title's app id from the environment and the first
	// invocation token.
	AppID func(env steamos.Env, program string) (string, error)
	// Chdir changes the process working directory.
	Chdir func(dir string) error
}

// Launcher runs launches. It is not safe for concurrent use; lux runs a
// single launch per process.
type Launcher struct {
	deps Deps
}

// New creates a Launcher.
func New(deps Deps) *Launcher {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &Launcher{deps: deps}
}

// Outcome describes a launch that reached the game.
type Outcome struct {
	AppID    string
	Command  descriptor.Resolved
	ExitCode int
}

// IsIgnoredExecutable reports whether program is a helper Steam runs
// through the compatibility tool that lux should not handle.
func IsIgnoredExecutable(program string) bool {
	return strings.HasSuffix(cases.Fold().String(program), ignoredExeSuffix)
}

func wrap(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}

// childEnv is the environment lux's own helpers see.
func childEnv(lc LaunchContext) (steamos.Env, steamos.Saved) {
	env, saved := steamos.SuppressVirtualGamepad(lc.Env, lc.Platform)
	return lc.Platform.Apply(env), saved
}

// Launch prepares the title named by the invocation and runs it. On success
// the game's exit status is in the Outcome; a failure before the game starts
// is returned as an error wrapping one of the Err kinds.
func (l *Launcher) Launch(ctx context.Context, lc LaunchContext) (out Outcome, err error) {
	program := lc.Invocation.Program()
	if program == "" {
		return out, errEmptyInvocation
	}
	if IsIgnoredExecutable(program) {
		log.Info().Str("exe", program).Msg("ignoring executable")
		return out, fmt.Errorf("%w: %s", ErrIgnoredExecutable, program)
	}

	started := l.deps.Clock.Now()
	defer func() {
		l.record(ctx, lc, out, started, err)
	}()

	env, saved := childEnv(lc)
	dlg := l.deps.Dialogs(env.Environ())

	if err := l.deps.Catalog.Refresh(ctx); err != nil {
		return out, wrap(ErrCatalogUnavailable, err)
	}

	appID, err := l.deps.AppID(lc.Env, program)
	if err != nil {
		return out, wrap(ErrUnknownApplication, err)
	}
	out.AppID = appID
	log.Info().
		Str("app_id", appID).
		Strs("command", lc.Invocation).
		Bool("handheld", lc.Platform.Handheld).
		Bool("gaming_mode", lc.Platform.GamingMode).
		Msg("launching")

	d, err := l.fetch(ctx, appID, dlg)
	if err != nil {
		return out, err
	}

	if d.UseOriginalCommandDirectory {
		dir := filepath.Dir(program)
		log.Info().Str("dir", dir).Msg("changing to original command directory")
		if err := l.deps.Chdir(dir); err != nil {
			return out, wrap(ErrChangeDirFailed, err)
		}
	}

	if d.Download != nil {
		if err := l.deps.Packages.Install(ctx, appID, d.Download, "."); err != nil {
			return out, wrap(ErrInstallFailed, err)
		}
	}

	if d.Setup != nil {
		m := &setup.Machine{
			FS:      l.deps.FS,
			Exec:    l.deps.Exec,
			Dialogs: dlg,
			Locker:  l.deps.SetupLocker,
			Env:     env,
		}
		if err := m.Run(ctx, d.Setup); err != nil {
			if Kind(err) == nil {
				err = wrap(ErrSetupInstallFailed, err)
			}
			return out, err
		}
	}

	gameEnv := steamos.WithPreloadRestored(saved.Restore(env))

	resolved, err := descriptor.ResolveCommand(d, lc.Invocation)
	if err != nil {
		return out, err
	}
	out.Command = resolved

	gameEnv = gameEnv.
		With(steamos.EnvLuxOriginalExe, program).
		With(steamos.EnvLuxOriginalExeFile, filepath.Base(program))
	args := slices.Concat(resolved.Args, lc.Invocation.Args())

	log.Info().Str("program", resolved.Program).Strs("args", args).Msg("running game")
	code, err := l.deps.Exec.Run(ctx, command.Options{Env: gameEnv.Environ(), InheritStdio: true},
		resolved.Program, args...)
	if err != nil {
		return out, wrap(ErrChildSpawnFailed, err)
	}
	out.ExitCode = code
	log.Info().Int("exit_code", code).Msg("game exited")

	if code == ReservedExitCode {
		l.reportRunError(ctx, gameEnv)
	}
	return out, nil
}

// fetch loads the descriptor for appID, applies the engine choice and
// downloads the archives it lists.
func (l *Launcher) fetch(ctx context.Context, appID string, dlg dialog.Dialogs) (*descriptor.Descriptor, error) {
	d, err := l.deps.Catalog.Load(appID)
	if err != nil {
		return nil, wrap(ErrUnknownApplication, err)
	}

	if d.HasChoices() {
		name, err := l.choose(ctx, appID, d, dlg)
		if err != nil {
			return nil, wrap(ErrChoiceSelectionFailed, err)
		}
		log.Info().Str("choice", name).Msg("engine chosen")
		d, err = d.WithChoice(name)
		if err != nil {
			return nil, wrap(ErrDescriptorConversionFailed, err)
		}
	}

	if err := l.deps.Packages.Download(ctx, appID, d.Download); err != nil {
		return nil, wrap(ErrDownloadFailed, err)
	}
	return d, nil
}

func (l *Launcher) choose(
	ctx context.Context,
	appID string,
	d *descriptor.Descriptor,
	dlg dialog.Dialogs,
) (string, error) {
	names := d.ChoiceNames()
	if l.deps.Choices != nil {
		if name, ok := l.deps.Choices.Get(appID); ok && slices.Contains(names, name) {
			log.Info().Str("choice", name).Msg("using remembered engine choice")
			return name, nil
		}
	}

	name, err := dlg.SelectChoice(ctx, ChoiceTitle, names)
	if err != nil {
		return "", fmt.Errorf("engine selection: %w", err)
	}
	if l.deps.Choices != nil && slices.Contains(names, name) {
		if err := l.deps.Choices.Put(appID, name); err != nil {
			log.Warn().Err(err).Msg("failed to remember engine choice")
		}
	}
	return name, nil
}

func (l *Launcher) reportRunError(ctx context.Context, env steamos.Env) {
	data, err := afero.ReadFile(l.deps.FS, LastErrorFile)
	if err != nil {
		log.Error().Err(err).Msg("engine reported an error but no error file was found")
		return
	}
	log.Info().Str("error", string(data)).Msg("engine reported an error")
	if err := l.deps.Dialogs(env.Environ()).ShowError(ctx, RunErrorTitle, string(data)); err != nil {
		log.Error().Err(err).Msg("failed to show run error dialog")
	}
}

func (l *Launcher) record(ctx context.Context, lc LaunchContext, out Outcome, started time.Time, err error) {
	if l.deps.History == nil {
		return
	}
	entry := historydb.Launch{
		AppID:     out.AppID,
		Program:   lc.Invocation.Program(),
		Args:      lc.Invocation.Args(),
		StartedAt: started,
		EndedAt:   l.deps.Clock.Now(),
		ExitCode:  out.ExitCode,
	}
	if err != nil {
		entry.ExitCode = -1
		entry.Error = err.Error()
		if kind := Kind(err); kind != nil {
			entry.Kind = kind.Error()
		}
	}
	if rerr := l.deps.History.Record(ctx, entry); rerr != nil {
		log.Warn().Err(rerr).Msg("failed to record launch history")
	}
}

// ManualDownload fetches the archives of the app id given as the first
// invocation token without launching anything.
func (l *Launcher) ManualDownload(ctx context.Context, lc LaunchContext) error {
	appID := lc.Invocation.Program()
	if appID == "" {
		return errEmptyInvocation
	}
	env, _ := childEnv(lc)
	dlg := l.deps.Dialogs(env.Environ())

	if err := l.deps.Catalog.Refresh(ctx); err != nil {
		return wrap(ErrCatalogUnavailable, err)
	}
	if _, err := l.fetch(ctx, appID, dlg); err != nil {
		return err
	}
	log.Info().Str("app_id", appID).Msg("manual download complete")
	return nil
}
