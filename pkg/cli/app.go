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

package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/luxtorpeda-dev/lux/pkg/catalog"
	"github.com/luxtorpeda-dev/lux/pkg/database/historydb"
	"github.com/luxtorpeda-dev/lux/pkg/dialog"
	"github.com/luxtorpeda-dev/lux/pkg/helpers"
	"github.com/luxtorpeda-dev/lux/pkg/helpers/command"
	"github.com/luxtorpeda-dev/lux/pkg/launcher"
	"github.com/luxtorpeda-dev/lux/pkg/lock"
	"github.com/luxtorpeda-dev/lux/pkg/packages"
	"github.com/luxtorpeda-dev/lux/pkg/platforms/shared/steam"
	"github.com/luxtorpeda-dev/lux/pkg/platforms/steamos"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Launcher runs launches and manual downloads.
type Launcher interface {
	Launch(ctx context.Context, lc launcher.LaunchContext) (launcher.Outcome, error)
	ManualDownload(ctx context.Context, lc launcher.LaunchContext) error
}

// Lock serializes wait-before-run launches.
type Lock interface {
	Acquire(ctx context.Context) (*lock.Lease, error)
}

// Catalog is what mgmt lists.
type Catalog interface {
	Refresh(ctx context.Context) error
	Entries() ([]catalog.Entry, error)
}

// History is what mgmt reads recent launches from.
type History interface {
	Recent(ctx context.Context, limit int) ([]historydb.Launch, error)
}

// App holds the components the commands run against. History is optional.
type App struct {
	Launcher Launcher
	Lock     Lock
	Catalog  Catalog
	History  History
	Stdout   io.Writer
	Environ  []string

	mu      sync.Mutex
	lease   *lock.Lease
	closers []func() error
}

// timedCatalog bounds every refresh by a timeout.
type timedCatalog struct {
	*catalog.Catalog
	timeout time.Duration
}

func (c timedCatalog) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	//nolint:wrapcheck // error context added by caller
	return c.Catalog.Refresh(ctx)
}

// NewApp builds the real components from the session's config.
func NewApp(ctx context.Context, s *Session) *App {
	cfg := s.Config
	fs := afero.NewOsFs()
	client := helpers.NewHTTPClient()
	executor := &command.RealExecutor{}

	cat := timedCatalog{
		Catalog: catalog.New(fs, catalog.Options{
			Client:       client,
			URL:          cfg.CatalogURL(),
			CacheDir:     s.Dirs.Cache,
			UserPackages: cfg.UserPackagesPath(s.Dirs.Config),
		}),
		timeout: cfg.CatalogRefreshTimeout(),
	}

	app := &App{
		Catalog: cat,
		Stdout:  os.Stdout,
		Environ: s.Environ,
		Lock: lock.New(lock.Options{
			Path:         s.Dirs.PidFile(),
			PollInterval: cfg.LockPollInterval(),
			WaitTimeout:  cfg.LockWaitTimeout(),
		}),
	}

	deps := launcher.Deps{
		FS:       fs,
		Exec:     executor,
		Catalog:  cat,
		Packages: packages.New(fs, client, s.Dirs.Cache),
		SetupLocker: lock.Locker{
			PollInterval: cfg.LockPollInterval(),
			WaitTimeout:  cfg.LockWaitTimeout(),
		},
		Dialogs: func(env []string) dialog.Dialogs {
			d, err := dialog.New(cfg.DialogsBackend(), executor, env)
			if err != nil {
				log.Warn().Err(err).Msg("falling back to automatic dialog backend")
				d, _ = dialog.New(dialog.BackendAuto, executor, env)
			}
			return d
		},
		AppID: func(env steamos.Env, program string) (string, error) {
			//nolint:wrapcheck // error context added by caller
			return steam.Resolver{Getenv: env.Get}.AppID(program)
		},
		Chdir: os.Chdir,
	}

	if cfg.RememberChoices() {
		deps.Choices = launcher.FileChoiceStore{FS: fs, Dir: s.Dirs.ChoicesDir()}
	}

	if cfg.HistoryEnabled() {
		db, err := historydb.Open(ctx, historydb.Options{Path: s.Dirs.HistoryFile(), RunID: s.RunID})
		if err != nil {
			log.Warn().Err(err).Msg("launch history unavailable")
		} else {
			if _, err := db.Prune(ctx, cfg.HistoryRetention()); err != nil {
				log.Warn().Err(err).Msg("failed to prune launch history")
			}
			deps.History = db
			app.History = db
			app.closers = append(app.closers, db.Close)
		}
	}

	app.Launcher = launcher.New(deps)
	return app
}

func (a *App) hold(lease *lock.Lease) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lease = lease
}

// ReleaseLock drops the wait-before-run lease if one is held. Safe to call
// from a signal handler while a launch is running.
func (a *App) ReleaseLock() {
	a.mu.Lock()
	lease := a.lease
	a.lease = nil
	a.mu.Unlock()
	if lease == nil {
		return
	}
	if err := lease.Release(); err != nil {
		log.Warn().Err(err).Msg("failed to release lock")
	}
}

// Close releases the lease and closes open databases.
func (a *App) Close() error {
	a.ReleaseLock()
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()
	var errs []error
	for _, c := range closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
