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
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/luxtorpeda-dev/lux/internal/telemetry"
	"github.com/luxtorpeda-dev/lux/pkg/config"
	"github.com/luxtorpeda-dev/lux/pkg/launcher"
	"github.com/luxtorpeda-dev/lux/pkg/lock"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	Usage = "usage: lux [run | wait-before-run | waitforexitandrun | manual-download | mgmt] " +
		"<exe | app_id> [<exe_args>]"

	recentLaunches = 10
)

// ExitError carries a process exit status out of a command.
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps the result of Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// NewRootCommand builds the lux command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "lux",
		Short:         "Steam compatibility tool that runs games on native engines",
		Version:       config.AppVersion,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			printUsage(cmd.OutOrStdout())
			if len(args) == 0 {
				return nil
			}
			return &ExitError{Code: 1, Err: fmt.Errorf("unknown command %q", args[0])}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(app.Stdout)

	root.AddCommand(
		launchCommand(app, "run", "Prepare and run a game", false),
		launchCommand(app, "waitforexitandrun", "Prepare and run a game", false),
		launchCommand(app, "wait-before-run", "Wait for other launches to finish, then run a game", true),
		manualDownloadCommand(app),
		mgmtCommand(app),
	)
	return root
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, Usage)
}

func launchCommand(app *App, name, short string, serialized bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <exe | app_id> [<exe_args>]",
		Short: short,
		// game arguments pass through untouched
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				printUsage(cmd.OutOrStdout())
				return nil
			}
			return app.launch(cmd.Context(), args, serialized)
		},
	}
}

func (a *App) launch(ctx context.Context, args []string, serialized bool) error {
	if serialized {
		lease, err := a.Lock.Acquire(ctx)
		switch {
		case errors.Is(err, lock.ErrWaitTimeout):
			log.Warn().Msg("timed out waiting for another launch, continuing")
		case err != nil:
			return fmt.Errorf("failed to acquire launch lock: %w", err)
		default:
			a.hold(lease)
			defer a.ReleaseLock()
		}
	}

	lc, err := launcher.NewLaunchContext(args, a.Environ)
	if err != nil {
		return err
	}

	out, err := a.Launcher.Launch(ctx, lc)
	if err != nil {
		kind := ""
		if k := launcher.Kind(err); k != nil {
			kind = k.Error()
		}
		telemetry.TagLaunch(out.AppID, kind)
		log.Error().Err(err).Str("app_id", out.AppID).Msg("launch failed")
		return err
	}
	if out.ExitCode != 0 {
		return &ExitError{Code: out.ExitCode}
	}
	return nil
}

func manualDownloadCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "manual-download <app_id>",
		Short: "Download the engine files for an app id without launching",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				printUsage(cmd.OutOrStdout())
				return nil
			}
			lc, err := launcher.NewLaunchContext(args, app.Environ)
			if err != nil {
				return err
			}
			if err := app.Launcher.ManualDownload(cmd.Context(), lc); err != nil {
				log.Error().Err(err).Msg("manual download failed")
				return err
			}
			return nil
		},
	}
}

func mgmtCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mgmt",
		Short: "Refresh the catalog and list supported titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := app.Catalog.Refresh(ctx); err != nil {
				log.Error().Err(err).Msg("catalog refresh failed")
				return fmt.Errorf("%w: %w", launcher.ErrCatalogUnavailable, err)
			}
			entries, err := app.Catalog.Entries()
			if err != nil {
				return fmt.Errorf("failed to list catalog: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "APP ID\tNAME\tCHOICES\tDOWNLOADS\tSOURCE")
			for _, e := range entries {
				source := "catalog"
				if e.User {
					source = "user"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", e.AppID, e.GameName, e.Choices, e.Downloads, source)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to write listing: %w", err)
			}

			if app.History == nil {
				return nil
			}
			recent, err := app.History.Recent(ctx, recentLaunches)
			if err != nil {
				log.Warn().Err(err).Msg("failed to read launch history")
				return nil
			}
			if len(recent) == 0 {
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "STARTED\tAPP ID\tEXIT\tRESULT")
			for _, l := range recent {
				result := "ok"
				if !l.Succeeded() {
					result = l.Kind
					if result == "" {
						result = "failed"
					}
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					l.StartedAt.Local().Format("2006-01-02 15:04"), l.AppID, l.ExitCode, result)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to write history: %w", err)
			}
			return nil
		},
	}
}

// Execute runs the command line args and returns the exit status.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Err != nil {
			log.Debug().Err(err).Msg("command failed")
		}
	}
	return ExitCode(err)
}
