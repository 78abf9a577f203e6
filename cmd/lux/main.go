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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/luxtorpeda-dev/lux/internal/telemetry"
	"github.com/luxtorpeda-dev/lux/pkg/cli"
	"github.com/luxtorpeda-dev/lux/pkg/config"
	"github.com/luxtorpeda-dev/lux/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		_, _ = fmt.Fprintln(os.Stdout, cli.Usage)
		return 0
	}

	session, err := cli.Setup(
		helpers.DefaultDirs(),
		config.BaseDefaults,
		[]io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}},
		os.Environ(),
		os.Getenv,
	)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	defer telemetry.Close()

	// children are never signalled by lux, so the launch context is not
	// cancelled on SIGINT/SIGTERM
	ctx := context.Background()
	app := cli.NewApp(ctx, session)
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigs)
	go func() {
		sig, ok := <-sigs
		if !ok {
			return
		}
		log.Info().Stringer("signal", sig).Msg("received signal, exiting")
		_ = app.Close()
		telemetry.Flush()
		if s, ok := sig.(syscall.Signal); ok {
			os.Exit(128 + int(s))
		}
		os.Exit(1)
	}()

	code := cli.Execute(ctx, app, os.Args[1:])
	telemetry.Flush()
	return code
}
