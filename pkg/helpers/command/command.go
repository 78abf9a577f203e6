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

// Package command provides an abstraction over exec.Command for testability.
package command

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// Options configures how a child process is started.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Dir is the working directory. Empty means the caller's directory.
	Dir string
	// Env is the complete child environment in "KEY=VALUE" form. A nil Env
	// inherits the caller's environment.
	Env []string
	// InheritStdio wires unset streams to the caller's stdin, stdout and stderr.
	InheritStdio bool
}

// Executor provides an abstraction over exec.Command for testability.
// This allows commands to be mocked in tests without executing real system commands.
type Executor interface {
	// Run executes a command, waits for it to exit and returns its exit status.
	// The error is only set when the command could not be started or waited on;
	// a non-zero exit is reported through the status.
	Run(ctx context.Context, opts Options, name string, args ...string) (int, error)

	// Output runs a command and returns its standard output. A non-zero exit
	// is returned as an *exec.ExitError, use ExitCode to inspect it.
	Output(ctx context.Context, opts Options, name string, args ...string) ([]byte, error)
}

// RealExecutor uses actual exec.Command to execute system commands.
// This is the production implementation used in normal operation.
type RealExecutor struct{}

func build(ctx context.Context, opts Options, name string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if opts.InheritStdio {
		if cmd.Stdin == nil {
			cmd.Stdin = os.Stdin
		}
		if cmd.Stdout == nil {
			cmd.Stdout = os.Stdout
		}
		if cmd.Stderr == nil {
			cmd.Stderr = os.Stderr
		}
	}
	return cmd
}

// Run executes a system command using exec.CommandContext.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Run(ctx context.Context, opts Options, name string, args ...string) (int, error) {
	err := build(ctx, opts, name, args).Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitCode(err), nil
	}
	return -1, err
}

// Output runs a command and returns its standard output.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Output(ctx context.Context, opts Options, name string, args ...string) ([]byte, error) {
	cmd := build(ctx, opts, name, args)
	cmd.Stdout = nil
	return cmd.Output()
}

// ExitCode extracts the exit status from an error returned by Run or Output.
// A nil error is status 0. Termination by signal follows the shell convention
// of 128 plus the signal number. Errors that carry no status return -1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}
