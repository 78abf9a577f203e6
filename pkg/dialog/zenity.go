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

package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/luxtorpeda-dev/lux/pkg/helpers/command"
)

const (
	zenityBin       = "zenity"
	zenityCancelled = 1
)

// Zenity shows GTK dialogs through the zenity helper.
type Zenity struct {
	Exec command.Executor
	Env  []string
}

func (z *Zenity) run(ctx context.Context, args ...string) (string, error) {
	out, err := z.Exec.Output(ctx, command.Options{Env: z.Env}, zenityBin, args...)
	if err != nil {
		if command.ExitCode(err) == zenityCancelled {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("zenity failed: %w", err)
	}
	return strings.TrimRight(string(out), "\r\n"), nil
}

func (z *Zenity) ShowFileWithConfirm(ctx context.Context, title, path string) error {
	_, err := z.run(ctx,
		"--text-info",
		"--title="+title,
		"--filename="+path,
		"--checkbox=I have read and accept the terms.",
		"--width=650",
		"--height=500",
	)
	if errors.Is(err, ErrCancelled) {
		return ErrRejected
	}
	return err
}

func (z *Zenity) TextInput(ctx context.Context, title, label string) (string, error) {
	return z.run(ctx, "--entry", "--title="+title, "--text="+label)
}

func (z *Zenity) ShowError(ctx context.Context, title, message string) error {
	_, err := z.run(ctx, "--error", "--title="+title, "--text="+message, "--no-markup", "--width=400")
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	return err
}

func (z *Zenity) SelectChoice(ctx context.Context, title string, choices []string) (string, error) {
	args := []string{"--list", "--title=" + title, "--column=Engine", "--width=400", "--height=300"}
	args = append(args, choices...)
	choice, err := z.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if choice == "" {
		return "", ErrCancelled
	}
	return choice, nil
}
