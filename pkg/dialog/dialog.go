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

// Package dialog shows the few interactive prompts lux needs: license
// confirmation, text input, engine choice and error reports.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/luxtorpeda-dev/lux/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

const (
	BackendAuto     = "auto"
	BackendZenity   = "zenity"
	BackendNative   = "native"
	BackendTerminal = "terminal"
)

var (
	// ErrRejected means the user declined a confirmation.
	ErrRejected = errors.New("rejected by user")
	// ErrCancelled means the user closed a prompt without answering.
	ErrCancelled = errors.New("cancelled by user")
	// ErrUnknownBackend is returned by New for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown dialog backend")
)

// Dialogs is the set of prompts available to the launcher.
type Dialogs interface {
	// ShowFileWithConfirm displays a text file and asks the user to accept
	// it. It returns nil on acceptance and ErrRejected otherwise.
	ShowFileWithConfirm(ctx context.Context, title, path string) error
	// TextInput asks for a single line of text.
	TextInput(ctx context.Context, title, label string) (string, error)
	// ShowError reports a failure and waits for acknowledgement.
	ShowError(ctx context.Context, title, message string) error
	// SelectChoice asks the user to pick one of choices.
	SelectChoice(ctx context.Context, title string, choices []string) (string, error)
}

var (
	lookPath   = exec.LookPath
	isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

// New returns the dialogs for backend. Zenity children run with env.
func New(backend string, executor command.Executor, env []string) (Dialogs, error) {
	switch backend {
	case BackendZenity:
		return &Zenity{Exec: executor, Env: env}, nil
	case BackendNative:
		return &Native{}, nil
	case BackendTerminal:
		return &Terminal{}, nil
	case BackendAuto, "":
		return auto(executor, env), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func auto(executor command.Executor, env []string) Dialogs {
	if _, err := lookPath("zenity"); err == nil {
		return &Zenity{Exec: executor, Env: env}
	}
	if isTerminal() {
		log.Debug().Msg("zenity not found, using terminal dialogs")
		return &Terminal{}
	}
	log.Debug().Msg("zenity not found, using native dialogs")
	return &Native{}
}
