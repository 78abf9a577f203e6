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

package descriptor

import (
	"errors"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoCommand means neither a fixed command nor a matching pattern exists.
var ErrNoCommand = errors.New("no command line defined")

// Resolved is the program and leading arguments to launch. The invocation's
// own arguments are appended by the caller.
type Resolved struct {
	Program string
	Args    []string
}

// ResolveCommand picks the command for an invocation. A fixed command always
// wins. Otherwise each pattern is tried in declaration order against the
// invocation tokens joined by single spaces, and the first match wins.
func ResolveCommand(d *Descriptor, invocation []string) (Resolved, error) {
	if d.Command != nil {
		return Resolved{Program: *d.Command, Args: slices.Clone(d.Args)}, nil
	}
	if d.Commands == nil {
		return Resolved{}, ErrNoCommand
	}

	joined := strings.Join(invocation, " ")
	for _, p := range d.Commands {
		if p.Match(joined) {
			log.Debug().Str("pattern", p.Expr).Msg("command pattern matched")
			return Resolved{Program: p.Override.Cmd, Args: slices.Clone(p.Override.Args)}, nil
		}
	}
	return Resolved{}, ErrNoCommand
}
