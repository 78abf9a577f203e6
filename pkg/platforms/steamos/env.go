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

// Package steamos holds the environment quirks lux applies when it runs under
// Steam on a Steam Deck or a desktop Linux session.
package steamos

import (
	"maps"
	"slices"
	"strings"
)

// Env is an immutable snapshot of a process environment. Every mutating
// helper returns a new Env and leaves the receiver untouched.
type Env struct {
	vars map[string]string
}

// Snapshot captures an environment given in os.Environ form. Entries without
// an '=' are ignored and later duplicates win, matching how getenv resolves
// them.
func Snapshot(environ []string) Env {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	return Env{vars: vars}
}

// FromMap builds an Env from a map. The map is copied.
func FromMap(m map[string]string) Env {
	return Env{vars: maps.Clone(m)}
}

// Lookup returns a variable and whether it is present at all.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Get returns a variable or the empty string.
func (e Env) Get(key string) string {
	return e.vars[key]
}

// With returns a copy of the environment with key set to value.
func (e Env) With(key, value string) Env {
	vars := maps.Clone(e.vars)
	if vars == nil {
		vars = make(map[string]string, 1)
	}
	vars[key] = value
	return Env{vars: vars}
}

// Without returns a copy of the environment with key removed.
func (e Env) Without(keys ...string) Env {
	vars := maps.Clone(e.vars)
	for _, k := range keys {
		delete(vars, k)
	}
	return Env{vars: vars}
}

// Map returns a copy of the variables.
func (e Env) Map() map[string]string {
	return maps.Clone(e.vars)
}

// Len returns the number of variables.
func (e Env) Len() int {
	return len(e.vars)
}

// Environ renders the environment in "KEY=VALUE" form, sorted by key so child
// environments are deterministic.
func (e Env) Environ() []string {
	keys := slices.Sorted(maps.Keys(e.vars))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e.vars[k])
	}
	return out
}
