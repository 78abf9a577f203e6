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

package steamos

const (
	EnvPreload         = "LD_PRELOAD"
	EnvOriginalPreload = "ORIGINAL_LD_PRELOAD"
)

// WithPreloadCleared empties LD_PRELOAD so the Steam overlay is not injected
// into setup helpers.
func WithPreloadCleared(env Env) Env {
	return env.With(EnvPreload, "")
}

// WithPreloadRestored hands the game the preload list Steam saved in
// ORIGINAL_LD_PRELOAD. Without it the environment is returned unchanged.
func WithPreloadRestored(env Env) Env {
	if orig, ok := env.Lookup(EnvOriginalPreload); ok {
		return env.With(EnvPreload, orig)
	}
	return env
}
