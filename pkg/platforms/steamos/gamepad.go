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

import "github.com/rs/zerolog/log"

const (
	EnvAllowVirtualGamepad = "SDL_GAMECONTROLLER_ALLOW_STEAM_VIRTUAL_GAMEPAD"
	EnvIgnoreDevices       = "SDL_GAMECONTROLLER_IGNORE_DEVICES"
)

type savedVar struct {
	value   string
	present bool
}

// Saved remembers the gamepad variables removed by SuppressVirtualGamepad so
// they can be put back exactly as they were.
type Saved struct {
	allow   savedVar
	ignore  savedVar
	altered bool
}

// Altered reports whether suppression changed the environment.
func (s Saved) Altered() bool {
	return s.altered
}

// SuppressVirtualGamepad hides Steam's virtual gamepad from lux's own
// dialogs on desktop sessions. Handheld sessions are left alone.
func SuppressVirtualGamepad(env Env, p Platform) (Env, Saved) {
	if p.Handheld {
		return env, Saved{}
	}
	allow, allowOK := env.Lookup(EnvAllowVirtualGamepad)
	if !allowOK || allow != "1" {
		return env, Saved{}
	}
	ignore, ignoreOK := env.Lookup(EnvIgnoreDevices)

	log.Info().Msg("disabling steam virtual gamepad for dialogs")
	return env.Without(EnvAllowVirtualGamepad, EnvIgnoreDevices), Saved{
		allow:   savedVar{value: allow, present: allowOK},
		ignore:  savedVar{value: ignore, present: ignoreOK},
		altered: true,
	}
}

// Restore puts back the variables recorded by SuppressVirtualGamepad. A
// variable that was absent before suppression stays absent.
func (s Saved) Restore(env Env) Env {
	if !s.altered {
		return env
	}
	log.Info().Msg("restoring steam virtual gamepad")
	for key, v := range map[string]savedVar{
		EnvAllowVirtualGamepad: s.allow,
		EnvIgnoreDevices:       s.ignore,
	} {
		if v.present {
			env = env.With(key, v.value)
		} else {
			env = env.Without(key)
		}
	}
	return env
}
