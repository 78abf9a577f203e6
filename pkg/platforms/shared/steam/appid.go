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

package steam

import (
	"errors"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Environment variables Steam sets for a launched title, in the order they
// are trusted.
var appIDVars = []string{"SteamAppId", "SteamGameId", "STEAM_COMPAT_APP_ID"}

// ErrAppIDNotFound means no source yielded an app id.
var ErrAppIDNotFound = errors.New("steam app id not found")

// Resolver finds the app id of the title being launched.
type Resolver struct {
	// Getenv reads the launch environment.
	Getenv func(string) string
	// SteamAppsDirs are searched for a manifest whose install directory
	// contains the executable. Defaults to DefaultSteamAppsDirs.
	SteamAppsDirs []string
}

func validID(s string) bool {
	n, err := strconv.ParseUint(s, 10, 32)
	return err == nil && n > 0
}

// AppID resolves the app id for an invocation. program is the first token,
// which manual invocations may give as a bare numeric id.
func (r Resolver) AppID(program string) (string, error) {
	if r.Getenv != nil {
		for _, key := range appIDVars {
			if v := r.Getenv(key); validID(v) {
				log.Debug().Str("source", key).Str("app_id", v).Msg("resolved app id")
				return v, nil
			}
		}
	}

	if validID(program) {
		return program, nil
	}

	installDir, ok := installDirOf(program)
	if !ok {
		if abs, err := filepath.Abs(program); err == nil {
			installDir, ok = installDirOf(abs)
		}
	}
	if !ok {
		return "", ErrAppIDNotFound
	}

	dirs := r.SteamAppsDirs
	if dirs == nil {
		dirs = DefaultSteamAppsDirs()
	}
	for _, main := range dirs {
		for _, lib := range Libraries(main) {
			for _, info := range Manifests(lib) {
				if info.InstallDir == installDir {
					id := strconv.Itoa(info.AppID)
					log.Debug().Str("source", "appmanifest").Str("app_id", id).Msg("resolved app id")
					return id, nil
				}
			}
		}
	}
	return "", ErrAppIDNotFound
}
