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

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Variables read from the host environment.
const (
	EnvSteamDeck = "SteamDeck"
	EnvSteamOS   = "SteamOS"
	EnvUser      = "USER"

	// DeckUser is the login name of the default Steam Deck account.
	DeckUser = "deck"
)

// Variables lux exports to its children.
const (
	EnvLuxSteamDeck           = "LUX_STEAM_DECK"
	EnvLuxSteamDeckGamingMode = "LUX_STEAM_DECK_GAMING_MODE"
	EnvLuxErrorsSupported     = "LUX_ERRORS_SUPPORTED"
	EnvLuxOriginalExe         = "LUX_ORIGINAL_EXE"
	EnvLuxOriginalExeFile     = "LUX_ORIGINAL_EXE_FILE"
)

// hostFlags is the decoded view of the variables that drive detection.
type hostFlags struct {
	User      string `env:"USER"`
	SteamDeck bool   `env:"SteamDeck"`
	SteamOS   bool   `env:"SteamOS"`
}

// Platform describes the kind of session lux is running in.
type Platform struct {
	// Handheld is set on Steam Deck hardware.
	Handheld bool
	// GamingMode is set when the handheld is in the Steam gaming mode session.
	GamingMode bool
}

// flagHook decodes environment flags: only the literal "1" is true.
func flagHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to.Kind() == reflect.Bool {
		s, _ := data.(string)
		return s == "1", nil
	}
	return data, nil
}

// Detect classifies the session from the environment snapshot.
func Detect(env Env) (Platform, error) {
	var flags hostFlags
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "env",
		WeaklyTypedInput: true,
		DecodeHook:       flagHook,
		// variable names are case-sensitive
		MatchName: func(mapKey, fieldName string) bool { return mapKey == fieldName },
		Result:    &flags,
	})
	if err != nil {
		return Platform{}, fmt.Errorf("failed to create env decoder: %w", err)
	}
	if err := decoder.Decode(env.vars); err != nil {
		return Platform{}, fmt.Errorf("failed to decode environment: %w", err)
	}

	handheld := flags.SteamDeck || flags.User == DeckUser
	return Platform{
		Handheld:   handheld,
		GamingMode: handheld && flags.SteamOS,
	}, nil
}

// Apply exports the lux capability flags for this platform into env.
func (p Platform) Apply(env Env) Env {
	env = env.With(EnvLuxErrorsSupported, "1")
	if p.Handheld {
		env = env.With(EnvLuxSteamDeck, "1")
	}
	if p.GamingMode {
		env = env.With(EnvLuxSteamDeckGamingMode, "1")
	}
	return env
}
