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

// Package descriptor models the catalog entry that tells lux how to prepare
// and launch one title.
package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound means the catalog has no usable entry for an app id.
	ErrNotFound = errors.New("no descriptor for application")
	// ErrInvalid means an entry exists but does not have the expected shape.
	ErrInvalid = errors.New("invalid descriptor")
	// ErrUnknownChoice means WithChoice was asked for a choice that is not listed.
	ErrUnknownChoice = errors.New("unknown choice")
)

// Download names one archive a title needs.
type Download struct {
	Name        string `json:"name" validate:"required"`
	URL         string `json:"url" validate:"required"`
	File        string `json:"file" validate:"required"`
	CacheByName bool   `json:"cache_by_name,omitempty"`
}

// SetupDialog is one interactive step shown before the setup command runs.
type SetupDialog struct {
	Type  string `json:"type" validate:"required"`
	Title string `json:"title,omitempty"`
	Label string `json:"label,omitempty"`
	Key   string `json:"key,omitempty" validate:"required_if=Type input"`
}

// Setup describes the first-run install step of a title.
type Setup struct {
	Command          string        `json:"command" validate:"required"`
	CompletePath     string        `json:"complete_path" validate:"required"`
	LicensePath      string        `json:"license_path,omitempty"`
	UninstallCommand string        `json:"uninstall_command,omitempty"`
	Dialogs          []SetupDialog `json:"dialogs,omitempty" validate:"dive"`
}

// Choice is an alternative engine configuration. Fields left unset fall back
// to the parent descriptor.
type Choice struct {
	Command                     *string    `json:"command,omitempty"`
	Setup                       *Setup     `json:"setup,omitempty"`
	UseOriginalCommandDirectory *bool      `json:"use_original_command_directory,omitempty"`
	Name                        string     `json:"name" validate:"required"`
	EngineLink                  string     `json:"engine_link,omitempty"`
	CommandArgs                 []string   `json:"command_args,omitempty"`
	Commands                    Commands   `json:"commands,omitempty"`
	Download                    []Download `json:"download,omitempty" validate:"dive"`
}

// Descriptor is the parsed catalog entry for one title.
type Descriptor struct {
	// Command is set when the entry names a single fixed command.
	Command *string `json:"command,omitempty"`
	// Setup is nil when the title has no first-run setup.
	Setup    *Setup   `json:"setup,omitempty"`
	GameName string   `json:"game_name,omitempty"`
	Args     []string `json:"command_args,omitempty"`
	// Commands is consulted in declaration order when Command is unset.
	Commands Commands `json:"commands,omitempty"`
	Choices  []Choice `json:"choices,omitempty" validate:"dive"`
	// Download is nil when the entry has no download list at all.
	Download                    []Download `json:"download,omitempty" validate:"dive"`
	UseOriginalCommandDirectory bool       `json:"use_original_command_directory,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parse decodes and validates a catalog entry. Unknown fields are ignored so
// catalogs can carry metadata lux does not use.
func Parse(data []byte) (*Descriptor, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrNotFound
	}

	var d Descriptor
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := validate.Struct(&d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &d, nil
}

// HasChoices reports whether the title offers alternative engines.
func (d *Descriptor) HasChoices() bool {
	return len(d.Choices) > 0
}

// ChoiceNames lists the choices in declaration order.
func (d *Descriptor) ChoiceNames() []string {
	names := make([]string, 0, len(d.Choices))
	for i := range d.Choices {
		names = append(names, d.Choices[i].Name)
	}
	return names
}

// WithChoice returns a new descriptor with the named choice applied. The
// receiver is not modified and the result has no choices of its own.
func (d *Descriptor) WithChoice(name string) (*Descriptor, error) {
	var choice *Choice
	for i := range d.Choices {
		if d.Choices[i].Name == name {
			choice = &d.Choices[i]
			break
		}
	}
	if choice == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChoice, name)
	}

	out := *d
	out.Choices = nil
	if choice.Command != nil || choice.Commands != nil {
		out.Command = choice.Command
		out.Args = choice.CommandArgs
		out.Commands = choice.Commands
	}
	if choice.Download != nil {
		out.Download = choice.Download
	}
	if choice.Setup != nil {
		out.Setup = choice.Setup
	}
	if choice.UseOriginalCommandDirectory != nil {
		out.UseOriginalCommandDirectory = *choice.UseOriginalCommandDirectory
	}
	return &out, nil
}
