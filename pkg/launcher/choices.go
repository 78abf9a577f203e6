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

package launcher

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileChoiceStore keeps one file per app id holding the chosen engine name.
type FileChoiceStore struct {
	FS  afero.Fs
	Dir string
}

func (s FileChoiceStore) path(appID string) string {
	return filepath.Join(s.Dir, filepath.Base(appID))
}

// Get returns the remembered choice for appID.
func (s FileChoiceStore) Get(appID string) (string, bool) {
	data, err := afero.ReadFile(s.FS, s.path(appID))
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(string(data))
	return name, name != ""
}

// Put remembers name for appID.
func (s FileChoiceStore) Put(appID, name string) error {
	if err := s.FS.MkdirAll(s.Dir, 0o750); err != nil {
		return fmt.Errorf("failed to create choices dir: %w", err)
	}
	if err := afero.WriteFile(s.FS, s.path(appID), []byte(name+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to save choice: %w", err)
	}
	return nil
}
