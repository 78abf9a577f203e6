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
	"errors"

	"github.com/luxtorpeda-dev/lux/pkg/descriptor"
	"github.com/luxtorpeda-dev/lux/pkg/setup"
)

// Failure kinds of a launch. Returned errors wrap one of these together
// with the underlying cause.
var (
	ErrIgnoredExecutable          = errors.New("executable is ignored")
	ErrCatalogUnavailable         = errors.New("catalog unavailable")
	ErrUnknownApplication         = errors.New("unknown application")
	ErrChoiceSelectionFailed      = errors.New("engine choice failed")
	ErrDescriptorConversionFailed = errors.New("engine choice could not be applied")
	ErrDownloadFailed             = errors.New("download failed")
	ErrInstallFailed              = errors.New("install failed")
	ErrChildSpawnFailed           = errors.New("failed to start game")
	ErrChangeDirFailed            = errors.New("failed to change to the executable's directory")

	ErrSetupRejected      = setup.ErrRejected
	ErrSetupPromptFailed  = setup.ErrPromptFailed
	ErrSetupInstallFailed = setup.ErrInstallFailed
	ErrNoCommandResolved  = descriptor.ErrNoCommand
)

var kinds = []error{
	ErrIgnoredExecutable,
	ErrCatalogUnavailable,
	ErrUnknownApplication,
	ErrChoiceSelectionFailed,
	ErrDescriptorConversionFailed,
	ErrDownloadFailed,
	ErrInstallFailed,
	ErrSetupRejected,
	ErrSetupPromptFailed,
	ErrSetupInstallFailed,
	ErrNoCommandResolved,
	ErrChildSpawnFailed,
	ErrChangeDirFailed,
}

// Kind returns the failure kind err wraps, or nil.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
