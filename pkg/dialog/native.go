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

package dialog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/nixinwang/dialog"
)

// maxNativeText bounds how much of a license file a message box shows.
const maxNativeText = 8000

// Native uses the desktop's own message boxes. It can only show messages
// and yes/no questions.
type Native struct{}

func (*Native) ShowFileWithConfirm(_ context.Context, title, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the descriptor
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := string(data)
	if len(text) > maxNativeText {
		cut := maxNativeText
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "\n..."
	}
	if !dialog.Message("%s\n\nDo you accept these terms?", text).Title(title).YesNo() {
		return ErrRejected
	}
	return nil
}

func (*Native) TextInput(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("native text input: %w", errors.ErrUnsupported)
}

func (*Native) ShowError(_ context.Context, title, message string) error {
	dialog.Message("%s", message).Title(title).Error()
	return nil
}

func (*Native) SelectChoice(context.Context, string, []string) (string, error) {
	return "", fmt.Errorf("native choice list: %w", errors.ErrUnsupported)
}
