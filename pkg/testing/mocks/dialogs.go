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

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDialogs is a testify mock for dialog.Dialogs.
type MockDialogs struct {
	mock.Mock
}

func (m *MockDialogs) ShowFileWithConfirm(ctx context.Context, title, path string) error {
	args := m.Called(ctx, title, path)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockDialogs) TextInput(ctx context.Context, title, label string) (string, error) {
	args := m.Called(ctx, title, label)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.String(0), args.Error(1)
}

func (m *MockDialogs) ShowError(ctx context.Context, title, message string) error {
	args := m.Called(ctx, title, message)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockDialogs) SelectChoice(ctx context.Context, title string, choices []string) (string, error) {
	args := m.Called(ctx, title, choices)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.String(0), args.Error(1)
}
