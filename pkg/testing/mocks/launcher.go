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

	"github.com/luxtorpeda-dev/lux/pkg/database/historydb"
	"github.com/luxtorpeda-dev/lux/pkg/descriptor"
	"github.com/stretchr/testify/mock"
)

// MockCatalog is a testify mock for launcher.Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockCatalog) Load(appID string) (*descriptor.Descriptor, error) {
	args := m.Called(appID)
	d, _ := args.Get(0).(*descriptor.Descriptor)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return d, args.Error(1)
}

// MockPackages is a testify mock for launcher.Packages.
type MockPackages struct {
	mock.Mock
}

func (m *MockPackages) Download(ctx context.Context, appID string, files []descriptor.Download) error {
	args := m.Called(ctx, appID, files)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockPackages) Install(ctx context.Context, appID string, files []descriptor.Download, dest string) error {
	args := m.Called(ctx, appID, files, dest)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

// MockRecorder is a testify mock for launcher.Recorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, l historydb.Launch) error {
	args := m.Called(ctx, l)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}
