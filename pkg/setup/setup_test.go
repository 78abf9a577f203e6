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

package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/luxtorpeda-dev/lux/pkg/descriptor"
	"github.com/luxtorpeda-dev/lux/pkg/dialog"
	"github.com/luxtorpeda-dev/lux/pkg/helpers/command"
	"github.com/luxtorpeda-dev/lux/pkg/platforms/steamos"
	"github.com/luxtorpeda-dev/lux/pkg/testing/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSetup() *descriptor.Setup {
	return &descriptor.Setup{
		Command:          "./setup.sh",
		CompletePath:     "setup_complete",
		LicensePath:      "EULA.txt",
		UninstallCommand: "./uninstall.sh",
		Dialogs: []descriptor.SetupDialog{
			{Type: "input", Title: "CD Key", Label: "Enter your key", Key: "cdkey.txt"},
			{Type: "info", Title: "not an input"},
		},
	}
}

func newMachine(fs afero.Fs) (*Machine, *mocks.MockCommandExecutor, *mocks.MockDialogs) {
	cmd := &mocks.MockCommandExecutor{}
	dlg := &mocks.MockDialogs{}
	return &Machine{
		FS:      fs,
		Exec:    cmd,
		Dialogs: dlg,
		Env: steamos.FromMap(map[string]string{
			"LD_PRELOAD":           "/overlay.so",
			"LUX_ERRORS_SUPPORTED": "1",
		}),
	}, cmd, dlg
}

func preloadCleared(opts command.Options) bool {
	env := mocks.EnvOf(opts)
	v, ok := env["LD_PRELOAD"]
	return ok && v == "" && env["LUX_ERRORS_SUPPORTED"] == "1"
}

func TestRun_AlreadyComplete(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "setup_complete", nil, 0o644))

	m, cmd, dlg := newMachine(fs)
	require.NoError(t, m.Run(context.Background(), testSetup()))

	assert.Equal(t, Complete, m.State())
	cmd.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	dlg.AssertNotCalled(t, "ShowFileWithConfirm", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_FullSequence(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "EULA.txt", []byte("terms"), 0o644))

	m, cmd, dlg := newMachine(fs)
	dlg.On("ShowFileWithConfirm", mock.Anything, LicenseTitle, "EULA.txt").Return(nil).Once()
	dlg.On("TextInput", mock.Anything, "CD Key", "Enter your key").Return("ABCD-1234", nil).Once()
	cmd.On("Run", mock.Anything, mock.MatchedBy(preloadCleared), "./setup.sh", []string(nil)).
		Return(0, nil).Once()

	require.NoError(t, m.Run(context.Background(), testSetup()))

	assert.Equal(t, Complete, m.State())
	key, err := afero.ReadFile(fs, "cdkey.txt")
	require.NoError(t, err)
	assert.Equal(t, "ABCD-1234", string(key))
	assert.True(t, IsComplete(fs, testSetup()))
	cmd.AssertExpectations(t)
	dlg.AssertExpectations(t)
}

func TestRun_LicenseRejected(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "EULA.txt", []byte("terms"), 0o644))

	m, cmd, dlg := newMachine(fs)
	dlg.On("ShowFileWithConfirm", mock.Anything, LicenseTitle, "EULA.txt").Return(dialog.ErrRejected)
	cmd.On("Run", mock.Anything, mock.MatchedBy(preloadCleared), "./uninstall.sh", []string(nil)).
		Return(0, nil).Once()

	err := m.Run(context.Background(), testSetup())

	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, Rejected, m.State())
	assert.False(t, IsComplete(fs, testSetup()))
	cmd.AssertExpectations(t)
	cmd.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, "./setup.sh", mock.Anything)
	dlg.AssertNotCalled(t, "TextInput", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_LicenseRejectedUninstallFails(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "EULA.txt", []byte("terms"), 0o644))

	m, cmd, dlg := newMachine(fs)
	dlg.On("ShowFileWithConfirm", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("zenity missing"))
	cmd.On("Run", mock.Anything, mock.Anything, "./uninstall.sh", mock.Anything).
		Return(-1, errors.New("not found"))

	err := m.Run(context.Background(), testSetup())
	require.ErrorIs(t, err, ErrRejected)
}

func TestRun_MissingLicenseSkipsReview(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := testSetup()
	s.Dialogs = nil

	m, cmd, dlg := newMachine(fs)
	cmd.On("Run", mock.Anything, mock.Anything, "./setup.sh", mock.Anything).Return(0, nil)

	require.NoError(t, m.Run(context.Background(), s))
	dlg.AssertNotCalled(t, "ShowFileWithConfirm", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, IsComplete(fs, s))
}

func TestRun_PromptFailure(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := testSetup()
	s.LicensePath = ""

	m, cmd, dlg := newMachine(fs)
	dlg.On("TextInput", mock.Anything, mock.Anything, mock.Anything).Return("", dialog.ErrCancelled)

	err := m.Run(context.Background(), s)

	require.ErrorIs(t, err, ErrPromptFailed)
	require.ErrorIs(t, err, dialog.ErrCancelled)
	assert.Equal(t, InteractivePrompts, m.State())
	cmd.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, IsComplete(fs, s))
}

func TestRun_UnsafeInputKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"../../.profile", "/home/deck/.bashrc", "", "saves/../../x"} {
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			s := testSetup()
			s.LicensePath = ""
			s.Dialogs[0].Key = key

			m, cmd, dlg := newMachine(fs)
			err := m.Run(context.Background(), s)

			require.ErrorIs(t, err, ErrPromptFailed)
			require.ErrorIs(t, err, ErrUnsafeKey)
			dlg.AssertNotCalled(t, "TextInput", mock.Anything, mock.Anything, mock.Anything)
			cmd.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.False(t, IsComplete(fs, s))
		})
	}
}

func TestRun_InstallFailure(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := testSetup()
	s.LicensePath = ""
	s.Dialogs = nil

	m, cmd, dlg := newMachine(fs)
	cmd.On("Run", mock.Anything, mock.Anything, "./setup.sh", mock.Anything).Return(1, nil)
	dlg.On("ShowError", mock.Anything, "Setup Error", "Setup failed to complete").Return(nil).Once()

	err := m.Run(context.Background(), s)

	require.ErrorIs(t, err, ErrInstallFailed)
	assert.Equal(t, Installing, m.State())
	assert.False(t, IsComplete(fs, s))
	dlg.AssertExpectations(t)
}

func TestRun_SentinelCreatedConcurrently(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := testSetup()
	s.LicensePath = ""
	s.Dialogs = nil

	m, cmd, _ := newMachine(fs)
	cmd.On("Run", mock.Anything, mock.Anything, "./setup.sh", mock.Anything).
		Run(func(mock.Arguments) {
			// another process finishes first
			_ = afero.WriteFile(fs, s.CompletePath, []byte("other"), 0o644)
		}).
		Return(0, nil)

	require.NoError(t, m.Run(context.Background(), s))
	assert.Equal(t, Complete, m.State())

	data, err := afero.ReadFile(fs, s.CompletePath)
	require.NoError(t, err)
	assert.Equal(t, "other", string(data), "existing sentinel is left alone")
}

type fakeLocker struct {
	onLock   func()
	locked   []string
	unlocked int
}

func (f *fakeLocker) Lock(_ context.Context, path string) (func(), error) {
	f.locked = append(f.locked, path)
	if f.onLock != nil {
		f.onLock()
	}
	return func() { f.unlocked++ }, nil
}

func TestRun_LockerDoubleCheck(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := testSetup()

	m, cmd, dlg := newMachine(fs)
	locker := &fakeLocker{onLock: func() {
		_ = afero.WriteFile(fs, s.CompletePath, nil, 0o644)
	}}
	m.Locker = locker

	require.NoError(t, m.Run(context.Background(), s))

	assert.Equal(t, []string{"setup_complete.lock"}, locker.locked)
	assert.Equal(t, 1, locker.unlocked)
	cmd.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	dlg.AssertNotCalled(t, "ShowFileWithConfirm", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_LockerHeldAcrossSetup(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := testSetup()
	s.LicensePath = ""
	s.Dialogs = nil

	m, cmd, _ := newMachine(fs)
	locker := &fakeLocker{}
	m.Locker = locker
	cmd.On("Run", mock.Anything, mock.Anything, "./setup.sh", mock.Anything).
		Run(func(mock.Arguments) {
			assert.Equal(t, 0, locker.unlocked, "setup runs under the lease")
		}).
		Return(0, nil)

	require.NoError(t, m.Run(context.Background(), s))
	assert.Equal(t, 1, locker.unlocked)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "license_review", LicenseReview.String())
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "state(42)", State(42).String())
}
