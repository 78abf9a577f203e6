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
	"os/exec"
	"testing"

	"github.com/luxtorpeda-dev/lux/pkg/helpers/command"
	"github.com/luxtorpeda-dev/lux/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func exitStatus(t *testing.T, code int) error {
	t.Helper()
	err := exec.Command("sh", "-c", fmt.Sprintf("exit %d", code)).Run()
	require.Error(t, err)
	return err
}

func TestZenity_ShowFileWithConfirm(t *testing.T) {
	t.Parallel()

	env := []string{"DISPLAY=:0", "LUX_ERRORS_SUPPORTED=1"}

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		cmd := &mocks.MockCommandExecutor{}
		cmd.On("Output", mock.Anything, command.Options{Env: env}, "zenity", mock.MatchedBy(func(args []string) bool {
			return len(args) > 2 && args[0] == "--text-info" && args[2] == "--filename=EULA.txt"
		})).Return([]byte{}, nil)

		z := &Zenity{Exec: cmd, Env: env}
		require.NoError(t, z.ShowFileWithConfirm(context.Background(), "EULA", "EULA.txt"))
		cmd.AssertExpectations(t)
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		cmd := &mocks.MockCommandExecutor{}
		cmd.On("Output", mock.Anything, mock.Anything, "zenity", mock.Anything).
			Return(nil, exitStatus(t, 1))

		z := &Zenity{Exec: cmd, Env: env}
		err := z.ShowFileWithConfirm(context.Background(), "EULA", "EULA.txt")
		require.ErrorIs(t, err, ErrRejected)
	})

	t.Run("zenity_crash", func(t *testing.T) {
		t.Parallel()

		cmd := &mocks.MockCommandExecutor{}
		cmd.On("Output", mock.Anything, mock.Anything, "zenity", mock.Anything).
			Return(nil, exitStatus(t, 5))

		z := &Zenity{Exec: cmd}
		err := z.ShowFileWithConfirm(context.Background(), "EULA", "EULA.txt")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRejected)
	})
}

func TestZenity_TextInput(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, mock.Anything, "zenity",
		[]string{"--entry", "--title=CD Key", "--text=Enter key"}).
		Return([]byte("ABCD-1234\n"), nil)

	z := &Zenity{Exec: cmd}
	value, err := z.TextInput(context.Background(), "CD Key", "Enter key")
	require.NoError(t, err)
	assert.Equal(t, "ABCD-1234", value)
}

func TestZenity_ShowError(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, mock.Anything, "zenity", mock.MatchedBy(func(args []string) bool {
		return args[0] == "--error" && args[1] == "--title=Run Error" && args[2] == "--text=engine crashed"
	})).Return(nil, exitStatus(t, 1))

	z := &Zenity{Exec: cmd}
	require.NoError(t, z.ShowError(context.Background(), "Run Error", "engine crashed"))
}

func TestZenity_SelectChoice(t *testing.T) {
	t.Parallel()

	t.Run("picked", func(t *testing.T) {
		t.Parallel()

		cmd := &mocks.MockCommandExecutor{}
		cmd.On("Output", mock.Anything, mock.Anything, "zenity", mock.MatchedBy(func(args []string) bool {
			n := len(args)
			return args[0] == "--list" && args[n-2] == "gzdoom" && args[n-1] == "lzdoom"
		})).Return([]byte("lzdoom\n"), nil)

		z := &Zenity{Exec: cmd}
		choice, err := z.SelectChoice(context.Background(), "Pick", []string{"gzdoom", "lzdoom"})
		require.NoError(t, err)
		assert.Equal(t, "lzdoom", choice)
	})

	t.Run("nothing_selected", func(t *testing.T) {
		t.Parallel()

		cmd := &mocks.MockCommandExecutor{}
		cmd.On("Output", mock.Anything, mock.Anything, "zenity", mock.Anything).Return([]byte("\n"), nil)

		z := &Zenity{Exec: cmd}
		_, err := z.SelectChoice(context.Background(), "Pick", []string{"gzdoom"})
		require.ErrorIs(t, err, ErrCancelled)
	})
}

//nolint:paralleltest // swaps package level lookups
func TestNew(t *testing.T) {
	origLookPath, origIsTerminal := lookPath, isTerminal
	t.Cleanup(func() {
		lookPath, isTerminal = origLookPath, origIsTerminal
	})

	cmd := &mocks.MockCommandExecutor{}

	d, err := New(BackendZenity, cmd, nil)
	require.NoError(t, err)
	assert.IsType(t, &Zenity{}, d)

	d, err = New(BackendNative, cmd, nil)
	require.NoError(t, err)
	assert.IsType(t, &Native{}, d)

	d, err = New(BackendTerminal, cmd, nil)
	require.NoError(t, err)
	assert.IsType(t, &Terminal{}, d)

	_, err = New("kdialog", cmd, nil)
	require.ErrorIs(t, err, ErrUnknownBackend)

	lookPath = func(string) (string, error) { return "/usr/bin/zenity", nil }
	d, err = New(BackendAuto, cmd, []string{"A=1"})
	require.NoError(t, err)
	require.IsType(t, &Zenity{}, d)
	assert.Equal(t, []string{"A=1"}, d.(*Zenity).Env)

	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	isTerminal = func() bool { return true }
	d, err = New(BackendAuto, cmd, nil)
	require.NoError(t, err)
	assert.IsType(t, &Terminal{}, d)

	isTerminal = func() bool { return false }
	d, err = New("", cmd, nil)
	require.NoError(t, err)
	assert.IsType(t, &Native{}, d)
}
