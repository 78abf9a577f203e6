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

package command

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Run(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("executes_successful_command", func(t *testing.T) {
		t.Parallel()

		code, err := executor.Run(context.Background(), Options{}, "true")

		require.NoError(t, err)
		assert.Equal(t, 0, code)
	})

	t.Run("reports_exit_status_without_error", func(t *testing.T) {
		t.Parallel()

		code, err := executor.Run(context.Background(), Options{}, "sh", "-c", "exit 10")

		require.NoError(t, err)
		assert.Equal(t, 10, code)
	})

	t.Run("returns_error_for_nonexistent_command", func(t *testing.T) {
		t.Parallel()

		_, err := executor.Run(context.Background(), Options{}, "nonexistent_command_that_should_not_exist_12345")

		require.Error(t, err)
	})

	t.Run("uses_given_environment_and_directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		var out bytes.Buffer
		code, err := executor.Run(context.Background(), Options{
			Dir:    dir,
			Env:    []string{"LUX_TEST_VALUE=hello"},
			Stdout: &out,
		}, "sh", "-c", `printf "%s %s" "$LUX_TEST_VALUE" "$(pwd)"`)

		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Equal(t, "hello "+dir, out.String())
	})
}

func TestRealExecutor_Output(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("captures_stdout", func(t *testing.T) {
		t.Parallel()

		out, err := executor.Output(context.Background(), Options{}, "echo", "engine")

		require.NoError(t, err)
		assert.Equal(t, "engine\n", string(out))
	})

	t.Run("returns_exit_error_for_failed_command", func(t *testing.T) {
		t.Parallel()

		_, err := executor.Output(context.Background(), Options{}, "false")

		require.Error(t, err)
		assert.Equal(t, 1, ExitCode(err))
	})
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, -1, ExitCode(errors.New("boom")))

	_, err := (&RealExecutor{}).Output(context.Background(), Options{}, "sh", "-c", "kill -TERM $$")
	require.Error(t, err)
	assert.Equal(t, 143, ExitCode(err))
}

func TestExecutor_Interface(t *testing.T) {
	t.Parallel()

	// Verify that RealExecutor implements Executor
	var _ Executor = (*RealExecutor)(nil)
}
