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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	t.Parallel()

	env := Snapshot([]string{"A=1", "B=", "C=x=y", "broken", "=nokey", "A=2"})

	v, ok := env.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	v, ok = env.Lookup("B")
	assert.True(t, ok, "empty values are still present")
	assert.Empty(t, v)

	assert.Equal(t, "x=y", env.Get("C"))

	_, ok = env.Lookup("broken")
	assert.False(t, ok)
	assert.Equal(t, 3, env.Len())
}

func TestEnv_Immutable(t *testing.T) {
	t.Parallel()

	base := Snapshot([]string{"KEEP=1", "DROP=1"})
	changed := base.With("NEW", "v").Without("DROP")

	assert.Equal(t, []string{"DROP=1", "KEEP=1"}, base.Environ())
	assert.Equal(t, []string{"KEEP=1", "NEW=v"}, changed.Environ())

	m := base.Map()
	m["KEEP"] = "mutated"
	assert.Equal(t, "1", base.Get("KEEP"))
}

func TestEnv_ZeroValue(t *testing.T) {
	t.Parallel()

	var env Env
	assert.Empty(t, env.Environ())
	assert.Equal(t, []string{"A=b"}, env.With("A", "b").Environ())
	assert.Empty(t, env.Without("A").Environ())
}
