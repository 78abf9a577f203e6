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

package lock

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Locker hands out leases on arbitrary marker paths, for callers that need
// a short critical section next to some other file.
type Locker struct {
	PollInterval time.Duration
	WaitTimeout  time.Duration
}

// Lock waits for the lease on path. On timeout it logs and returns a no-op
// unlock so the caller can continue unguarded.
func (l Locker) Lock(ctx context.Context, path string) (func(), error) {
	c := New(Options{Path: path, PollInterval: l.PollInterval, WaitTimeout: l.WaitTimeout})
	lease, err := c.Acquire(ctx)
	if errors.Is(err, ErrWaitTimeout) {
		log.Warn().Str("path", path).Msg("timed out waiting for lock, continuing without it")
		return func() {}, nil
	} else if err != nil {
		return nil, err
	}
	return func() {
		if err := lease.Release(); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to release lock")
		}
	}, nil
}
