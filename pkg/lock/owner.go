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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"
)

// Owner identifies the process recorded in a marker.
type Owner struct {
	PID int
	// CreateTime is the process start time in milliseconds since the epoch,
	// zero when unknown.
	CreateTime int64
}

// Alive reports whether the recorded process still runs and is the same
// process, not a later one that reused the PID.
func (o Owner) Alive() bool {
	if o.PID <= 0 {
		return false
	}
	//nolint:gosec // PIDs fit in int32
	exists, err := process.PidExists(int32(o.PID))
	if err != nil || !exists {
		return false
	}
	if o.CreateTime == 0 {
		return true
	}
	//nolint:gosec // PIDs fit in int32
	p, err := process.NewProcess(int32(o.PID))
	if err != nil {
		return false
	}
	created, err := p.CreateTime()
	if err != nil {
		log.Debug().Err(err).Int("pid", o.PID).Msg("failed to read process start time")
		return true
	}
	return created == o.CreateTime
}

func self() Owner {
	o := Owner{PID: os.Getpid()}
	//nolint:gosec // PIDs fit in int32
	if p, err := process.NewProcess(int32(o.PID)); err == nil {
		if created, err := p.CreateTime(); err == nil {
			o.CreateTime = created
		}
	}
	return o
}

func writeOwner(f *os.File, o Owner) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate lock marker: %w", err)
	}
	if _, err := f.WriteAt([]byte(fmt.Sprintf("%d\n%d\n", o.PID, o.CreateTime)), 0); err != nil {
		return fmt.Errorf("failed to write lock marker: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync lock marker: %w", err)
	}
	return nil
}

var errBadMarker = errors.New("malformed lock marker")

func readOwner(r io.ReaderAt) (Owner, error) {
	sc := bufio.NewScanner(io.NewSectionReader(r, 0, 128))
	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if len(lines) == 0 {
		return Owner{}, errBadMarker
	}
	pid, err := strconv.Atoi(lines[0])
	if err != nil {
		return Owner{}, fmt.Errorf("%w: %w", errBadMarker, err)
	}
	o := Owner{PID: pid}
	if len(lines) > 1 {
		if created, err := strconv.ParseInt(lines[1], 10, 64); err == nil {
			o.CreateTime = created
		}
	}
	return o, nil
}

func readOwnerAt(path string) (Owner, error) {
	f, err := os.Open(path)
	if err != nil {
		return Owner{}, fmt.Errorf("failed to open lock marker: %w", err)
	}
	defer func() { _ = f.Close() }()
	return readOwner(f)
}

// contended interprets a non-blocking flock attempt on the marker. It is the
// only place that decides whether another process owns the lease.
func contended(f *os.File, flockErr error) (bool, error) {
	switch {
	case flockErr == nil:
		return false, nil
	case errors.Is(flockErr, unix.EWOULDBLOCK):
		return true, nil
	case flockUnsupported(flockErr):
		owner, err := readOwner(f)
		if err != nil {
			// empty or garbled marker, nobody can be waiting on it
			return false, nil
		}
		return owner.PID != os.Getpid() && owner.Alive(), nil
	default:
		return false, fmt.Errorf("failed to lock %s: %w", f.Name(), flockErr)
	}
}

func flockUnsupported(err error) bool {
	return errors.Is(err, unix.ENOLCK) || errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS)
}

func samePath(f *os.File, path string) (bool, error) {
	held, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("failed to stat lock marker: %w", err)
	}
	current, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to stat lock marker: %w", err)
	}
	return os.SameFile(held, current), nil
}
