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

// Package lock serializes lux invocations through a lease on a marker file.
//
// The lease is a kernel flock on the marker, so it ends with the owning
// process no matter how that process exits. The marker also records the
// owner's PID and start time for filesystems without flock support.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultWaitTimeout  = 5 * time.Minute

	acquireAttempts = 3
)

var (
	// ErrHeld means another live process owns the lease.
	ErrHeld = errors.New("lock is held by another process")
	// ErrWaitTimeout means the holder did not go away within the wait timeout.
	ErrWaitTimeout = errors.New("timed out waiting for lock")
)

// Options configures a Coordinator. Zero durations use the defaults.
type Options struct {
	Clock        clockwork.Clock
	Path         string
	PollInterval time.Duration
	WaitTimeout  time.Duration
}

// Coordinator hands out the lease on a single marker path.
type Coordinator struct {
	clock   clockwork.Clock
	path    string
	poll    time.Duration
	timeout time.Duration
}

// New creates a Coordinator for opts.Path.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		clock:   opts.Clock,
		path:    filepath.Clean(opts.Path),
		poll:    opts.PollInterval,
		timeout: opts.WaitTimeout,
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.poll <= 0 {
		c.poll = DefaultPollInterval
	}
	if c.timeout <= 0 {
		c.timeout = DefaultWaitTimeout
	}
	return c
}

// Path returns the marker path.
func (c *Coordinator) Path() string {
	return c.path
}

// Lease is a held lock. Release is safe to call more than once.
type Lease struct {
	err  error
	file *os.File
	path string
	once sync.Once
}

// Release removes the marker and drops the flock.
func (l *Lease) Release() error {
	if l == nil {
		return nil
	}
	l.once.Do(func() {
		var errs []error
		// unlink before unlocking so a waiter never locks a marker that is
		// about to disappear
		if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove lock marker: %w", err))
		}
		if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil && !flockUnsupported(err) {
			errs = append(errs, fmt.Errorf("failed to unlock marker: %w", err))
		}
		if err := l.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close marker: %w", err))
		}
		l.err = errors.Join(errs...)
		log.Debug().Str("path", l.path).Msg("lock released")
	})
	return l.err
}

// Held reports whether a live process currently owns the lease. It shares
// its decision logic with TryAcquire.
func (c *Coordinator) Held() (bool, error) {
	f, err := os.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to open lock marker: %w", err)
	}
	defer func() { _ = f.Close() }()

	flockErr := unix.Flock(int(f.Fd()), unix.LOCK_SH|unix.LOCK_NB)
	if flockErr == nil {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	}
	return contended(f, flockErr)
}

// TryAcquire takes the lease without waiting. It returns ErrHeld when a live
// process owns it. A marker left behind by a dead process is reclaimed.
func (c *Coordinator) TryAcquire() (*Lease, error) {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	for range acquireAttempts {
		lease, retry, err := c.tryOnce()
		if err != nil || !retry {
			return lease, err
		}
	}
	return nil, ErrHeld
}

func (c *Coordinator) tryOnce() (lease *Lease, retry bool, err error) {
	//nolint:gosec // marker path comes from config
	f, err := os.OpenFile(c.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open lock marker: %w", err)
	}

	held, err := contended(f, unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB))
	if err != nil || held {
		_ = f.Close()
		if err != nil {
			return nil, false, err
		}
		return nil, false, ErrHeld
	}

	// the previous owner may have unlinked the marker between our open and
	// flock, in which case we locked an orphaned inode
	same, err := samePath(f, c.path)
	if err != nil || !same {
		_ = f.Close()
		return nil, true, nil
	}

	if err := writeOwner(f, self()); err != nil {
		_ = f.Close()
		return nil, false, err
	}

	log.Debug().Str("path", c.path).Int("pid", os.Getpid()).Msg("lock acquired")
	return &Lease{file: f, path: c.path}, false, nil
}

// Acquire waits for the lease and takes it. The wait is bounded by the
// configured timeout, after which ErrWaitTimeout is returned.
func (c *Coordinator) Acquire(ctx context.Context) (*Lease, error) {
	var lease *Lease
	err := c.wait(ctx, func() (bool, error) {
		l, err := c.TryAcquire()
		if errors.Is(err, ErrHeld) {
			return false, nil
		} else if err != nil {
			return false, err
		}
		lease = l
		return true, nil
	})
	return lease, err
}

// WaitUntilClear blocks until no live process holds the lease, without
// taking it.
func (c *Coordinator) WaitUntilClear(ctx context.Context) error {
	return c.wait(ctx, func() (bool, error) {
		held, err := c.Held()
		return !held, err
	})
}

func (c *Coordinator) wait(ctx context.Context, attempt func() (bool, error)) error {
	done, err := attempt()
	if err != nil || done {
		return err
	}

	if owner, err := readOwnerAt(c.path); err == nil {
		log.Info().Int("pid", owner.PID).Msg("another launch is in progress, waiting")
	} else {
		log.Info().Msg("another launch is in progress, waiting")
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("failed to create lock watcher, polling only")
	} else {
		defer func() { _ = watcher.Close() }()
		if err := watcher.Add(filepath.Dir(c.path)); err != nil {
			log.Warn().Err(err).Msg("failed to watch lock directory, polling only")
		} else {
			events = watcher.Events
			watchErrs = watcher.Errors
		}
	}

	ticker := c.clock.NewTicker(c.poll)
	defer ticker.Stop()
	timeout := c.clock.NewTimer(c.timeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("lock wait cancelled: %w", ctx.Err())
		case <-timeout.Chan():
			return ErrWaitTimeout
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != c.path {
				continue
			}
		case werr, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			log.Debug().Err(werr).Msg("lock watcher error")
			continue
		case <-ticker.Chan():
		}

		done, err := attempt()
		if err != nil || done {
			return err
		}
	}
}
