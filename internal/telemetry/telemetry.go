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

// Package telemetry sends opt-in crash and error reports to Sentry. Reports
// leave the machine only after user paths have been scrubbed.
package telemetry

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/luxtorpeda-dev/lux/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	flushTimeout = 2 * time.Second
	sendTimeout  = 30 * time.Second
)

// Options configures error reporting for one lux invocation.
type Options struct {
	DSN        string
	DeviceID   string
	AppVersion string
	// Platform is reported as the Sentry environment.
	Platform string
	Enabled  bool
}

type reporter struct {
	writer *sentryzerolog.Writer
	once   sync.Once
}

var (
	mu      sync.Mutex
	current *reporter
)

func active() *reporter {
	mu.Lock()
	defer mu.Unlock()
	return current
}

func clientOptions(opts Options) sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              opts.DSN,
		Release:          "lux@" + opts.AppVersion,
		Environment:      opts.Platform,
		AttachStacktrace: true,
		SendDefaultPII:   false,
		MaxBreadcrumbs:   0,
		HTTPClient:       &http.Client{Timeout: sendTimeout},
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return scrubEvent(event)
		},
	}
}

// Init starts error reporting. It does nothing unless reporting is enabled
// and a DSN is configured. Error level log events are forwarded to Sentry
// next to the existing log outputs.
//
//nolint:gocritic // options struct passed by value
func Init(opts Options) error {
	switch {
	case !opts.Enabled:
		log.Debug().Msg("error reporting disabled")
		return nil
	case opts.DSN == "":
		log.Warn().Msg("error reporting enabled without a DSN, not reporting")
		return nil
	}

	if err := sentry.Init(clientOptions(opts)); err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: opts.DeviceID})
		scope.SetTags(map[string]string{
			"platform": opts.Platform,
			"arch":     runtime.GOARCH,
		})
	})

	w, err := sentryzerolog.NewWithHub(sentry.CurrentHub(), sentryzerolog.Options{
		Levels:       []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
		FlushTimeout: flushTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create sentry log writer: %w", err)
	}
	log.Logger = log.Output(zerolog.MultiLevelWriter(helpers.LogWriter(), w)).
		With().Timestamp().Caller().Logger()

	mu.Lock()
	current = &reporter{writer: w}
	mu.Unlock()
	log.Info().Msg("error reporting enabled")
	return nil
}

// TagLaunch attaches the title and failure kind to every later report.
func TagLaunch(appID, kind string) {
	if active() == nil {
		return
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		if appID != "" {
			scope.SetTag("app_id", appID)
		}
		if kind != "" {
			scope.SetTag("failure_kind", kind)
		}
	})
}

// Close flushes pending reports and stops forwarding log events. It may be
// called more than once.
func Close() {
	r := active()
	if r == nil {
		return
	}
	r.once.Do(func() {
		_ = r.writer.Close()
		sentry.Flush(flushTimeout)
	})
}

// Flush waits for pending reports to be sent. Call it before os.Exit.
func Flush() {
	if active() == nil {
		return
	}
	sentry.Flush(flushTimeout)
}

// Enabled reports whether Init turned reporting on.
func Enabled() bool {
	return active() != nil
}
