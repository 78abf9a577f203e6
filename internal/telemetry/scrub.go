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

package telemetry

import (
	"regexp"

	"github.com/getsentry/sentry-go"
)

type scrubRule struct {
	re   *regexp.Regexp
	repl string
}

// scrubRules replace the user name part of the paths a lux report can carry:
// home directories and removable media mounts.
var scrubRules = []scrubRule{
	{regexp.MustCompile(`(?i)/home/[^/]+/`), "/home/<user>/"},
	{regexp.MustCompile(`/run/media/[^/]+/`), "/run/media/<user>/"},
	// /media/<user> outside /run, without lookbehind
	{regexp.MustCompile(`(^|[^n])/media/[^/]+/`), "${1}/media/<user>/"},
}

func scrub(s string) string {
	if s == "" {
		return s
	}
	for _, r := range scrubRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// scrubEvent strips user names from every free-text part of a report.
func scrubEvent(event *sentry.Event) *sentry.Event {
	// the SDK fills in the hostname on its own
	event.ServerName = ""
	event.Message = scrub(event.Message)

	for i := range event.Exception {
		ex := &event.Exception[i]
		ex.Value = scrub(ex.Value)
		if ex.Stacktrace == nil {
			continue
		}
		for j := range ex.Stacktrace.Frames {
			ex.Stacktrace.Frames[j].AbsPath = scrub(ex.Stacktrace.Frames[j].AbsPath)
			ex.Stacktrace.Frames[j].Filename = scrub(ex.Stacktrace.Frames[j].Filename)
		}
	}

	for k, v := range event.Extra {
		if s, ok := v.(string); ok {
			event.Extra[k] = scrub(s)
		}
	}
	for k, v := range event.Tags {
		event.Tags[k] = scrub(v)
	}
	return event
}
