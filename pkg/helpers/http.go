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

package helpers

import (
	"net"
	"net/http"
	"time"

	"github.com/luxtorpeda-dev/lux/pkg/config"
)

// NewHTTPClient returns a client with connection level timeouts. Body
// transfer is bounded by the caller's context instead, so large downloads
// are not cut off.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &userAgentTransport{
			Base: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ResponseHeaderTimeout: 30 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
			},
		},
	}
}

type userAgentTransport struct {
	Base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", config.AppName+"/"+config.AppVersion)
	//nolint:wrapcheck // transport errors are wrapped by callers
	return t.Base.RoundTrip(req)
}
