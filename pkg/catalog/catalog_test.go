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

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/luxtorpeda-dev/lux/pkg/descriptor"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remoteCatalog = `{
	"2280": {"game_name": "DOOM", "command": "./gzdoom.sh", "download": [{"name": "gz", "url": "u", "file": "f"}]},
	"220": {"game_name": "Half-Life 2", "choices": [{"name": "a"}, {"name": "b"}]},
	"999": {"command": 5},
	"1000": null
}`

func catalogServer(t *testing.T, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRefresh_AndLoad(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := catalogServer(t, remoteCatalog, &hits)
	fs := afero.NewMemMapFs()
	c := New(fs, Options{URL: srv.URL, CacheDir: "/cache/lux", Client: srv.Client()})

	require.NoError(t, c.Refresh(context.Background()))

	etag, err := afero.ReadFile(fs, "/cache/lux/packages.json.etag")
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, string(etag))

	d, err := c.Load("2280")
	require.NoError(t, err)
	assert.Equal(t, "DOOM", d.GameName)

	// second refresh sends the etag and keeps the cache
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, int32(2), hits.Load())
	_, err = c.Load("2280")
	require.NoError(t, err)
}

func TestLoad_Failures(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	c := New(fs, Options{CacheDir: "/cache"})

	_, err := c.Load("2280")
	require.ErrorIs(t, err, descriptor.ErrNotFound)
	require.ErrorIs(t, err, ErrNoCatalog)

	require.NoError(t, afero.WriteFile(fs, "/cache/packages.json", []byte(remoteCatalog), 0o644))

	_, err = c.Load("12345")
	require.ErrorIs(t, err, descriptor.ErrNotFound)

	_, err = c.Load("999")
	require.ErrorIs(t, err, descriptor.ErrNotFound)
	require.ErrorIs(t, err, descriptor.ErrInvalid)

	_, err = c.Load("1000")
	require.ErrorIs(t, err, descriptor.ErrNotFound)
}

func TestRefresh_Failures(t *testing.T) {
	t.Parallel()

	t.Run("server_error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		c := New(afero.NewMemMapFs(), Options{URL: srv.URL, CacheDir: "/cache", Client: srv.Client()})
		require.Error(t, c.Refresh(context.Background()))
	})

	t.Run("not_an_object_keeps_previous_cache", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := catalogServer(t, `["not", "a", "catalog"]`, &hits)
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/cache/packages.json", []byte(remoteCatalog), 0o644))

		c := New(fs, Options{URL: srv.URL, CacheDir: "/cache", Client: srv.Client()})
		require.Error(t, c.Refresh(context.Background()))

		_, err := c.Load("2280")
		require.NoError(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		c := New(afero.NewMemMapFs(), Options{URL: "http://127.0.0.1:1/packages.json", CacheDir: "/cache"})
		require.Error(t, c.Refresh(context.Background()))
	})
}

func TestUserPackages(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cache/packages.json", []byte(remoteCatalog), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/config/user_packages.json", []byte(`{
		"2280": {"game_name": "DOOM (local)", "command": "./local.sh"},
		"70": {"game_name": "Half-Life", "command": "./xash.sh"}
	}`), 0o644))

	c := New(fs, Options{CacheDir: "/cache", UserPackages: "/config/user_packages.json"})

	d, err := c.Load("2280")
	require.NoError(t, err)
	assert.Equal(t, "DOOM (local)", d.GameName)
	assert.Nil(t, d.Download)

	entries, err := c.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{AppID: "70", GameName: "Half-Life", User: true}, entries[0])
	assert.Equal(t, Entry{AppID: "220", GameName: "Half-Life 2", Choices: 2}, entries[1])
	assert.Equal(t, "2280", entries[2].AppID)
	assert.True(t, entries[2].User)
}
