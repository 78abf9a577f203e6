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

// Package catalog keeps the local copy of the package catalog and looks up
// descriptors in it.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/luxtorpeda-dev/lux/pkg/descriptor"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	PackagesFile = "packages.json"
	etagSuffix   = ".etag"
	partSuffix   = ".part"

	maxCatalogSize = 64 << 20
)

// ErrNoCatalog means no catalog has been downloaded yet.
var ErrNoCatalog = errors.New("catalog has not been downloaded")

// Options configures a Catalog.
type Options struct {
	Client *http.Client
	// URL is the remote packages.json.
	URL string
	// CacheDir holds the downloaded packages.json and its ETag.
	CacheDir string
	// UserPackages is an optional file whose entries replace catalog entries
	// with the same app id.
	UserPackages string
}

// Catalog is the local package catalog.
type Catalog struct {
	fs   afero.Fs
	opts Options
}

// New creates a Catalog backed by fs.
func New(fs afero.Fs, opts Options) *Catalog {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &Catalog{fs: fs, opts: opts}
}

func (c *Catalog) cachePath() string {
	return filepath.Join(c.opts.CacheDir, PackagesFile)
}

// Refresh downloads the catalog when the remote copy changed. An unchanged
// catalog (HTTP 304) keeps the cached file.
func (c *Catalog) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.URL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create catalog request: %w", err)
	}

	cached, _ := afero.Exists(c.fs, c.cachePath())
	if cached {
		if etag, err := afero.ReadFile(c.fs, c.cachePath()+etagSuffix); err == nil && len(etag) > 0 {
			req.Header.Set("If-None-Match", strings.TrimSpace(string(etag)))
		}
	}

	resp, err := c.opts.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warn().Err(err).Msg("closing catalog response body")
		}
	}()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if !cached {
			return errors.New("catalog server returned 304 without a cached copy")
		}
		log.Debug().Msg("catalog unchanged")
		return nil
	case http.StatusOK:
	default:
		return fmt.Errorf("invalid catalog status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogSize+1))
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(body) > maxCatalogSize {
		return fmt.Errorf("catalog larger than %d bytes", maxCatalogSize)
	}
	if _, err := decodeEntries(body); err != nil {
		return err
	}

	if err := c.fs.MkdirAll(c.opts.CacheDir, 0o750); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	tmp := c.cachePath() + partSuffix
	if err := afero.WriteFile(c.fs, tmp, body, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := c.fs.Rename(tmp, c.cachePath()); err != nil {
		if rerr := c.fs.Remove(tmp); rerr != nil {
			log.Warn().Err(rerr).Msgf("error removing temp file: %s", tmp)
		}
		return fmt.Errorf("failed to replace catalog: %w", err)
	}

	etagPath := c.cachePath() + etagSuffix
	if etag := resp.Header.Get("ETag"); etag != "" {
		if err := afero.WriteFile(c.fs, etagPath, []byte(etag), 0o644); err != nil {
			log.Warn().Err(err).Msg("failed to store catalog etag")
		}
	} else if err := c.fs.Remove(etagPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to remove stale catalog etag")
	}

	log.Info().Int("bytes", len(body)).Msg("catalog updated")
	return nil
}

func decodeEntries(data []byte) (map[string]json.RawMessage, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("catalog is not a JSON object: %w", err)
	}
	return entries, nil
}

// entries merges the cached catalog with the user overrides.
func (c *Catalog) entries() (merged map[string]json.RawMessage, user map[string]bool, err error) {
	data, err := afero.ReadFile(c.fs, c.cachePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrNoCatalog
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	merged, err = decodeEntries(data)
	if err != nil {
		return nil, nil, err
	}

	user = make(map[string]bool)
	if c.opts.UserPackages == "" {
		return merged, user, nil
	}
	data, err = afero.ReadFile(c.fs, c.opts.UserPackages)
	if errors.Is(err, os.ErrNotExist) {
		return merged, user, nil
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to read user packages: %w", err)
	}
	overrides, err := decodeEntries(data)
	if err != nil {
		log.Warn().Err(err).Str("path", c.opts.UserPackages).Msg("ignoring invalid user packages file")
		return merged, user, nil
	}
	for id, raw := range overrides {
		merged[id] = raw
		user[id] = true
	}
	return merged, user, nil
}

// Load returns the descriptor for appID. Missing and malformed entries both
// wrap descriptor.ErrNotFound.
func (c *Catalog) Load(appID string) (*descriptor.Descriptor, error) {
	entries, user, err := c.entries()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", descriptor.ErrNotFound, err)
	}
	raw, ok := entries[appID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", descriptor.ErrNotFound, appID)
	}
	d, err := descriptor.Parse(raw)
	if err != nil {
		if !errors.Is(err, descriptor.ErrNotFound) {
			err = fmt.Errorf("%w: %w", descriptor.ErrNotFound, err)
		}
		return nil, err
	}
	log.Debug().Str("app_id", appID).Bool("user", user[appID]).Msg("loaded descriptor")
	return d, nil
}

// Entry summarises one catalog entry for listings.
type Entry struct {
	AppID     string
	GameName  string
	Choices   int
	Downloads int
	User      bool
}

// Entries lists every valid catalog entry sorted by app id. Entries that do
// not parse are skipped.
func (c *Catalog) Entries() ([]Entry, error) {
	entries, user, err := c.entries()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for id, raw := range entries {
		d, err := descriptor.Parse(raw)
		if err != nil {
			log.Debug().Err(err).Str("app_id", id).Msg("skipping catalog entry")
			continue
		}
		out = append(out, Entry{
			AppID:     id,
			GameName:  d.GameName,
			Choices:   len(d.Choices),
			Downloads: len(d.Download),
			User:      user[id],
		})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if len(a.AppID) != len(b.AppID) {
			return len(a.AppID) - len(b.AppID)
		}
		return strings.Compare(a.AppID, b.AppID)
	})
	return out, nil
}
