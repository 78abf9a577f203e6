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

// Package packages downloads and unpacks the engine archives a title needs.
package packages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/luxtorpeda-dev/lux/pkg/descriptor"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"
)

const (
	distDir    = "dist"
	partSuffix = ".part"

	progressInterval = 2 * time.Second
)

// Manager owns the archive cache.
type Manager struct {
	fs       afero.Fs
	client   *http.Client
	progress *rate.Sometimes
	cacheDir string
}

// New creates a Manager that stores archives under cacheDir.
func New(fs afero.Fs, client *http.Client, cacheDir string) *Manager {
	if client == nil {
		client = http.DefaultClient
	}
	return &Manager{
		fs:       fs,
		client:   client,
		cacheDir: cacheDir,
		progress: &rate.Sometimes{Interval: progressInterval},
	}
}

// ArchivePath is where dl is cached for appID. Archives flagged
// cache_by_name are shared between titles under their name.
func (m *Manager) ArchivePath(appID string, dl descriptor.Download) string {
	dir := appID
	if dl.CacheByName {
		dir = dl.Name
	}
	return filepath.Join(m.cacheDir, distDir, dir, filepath.Base(dl.File))
}

// Download fetches every archive that is not cached yet.
func (m *Manager) Download(ctx context.Context, appID string, files []descriptor.Download) error {
	for _, dl := range files {
		path := m.ArchivePath(appID, dl)
		if ok, _ := afero.Exists(m.fs, path); ok {
			log.Debug().Str("file", path).Msg("archive already cached")
			continue
		}
		if err := m.fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("error creating cache dir: %w", err)
		}
		log.Info().Str("name", dl.Name).Str("file", dl.File).Msg("downloading")
		if err := m.fetch(ctx, dl.URL+dl.File, path); err != nil {
			return fmt.Errorf("failed to download %s: %w", dl.File, err)
		}
	}
	return nil
}

type progressWriter struct {
	m       *Manager
	name    string
	total   int64
	written atomic.Int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n := p.written.Add(int64(len(b)))
	p.m.progress.Do(func() {
		ev := log.Info().Str("file", p.name).Int64("bytes", n)
		if p.total > 0 {
			ev = ev.Int64("total", p.total)
		}
		ev.Msg("download progress")
	})
	return len(b), nil
}

func (m *Manager) fetch(ctx context.Context, url, finalPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("error getting url: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Error().Err(err).Msg("closing body")
		}
	}(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}

	tempPath := finalPath + partSuffix
	file, err := m.fs.Create(tempPath)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	discard := func() {
		if err := m.fs.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Msgf("error removing partial download: %s", tempPath)
		}
	}

	progress := &progressWriter{m: m, name: filepath.Base(finalPath), total: resp.ContentLength}
	written, err := io.Copy(io.MultiWriter(file, progress), resp.Body)
	if err != nil {
		if cerr := file.Close(); cerr != nil {
			log.Warn().Err(cerr).Msgf("error closing file: %s", tempPath)
		}
		discard()
		return fmt.Errorf("error downloading file: %w", err)
	}

	expected := resp.ContentLength
	if expected > 0 && written != expected {
		if cerr := file.Close(); cerr != nil {
			log.Warn().Err(cerr).Msgf("error closing file: %s", tempPath)
		}
		discard()
		return fmt.Errorf("download incomplete: expected %d bytes, got %d", expected, written)
	}

	if err := file.Close(); err != nil {
		discard()
		return fmt.Errorf("error closing file: %w", err)
	}

	if err := m.fs.Rename(tempPath, finalPath); err != nil {
		discard()
		return fmt.Errorf("error renaming temp file: %w", err)
	}

	log.Info().Str("file", finalPath).Int64("bytes", written).Msg("download complete")
	return nil
}
