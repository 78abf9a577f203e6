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

package packages

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/luxtorpeda-dev/lux/pkg/descriptor"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

// ErrUnsafePath means an archive entry would land outside the destination.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Install unpacks the cached archives for appID into dest. Files that are
// not tar archives are copied as they are.
func (m *Manager) Install(ctx context.Context, appID string, files []descriptor.Download, dest string) error {
	for _, dl := range files {
		path := m.ArchivePath(appID, dl)
		log.Info().Str("file", path).Str("dest", dest).Msg("installing")
		if err := m.installOne(ctx, path, dest); err != nil {
			return fmt.Errorf("failed to install %s: %w", dl.File, err)
		}
	}
	return nil
}

func (m *Manager) installOne(ctx context.Context, archive, dest string) error {
	f, err := m.fs.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	name := strings.ToLower(archive)
	var r io.Reader
	switch {
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to open xz stream: %w", err)
		}
		r = xr
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer func() { _ = gr.Close() }()
		r = gr
	case strings.HasSuffix(name, ".tar"):
		r = f
	default:
		if err := m.fs.MkdirAll(dest, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dest, err)
		}
		return m.copyFile(f, filepath.Join(dest, filepath.Base(archive)), 0o644)
	}

	return m.untar(ctx, tar.NewReader(r), dest)
}

func (m *Manager) untar(ctx context.Context, tr *tar.Reader, dest string) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("install cancelled: %w", err)
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := m.fs.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := m.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
			}
			if err := m.copyFile(tr, target, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := checkLink(dest, hdr); err != nil {
				return err
			}
			linker, ok := m.fs.(afero.Linker)
			if !ok {
				log.Warn().Str("path", hdr.Name).Msg("filesystem has no symlinks, skipping")
				continue
			}
			if err := m.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
			}
			if err := m.fs.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to replace %s: %w", target, err)
			}
			if err := linker.SymlinkIfPossible(hdr.Linkname, target); err != nil {
				return fmt.Errorf("failed to link %s: %w", target, err)
			}
		default:
			log.Debug().Str("path", hdr.Name).Msg("skipping unsupported archive entry")
		}
	}
}

func (m *Manager) copyFile(r io.Reader, target string, perm os.FileMode) error {
	out, err := m.fs.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil { //nolint:gosec // archives come from the catalog
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", target, err)
	}
	return nil
}

func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

// checkLink rejects symlinks whose target resolves outside dest, so later
// entries cannot be written through them.
func checkLink(dest string, hdr *tar.Header) error {
	if filepath.IsAbs(hdr.Linkname) {
		return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, hdr.Name, hdr.Linkname)
	}
	if _, err := safeJoin(dest, filepath.Join(filepath.Dir(hdr.Name), hdr.Linkname)); err != nil {
		return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, hdr.Name, hdr.Linkname)
	}
	return nil
}
