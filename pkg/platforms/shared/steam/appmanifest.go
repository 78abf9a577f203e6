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

// Package steam reads the parts of a local Steam installation lux needs to
// identify the title it was asked to launch.
package steam

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
	"github.com/rs/zerolog/log"
)

// AppInfo contains metadata for a Steam app from its manifest.
type AppInfo struct {
	Name       string
	InstallDir string
	AppID      int
}

func parseVDF(path string) (map[string]any, bool) {
	//nolint:gosec // Safe: reads Steam manifest files
	f, err := os.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("failed to open vdf file")
		return nil, false
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing vdf file")
		}
	}()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to parse vdf file")
		return nil, false
	}
	return lowerKeys(m), true
}

// lowerKeys lowercases every key in a parsed VDF tree. Valve treats keys
// case-insensitively and manifests in the wild mix "AppID" and "appid".
func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = lowerKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

// ReadAppManifest reads one appmanifest_<id>.acf file.
func ReadAppManifest(path string) (AppInfo, bool) {
	m, ok := parseVDF(path)
	if !ok {
		return AppInfo{}, false
	}

	appState, ok := m["appstate"].(map[string]any)
	if !ok {
		log.Warn().Str("path", path).Msg("AppState not found in manifest")
		return AppInfo{}, false
	}

	idStr, _ := appState["appid"].(string)
	appID, err := strconv.Atoi(idStr)
	if err != nil {
		log.Warn().Str("path", path).Msg("appid not found in manifest")
		return AppInfo{}, false
	}

	name, _ := appState["name"].(string)             //nolint:revive // name is optional
	installDir, _ := appState["installdir"].(string) //nolint:revive // installdir is optional

	return AppInfo{
		AppID:      appID,
		Name:       name,
		InstallDir: installDir,
	}, true
}

// Manifests reads every app manifest in a steamapps directory.
func Manifests(steamAppsDir string) []AppInfo {
	paths, err := filepath.Glob(filepath.Join(steamAppsDir, "appmanifest_*.acf"))
	if err != nil {
		return nil
	}
	infos := make([]AppInfo, 0, len(paths))
	for _, p := range paths {
		if info, ok := ReadAppManifest(p); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// Libraries returns the main steamapps directory followed by every extra
// library listed in its libraryfolders.vdf.
func Libraries(mainSteamAppsDir string) []string {
	dirs := []string{mainSteamAppsDir}

	m, ok := parseVDF(filepath.Join(mainSteamAppsDir, "libraryfolders.vdf"))
	if !ok {
		return dirs
	}
	lfs, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		return dirs
	}

	for _, v := range lfs {
		ls, ok := v.(map[string]any)
		if !ok {
			continue
		}
		libraryPath, ok := ls["path"].(string)
		if !ok {
			continue
		}
		dir := filepath.Join(libraryPath, "steamapps")
		if filepath.Clean(dir) != filepath.Clean(mainSteamAppsDir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// DefaultSteamAppsDirs returns default locations for Steam's steamapps directory.
func DefaultSteamAppsDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	return []string{
		// Standard Linux locations
		filepath.Join(home, ".steam", "steam", "steamapps"),
		filepath.Join(home, ".local", "share", "Steam", "steamapps"),
		// Steam Deck
		filepath.Join(home, ".steam", "steamapps"),
		// Flatpak
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".steam", "steam", "steamapps"),
	}
}

// installDirOf returns the directory name under steamapps/common that
// contains path, if any.
func installDirOf(path string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	for i := 0; i+1 < len(parts); i++ {
		if strings.EqualFold(parts[i], "common") && i > 0 && strings.EqualFold(parts[i-1], "steamapps") {
			return parts[i+1], true
		}
	}
	return "", false
}
