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

package steam

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockManifest(t *testing.T, steamAppsDir string, appID int, name, installDir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(steamAppsDir, 0o750))
	content := fmt.Sprintf(`"AppState"
{
	"appid"		"%d"
	"Universe"		"1"
	"name"		"%s"
	"installdir"		"%s"
}`, appID, name, installDir)
	path := filepath.Join(steamAppsDir, fmt.Sprintf("appmanifest_%d.acf", appID))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func createLibraryFolders(t *testing.T, steamAppsDir string, libraries ...string) {
	t.Helper()
	content := "\"libraryfolders\"\n{\n"
	for i, lib := range libraries {
		content += fmt.Sprintf("\t\"%d\"\n\t{\n\t\t\"path\"\t\t\"%s\"\n\t}\n", i, lib)
	}
	content += "}\n"
	require.NoError(t, os.WriteFile(filepath.Join(steamAppsDir, "libraryfolders.vdf"), []byte(content), 0o600))
}

func TestReadAppManifest(t *testing.T) {
	t.Parallel()

	t.Run("reads_valid_manifest", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		createMockManifest(t, dir, 250900, "The Binding of Isaac: Rebirth", "The Binding of Isaac Rebirth")

		info, ok := ReadAppManifest(filepath.Join(dir, "appmanifest_250900.acf"))

		assert.True(t, ok)
		assert.Equal(t, AppInfo{
			AppID:      250900,
			Name:       "The Binding of Isaac: Rebirth",
			InstallDir: "The Binding of Isaac Rebirth",
		}, info)
	})

	t.Run("handles_missing_file", func(t *testing.T) {
		t.Parallel()

		_, ok := ReadAppManifest("/nonexistent/appmanifest_1.acf")
		assert.False(t, ok)
	})

	t.Run("handles_garbage", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "appmanifest_1.acf")
		require.NoError(t, os.WriteFile(path, []byte(`"Other" { "x" "y" }`), 0o600))

		_, ok := ReadAppManifest(path)
		assert.False(t, ok)
	})
}

func TestLibraries(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	main := filepath.Join(root, "steam", "steamapps")
	require.NoError(t, os.MkdirAll(main, 0o750))
	extra := filepath.Join(root, "games")
	createLibraryFolders(t, main, filepath.Join(root, "steam"), extra)

	assert.Equal(t, []string{main, filepath.Join(extra, "steamapps")}, Libraries(main))
	assert.Equal(t, []string{"/nowhere"}, Libraries("/nowhere"))
}

func TestInstallDirOf(t *testing.T) {
	t.Parallel()

	dir, ok := installDirOf("/home/deck/.steam/steam/steamapps/common/Quake/id1/quake.exe")
	assert.True(t, ok)
	assert.Equal(t, "Quake", dir)

	_, ok = installDirOf("/opt/games/quake.exe")
	assert.False(t, ok)

	_, ok = installDirOf("/home/user/common/Quake/quake.exe")
	assert.False(t, ok)
}

func TestLowerKeys(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"AppState": map[string]any{
			"AppID": "123",
			"Name":  "Quake",
		},
	}

	out := lowerKeys(in)
	state, ok := out["appstate"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "123", state["appid"])
	assert.Equal(t, "Quake", state["name"])
	assert.Equal(t, out, lowerKeys(out))
	assert.Empty(t, lowerKeys(map[string]any{}))
}
