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

package main

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/ulikunitz/xz"
)

const (
	compatToolFile   = "compatibilitytool.vdf"
	toolManifestFile = "toolmanifest.vdf"
	defaultToolName  = "luxtorpeda"
	defaultDisplay   = "Luxtorpeda"
)

var compatToolTmpl = template.Must(template.New(compatToolFile).Parse(`"compatibilitytools"
{
  "compat_tools"
  {
    "{{.Name}}"
    {
      "install_path" "."
      "display_name" "{{.Display}}"
      "from_oslist"  "windows"
      "to_oslist"    "linux"
    }
  }
}
`))

var toolManifestTmpl = template.Must(template.New(toolManifestFile).Parse(`"manifest"
{
  "commandline" "/{{.Binary}} %verb%"
  "version" "2"
  "use_tool_subprocess_reaper" "1"
}
`))

type toolData struct {
	Name    string
	Display string
	Binary  string
}

type archiveFile struct {
	path    string
	arcname string
	mode    int64
}

func renderManifests(dir string, data toolData) error {
	for name, tmpl := range map[string]*template.Template{
		compatToolFile:   compatToolTmpl,
		toolManifestFile: toolManifestTmpl,
	} {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("error rendering %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", name, err)
		}
	}
	return nil
}

// createArchive writes a tar.xz with every file placed under root/, the
// layout Steam expects inside compatibilitytools.d.
func createArchive(archivePath, root string, files []archiveFile) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("error creating archive: %w", err)
	}
	defer func(out *os.File) {
		_ = out.Close()
	}(out)

	xw, err := xz.NewWriter(out)
	if err != nil {
		return fmt.Errorf("error creating xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)

	if err := tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeDir,
		Name:     root + "/",
		Mode:     0o755,
	}); err != nil {
		return fmt.Errorf("error adding root dir: %w", err)
	}

	for _, f := range files {
		if err := addFileToTar(tw, f, root); err != nil {
			return fmt.Errorf("error adding %s: %w", f.arcname, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("error closing tar: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("error closing xz: %w", err)
	}
	return nil
}

func addFileToTar(tw *tar.Writer, f archiveFile, root string) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = root + "/" + f.arcname
	header.Mode = f.mode
	header.Uname = ""
	header.Gname = ""
	header.Uid = 0
	header.Gid = 0

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, file)
	return err
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, input, 0o644)
}

func main() {
	if len(os.Args) < 4 {
		_, _ = fmt.Println("Usage: go run ./scripts/tasks/utils/makerelease <build_dir> <app_bin> <archive_name> [tool_name]")
		os.Exit(1)
	}

	buildDir := os.Args[1]
	appBin := os.Args[2]
	archiveName := os.Args[3]
	toolName := defaultToolName
	if len(os.Args) > 4 {
		toolName = os.Args[4]
	}

	if _, err := os.Stat(buildDir); os.IsNotExist(err) {
		_, _ = fmt.Printf("The specified directory '%s' does not exist\n", buildDir)
		os.Exit(1)
	}

	appPath := filepath.Join(buildDir, appBin)
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		_, _ = fmt.Printf("The specified binary file '%s' does not exist\n", appPath)
		os.Exit(1)
	}

	licensePath := filepath.Join(buildDir, "LICENSE.txt")
	if _, err := os.Stat(licensePath); os.IsNotExist(err) {
		if err := copyFile("LICENSE", licensePath); err != nil {
			_, _ = fmt.Printf("Error copying LICENSE file: %v\n", err)
			os.Exit(1)
		}
	}

	data := toolData{Name: toolName, Display: defaultDisplay, Binary: appBin}
	if err := renderManifests(buildDir, data); err != nil {
		_, _ = fmt.Printf("Error writing manifests: %v\n", err)
		os.Exit(1)
	}

	archivePath := filepath.Join(buildDir, archiveName)
	_ = os.Remove(archivePath)

	files := []archiveFile{
		{path: appPath, arcname: appBin, mode: 0o755},
		{path: filepath.Join(buildDir, compatToolFile), arcname: compatToolFile, mode: 0o644},
		{path: filepath.Join(buildDir, toolManifestFile), arcname: toolManifestFile, mode: 0o644},
		{path: licensePath, arcname: "LICENSE.txt", mode: 0o644},
	}
	if err := createArchive(archivePath, toolName, files); err != nil {
		_, _ = fmt.Printf("Error creating archive: %v\n", err)
		os.Exit(1)
	}
}
