// util/resources.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/kanview/kanview/resources"
)

var (
	resourcesFS   fs.FS
	resourcesOnce sync.Once
)

// ResourcesFS returns the filesystem that shaders and fonts are loaded
// from. A resources/ directory next to the executable (or in
// Contents/Resources on macOS), in the current directory, or in one of
// the two directories above it takes precedence over the copy that is
// embedded in the binary.
func ResourcesFS() fs.FS {
	resourcesOnce.Do(func() {
		if dir, ok := findResourcesDir(); ok {
			resourcesFS = os.DirFS(dir)
		} else {
			resourcesFS = resources.FS
		}
	})
	return resourcesFS
}

// DirResourcesFS returns a filesystem rooted at dir; it is used when the
// user explicitly points us at a resources directory.
func DirResourcesFS(dir string) (fs.FS, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", dir)
	}
	return os.DirFS(dir), nil
}

func findResourcesDir() (string, bool) {
	// The expected layout has a shaders/ directory inside resources/.
	check := func(dir string) bool {
		info, err := os.Stat(filepath.Join(dir, "resources", "shaders"))
		return err == nil && info.IsDir()
	}

	if path, err := os.Executable(); err == nil {
		dir := filepath.Dir(path)
		if runtime.GOOS == "darwin" {
			if res := filepath.Clean(filepath.Join(dir, "..", "Resources")); check(res) {
				return filepath.Join(res, "resources"), true
			}
		}
		if check(dir) {
			return filepath.Join(dir, "resources"), true
		}
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	// Try CWD as well the two directories above it.
	for range 3 {
		if check(dir) {
			return filepath.Join(dir, "resources"), true
		}
		dir = filepath.Join(dir, "..")
	}
	return "", false
}

// LoadResource reads the named file from fsys, transparently
// decompressing it if its name ends in ".zst".
func LoadResource(fsys fs.FS, name string) ([]byte, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(name, ".zst") {
		if b, err = Decompress(b); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return b, nil
}

// LoadResourceString is a convenience wrapper around LoadResource for
// text resources like shader sources.
func LoadResourceString(fsys fs.FS, name string) (string, error) {
	b, err := LoadResource(fsys, name)
	return string(b), err
}
