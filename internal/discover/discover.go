// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover finds image files under an input folder in a fixed,
// reproducible order.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/landscape-pdf/pkg/types"
)

var (
	// ErrRootNotFound is returned with an empty list when the input folder
	// does not exist. Callers report it as a warning.
	ErrRootNotFound = errors.New("input folder does not exist")

	// ErrNotDirectory is returned when the input path is not a directory.
	ErrNotDirectory = errors.New("input path is not a directory")
)

// imageExtensions is the allow-list of image extensions (lowercase, with dot).
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// IsImageFile reports whether name has one of the supported image extensions,
// compared case-insensitively.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Extensions returns the supported extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(imageExtensions))
	for e := range imageExtensions {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return exts
}

// Discover walks root recursively and returns every image file in it.
//
// At each directory level the entries are sorted by name; the level's own
// files come first, then each subdirectory is visited in order. Running
// Discover twice on an unchanged tree yields identical lists. Symlinked
// directories are not followed.
//
// A missing root yields an empty list and ErrRootNotFound.
func Discover(root string) ([]types.ImageEntry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []types.ImageEntry{}, fmt.Errorf("%w: %s", ErrRootNotFound, absRoot)
		}
		return nil, fmt.Errorf("reading input folder %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}

	entries := []types.ImageEntry{}
	if err := walk(absRoot, absRoot, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func walk(root, dir string, out *[]types.ImageEntry) error {
	// os.ReadDir returns entries sorted by filename.
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var subdirs []string
	for _, de := range dirEntries {
		if de.IsDir() {
			subdirs = append(subdirs, de.Name())
			continue
		}
		if !IsImageFile(de.Name()) {
			continue
		}
		abs := filepath.Join(dir, de.Name())
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", abs, err)
		}
		*out = append(*out, types.ImageEntry{AbsPath: abs, RelPath: rel})
	}

	for _, name := range subdirs {
		if err := walk(root, filepath.Join(dir, name), out); err != nil {
			return err
		}
	}
	return nil
}
