// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"errors"
	"fmt"
	"io"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyFile is returned by Validate for zero-byte files.
var ErrEmptyFile = errors.New("file is empty")

// FileInfo describes an image file on disk.
type FileInfo struct {
	Name    string
	Size    int64
	SizeMB  float64
	ModTime time.Time
	Ext     string
}

// Stat returns size, modification time and extension for path.
func Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:    filepath.Base(path),
		Size:    info.Size(),
		SizeMB:  math.Round(float64(info.Size())/(1024*1024)*100) / 100,
		ModTime: info.ModTime(),
		Ext:     strings.ToLower(filepath.Ext(path)),
	}, nil
}

// Validate checks that path exists, is not empty and decodes completely, so
// truncated files are caught as well as bad headers. It returns the image
// dimensions on success.
func Validate(path string) (image.Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return image.Config{}, err
	}
	if info.Size() == 0 {
		return image.Config{}, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("%s: not a valid image: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return image.Config{}, err
	}
	if _, _, err := image.Decode(f); err != nil {
		return image.Config{}, fmt.Errorf("%s: corrupt image data: %w", path, err)
	}
	return cfg, nil
}
