// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/pdiddy/landscape-pdf/pkg/types"
)

func testLayout() types.LayoutConfig {
	return types.LayoutConfig{
		MarginMM:  10,
		GutterMM:  10,
		FooterMM:  12,
		FontSize:  10,
		NativeDPI: 72,
		MaxDPI:    300,
		Optimize:  true,
	}
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// writeImage encodes a small image in the format implied by name's extension.
func writeImage(t *testing.T, dir, name string, w, h int) types.ImageEntry {
	t.Helper()
	path := filepath.Join(dir, name)
	img := solid(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	var buf bytes.Buffer
	switch filepath.Ext(name) {
	case ".png":
		require.NoError(t, png.Encode(&buf, img))
	case ".jpg", ".jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	case ".gif":
		require.NoError(t, gif.Encode(&buf, img, nil))
	case ".bmp":
		require.NoError(t, bmp.Encode(&buf, img))
	default:
		t.Fatalf("unsupported fixture extension %q", name)
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return types.ImageEntry{AbsPath: path, RelPath: name}
}

func fixtures(t *testing.T, dir string, n int) []types.ImageEntry {
	t.Helper()
	exts := []string{".png", ".jpg", ".gif", ".bmp"}
	var out []types.ImageEntry
	for i := 0; i < n; i++ {
		name := string(rune('a'+i)) + exts[i%len(exts)]
		out = append(out, writeImage(t, dir, name, 40+i*10, 30))
	}
	return out
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCompose_PageCount(t *testing.T) {
	tests := []struct {
		images int
		pages  int
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
	}
	for _, tt := range tests {
		t.Run(string(rune('0'+tt.images)), func(t *testing.T) {
			src := t.TempDir()
			out := filepath.Join(t.TempDir(), "doc.pdf")
			images := fixtures(t, src, tt.images)

			doc, err := New(testLayout(), nil).Compose(context.Background(), images, out)
			require.NoError(t, err)
			assert.Equal(t, out, doc.Path)
			assert.Equal(t, tt.pages, doc.Pages)
			assert.Equal(t, tt.images, doc.Images)
			assert.Positive(t, doc.Bytes)

			pages, err := api.PageCountFile(out)
			require.NoError(t, err)
			assert.Equal(t, tt.pages, pages)
		})
	}
}

func TestCompose_WithoutOptimize(t *testing.T) {
	src := t.TempDir()
	outDir := t.TempDir()
	out := filepath.Join(outDir, "plain.pdf")
	layout := testLayout()
	layout.Optimize = false

	doc, err := New(layout, nil).Compose(context.Background(), fixtures(t, src, 3), out)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, []string{"plain.pdf"}, dirNames(t, outDir))
}

func TestCompose_SameImageTwice(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "dup.pdf")
	img := writeImage(t, src, "a.png", 20, 20)

	doc, err := New(testLayout(), nil).Compose(context.Background(), []types.ImageEntry{img, img, img}, out)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Pages)
}

func TestCompose_BadImageAbortsDocument(t *testing.T) {
	src := t.TempDir()
	outDir := t.TempDir()
	out := filepath.Join(outDir, "broken.pdf")

	images := fixtures(t, src, 2)
	bad := filepath.Join(src, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("definitely not a png"), 0o644))
	images = append(images, types.ImageEntry{AbsPath: bad, RelPath: "bad.png"})

	_, err := New(testLayout(), nil).Compose(context.Background(), images, out)
	require.Error(t, err)

	var imgErr *ImageError
	require.True(t, errors.As(err, &imgErr))
	assert.Equal(t, bad, imgErr.Path)
	assert.Equal(t, StageDecode, imgErr.Stage)

	assert.NoFileExists(t, out)
	assert.Empty(t, dirNames(t, outDir))
}

func TestCompose_MissingImage(t *testing.T) {
	outDir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "gone.png")

	_, err := New(testLayout(), nil).Compose(context.Background(),
		[]types.ImageEntry{{AbsPath: missing, RelPath: "gone.png"}},
		filepath.Join(outDir, "x.pdf"))

	var imgErr *ImageError
	require.True(t, errors.As(err, &imgErr))
	assert.Equal(t, StageOpen, imgErr.Stage)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Empty(t, dirNames(t, outDir))
}

func TestCompose_NoImages(t *testing.T) {
	outDir := t.TempDir()
	_, err := New(testLayout(), nil).Compose(context.Background(), nil, filepath.Join(outDir, "x.pdf"))
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Empty(t, dirNames(t, outDir))
}

func TestCompose_Cancelled(t *testing.T) {
	src := t.TempDir()
	outDir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testLayout(), nil).Compose(ctx, fixtures(t, src, 2), filepath.Join(outDir, "x.pdf"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dirNames(t, outDir))
}

func TestCompose_OutputDirIsFile(t *testing.T) {
	src := t.TempDir()
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := New(testLayout(), nil).Compose(context.Background(), fixtures(t, src, 1), filepath.Join(blocker, "x.pdf"))
	assert.Error(t, err)
}

func TestCompose_ReplacesExisting(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	_, err := New(testLayout(), logger).Compose(context.Background(), fixtures(t, src, 2), out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "replacing existing file")
}

func TestCompose_NewFileLogsNoWarning(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "fresh.pdf")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	_, err := New(testLayout(), logger).Compose(context.Background(), fixtures(t, src, 1), out)
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "replacing existing file")
}

// pageContents extracts the content stream of every page of path, keyed by
// 1-based page number.
func pageContents(t *testing.T, path string) map[int]string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, api.ExtractContentFile(path, dir, nil, nil))

	pageNr := regexp.MustCompile(`page_(\d+)`)
	out := map[int]string{}
	for _, name := range dirNames(t, dir) {
		m := pageNr.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		out[n] += string(data)
	}
	return out
}

func TestCompose_PageNumbersAndSlots(t *testing.T) {
	for _, optimize := range []bool{true, false} {
		t.Run(strconv.FormatBool(optimize), func(t *testing.T) {
			src := t.TempDir()
			out := filepath.Join(t.TempDir(), "numbered.pdf")
			layout := testLayout()
			layout.Optimize = optimize

			_, err := New(layout, nil).Compose(context.Background(), fixtures(t, src, 3), out)
			require.NoError(t, err)

			pages := pageContents(t, out)
			require.Len(t, pages, 2)

			drawn := regexp.MustCompile(`\bDo\b`)
			assert.Regexp(t, `\(1 / 2\)\s*Tj`, pages[1])
			assert.Len(t, drawn.FindAllString(pages[1], -1), 2, "first page holds two images")
			assert.Regexp(t, `\(2 / 2\)\s*Tj`, pages[2])
			assert.Len(t, drawn.FindAllString(pages[2], -1), 1, "odd last page holds one image")
			assert.NotRegexp(t, `\(1 / 2\)`, pages[2])
		})
	}
}
