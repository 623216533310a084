// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/landscape-pdf/internal/config"
	"github.com/pdiddy/landscape-pdf/internal/history"
	"github.com/pdiddy/landscape-pdf/internal/logging"
)

type fakeOpener struct {
	opened []string
}

func (f *fakeOpener) Name() string    { return "fake" }
func (f *fakeOpener) Available() bool { return true }
func (f *fakeOpener) Open(dir string) error {
	f.opened = append(f.opened, dir)
	return nil
}

func testApp(t *testing.T) (*app, *fakeOpener) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Defaults()
	cfg.Logging.ToFile = false
	cfg.Paths.InputFolder = filepath.Join(root, "input")
	cfg.Paths.OutputFolder = filepath.Join(root, "output")
	cfg.History.DBPath = filepath.Join(root, "history.db")

	op := &fakeOpener{}
	clock := time.Date(2026, 10, 19, 8, 15, 0, 0, time.UTC)
	return &app{
		cfg:    cfg,
		log:    logging.Discard(),
		opener: op,
		now:    func() time.Time { return clock },
	}, op
}

func addImages(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		img := image.NewNRGBA(image.Rect(0, 0, 24, 16))
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
		img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	}
}

func outputs(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestGenerate_TwoCopiesFromPrompts(t *testing.T) {
	a, op := testApp(t)
	addImages(t, a.cfg.Paths.InputFolder, "a.png", "b.png", "sub/c.png")

	var out bytes.Buffer
	in := strings.NewReader("2\ny\nn\n")
	err := a.generate(context.Background(), in, &out, generateOptions{seed: 5, seedSet: true})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"landscape_pdf_20261019_081500_copy01.pdf",
		"landscape_pdf_20261019_081500_copy02.pdf",
	}, outputs(t, a.cfg.Paths.OutputFolder))
	for _, name := range outputs(t, a.cfg.Paths.OutputFolder) {
		pages, err := api.PageCountFile(filepath.Join(a.cfg.Paths.OutputFolder, name))
		require.NoError(t, err)
		assert.Equal(t, 2, pages)
	}

	text := out.String()
	assert.Contains(t, text, "LANDSCAPE PDF GENERATOR")
	assert.Contains(t, text, "   1. a.png")
	assert.Contains(t, text, "   3. sub/c.png")
	assert.Contains(t, text, "3 image(s) -> 2 page(s)")
	assert.Contains(t, text, "2 PDF copies")
	assert.Contains(t, text, "RESULT: 2/2 PDF document(s) generated")
	assert.Contains(t, text, "--seed 5")
	assert.Empty(t, op.opened, "operator declined")

	store, err := history.Open(a.cfg.History)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, uint64(5), runs[0].Seed)
	require.Len(t, runs[0].Documents, 2)
	assert.Equal(t, []string{"a.png", "b.png", "sub/c.png"}, runs[0].Documents[0].Order)
	assert.ElementsMatch(t, []string{"a.png", "b.png", "sub/c.png"}, runs[0].Documents[1].Order)
}

func TestGenerate_FlagsSkipPrompts(t *testing.T) {
	a, op := testApp(t)
	a.cfg.History.Enabled = false
	addImages(t, a.cfg.Paths.InputFolder, "x.png")

	var out bytes.Buffer
	err := a.generate(context.Background(), strings.NewReader(""), &out,
		generateOptions{copies: 1, copiesSet: true, yes: true, open: openAlways})
	require.NoError(t, err)

	assert.Equal(t, []string{"landscape_pdf_20261019_081500.pdf"}, outputs(t, a.cfg.Paths.OutputFolder))
	assert.Equal(t, []string{a.cfg.Paths.OutputFolder}, op.opened)
	assert.NoFileExists(t, a.cfg.History.DBPath)
}

func TestGenerate_OutOfRangeCopyFlagDefaultsToOne(t *testing.T) {
	a, _ := testApp(t)
	addImages(t, a.cfg.Paths.InputFolder, "x.png", "y.png")

	var out bytes.Buffer
	err := a.generate(context.Background(), strings.NewReader(""), &out,
		generateOptions{copies: 21, copiesSet: true, yes: true, open: openNever})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "must be between 1 and 20")
	assert.Len(t, outputs(t, a.cfg.Paths.OutputFolder), 1)
}

func TestGenerate_DeclinedConfirmation(t *testing.T) {
	a, _ := testApp(t)
	addImages(t, a.cfg.Paths.InputFolder, "x.png")

	var out bytes.Buffer
	err := a.generate(context.Background(), strings.NewReader("1\nn\n"), &out, generateOptions{})
	assert.ErrorIs(t, err, errCancelled)
	assert.Empty(t, outputs(t, a.cfg.Paths.OutputFolder))
	assert.NoFileExists(t, a.cfg.History.DBPath)
}

func TestGenerate_MissingInputFolder(t *testing.T) {
	a, _ := testApp(t)

	var out bytes.Buffer
	err := a.generate(context.Background(), strings.NewReader(""), &out, generateOptions{})
	assert.ErrorIs(t, err, errNoImages)
	assert.Contains(t, out.String(), "does not exist")
	assert.Contains(t, out.String(), "How to fix:")
	assert.DirExists(t, a.cfg.Paths.OutputFolder)
}

func TestGenerate_AllCopiesFail(t *testing.T) {
	a, _ := testApp(t)
	require.NoError(t, os.MkdirAll(a.cfg.Paths.InputFolder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(a.cfg.Paths.InputFolder, "bad.png"), []byte("nope"), 0o644))

	var out bytes.Buffer
	err := a.generate(context.Background(), strings.NewReader(""), &out,
		generateOptions{copies: 2, copiesSet: true, yes: true, open: openNever})
	assert.ErrorIs(t, err, errNoDocuments)
	assert.Contains(t, out.String(), "RESULT: 0/2 PDF document(s) generated")
	assert.Empty(t, outputs(t, a.cfg.Paths.OutputFolder))
}

func TestGenerate_InterruptDuringPrompt(t *testing.T) {
	a, _ := testApp(t)
	addImages(t, a.cfg.Paths.InputFolder, "x.png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A pipe that never delivers input stands in for an idle terminal.
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	var out bytes.Buffer
	err = a.generate(ctx, r, &out, generateOptions{})
	assert.ErrorIs(t, err, errCancelled)
}

func TestScan(t *testing.T) {
	a, _ := testApp(t)
	addImages(t, a.cfg.Paths.InputFolder, "one.png", "two.png", "three.png")

	var out bytes.Buffer
	require.NoError(t, a.scan(&out))
	assert.Contains(t, out.String(), "24x16")
	assert.Contains(t, out.String(), "3 image(s) -> 2 page(s) per document")

	require.NoError(t, os.WriteFile(filepath.Join(a.cfg.Paths.InputFolder, "zz.png"), []byte("x"), 0o644))
	out.Reset()
	err := a.scan(&out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "invalid")
}

func TestHistoryCommand(t *testing.T) {
	a, _ := testApp(t)
	addImages(t, a.cfg.Paths.InputFolder, "x.png")
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, a.history(ctx, &out, 10, ""))
	assert.Contains(t, out.String(), "No runs recorded yet.")

	require.NoError(t, a.generate(ctx, strings.NewReader(""), &bytes.Buffer{},
		generateOptions{copies: 1, copiesSet: true, yes: true, open: openNever}))

	out.Reset()
	require.NoError(t, a.history(ctx, &out, 10, ""))
	assert.Contains(t, out.String(), "1/1 generated")
	assert.Contains(t, out.String(), "landscape_pdf_20261019_081500.pdf")

	export := filepath.Join(t.TempDir(), "h.yaml")
	out.Reset()
	require.NoError(t, a.history(ctx, &out, 0, export))
	assert.FileExists(t, export)
}
