// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/landscape-pdf/internal/batch"
	"github.com/pdiddy/landscape-pdf/internal/compose"
	"github.com/pdiddy/landscape-pdf/internal/discover"
	"github.com/pdiddy/landscape-pdf/internal/history"
	"github.com/pdiddy/landscape-pdf/internal/opener"
	"github.com/pdiddy/landscape-pdf/internal/prompt"
	"github.com/pdiddy/landscape-pdf/pkg/types"
)

var (
	errNoImages    = errors.New("no image files found in the input folder")
	errCancelled   = errors.New("cancelled by user")
	errNoDocuments = errors.New("no PDF documents were generated")
)

const rule = "============================================================"

// app carries the loaded configuration and collaborators shared by every
// command.
type app struct {
	cfg    types.Config
	log    *slog.Logger
	closer io.Closer
	opener opener.Opener

	// now is the clock used for output filenames. Nil means time.Now.
	now func() time.Time
}

func (a *app) Close() {
	if a.closer != nil {
		a.closer.Close()
	}
}

// openMode controls the open-folder step after a successful run.
type openMode int

const (
	openAsk openMode = iota
	openAlways
	openNever
)

// generateOptions carries the root command flags.
type generateOptions struct {
	copies    int
	copiesSet bool // false means ask
	yes       bool // skip the confirmation
	seed      uint64
	seedSet   bool
	open      openMode
}

// generate runs the interactive flow: list images, ask for the copy count,
// confirm, build every copy, record the run and offer to open the folder.
func (a *app) generate(ctx context.Context, in io.Reader, out io.Writer, opts generateOptions) error {
	p := prompt.New(in, out)
	log := a.log

	printBanner(out)

	if err := os.MkdirAll(a.cfg.Paths.OutputFolder, 0o755); err != nil {
		log.Error("cannot create output folder", "path", a.cfg.Paths.OutputFolder, "error", err)
		return fmt.Errorf("creating output folder: %w", err)
	}

	images, err := a.discover(out)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nFound %d image(s):\n", len(images))
	for i, img := range images {
		fmt.Fprintf(out, "  %2d. %s\n", i+1, img.RelPath)
	}

	copies := opts.copies
	if opts.copiesSet {
		if n := batch.ClampCopies(copies); n != copies {
			fmt.Fprintln(out, prompt.NoticeOutOfRange)
			copies = n
		}
	} else {
		copies, err = ask(ctx, p.Copies)
		if err != nil {
			return a.cancelled(out)
		}
	}

	fmt.Fprintf(out, "\nSummary:\n")
	fmt.Fprintf(out, "  - %d image(s) -> %d page(s)\n", len(images), types.PageCount(len(images)))
	fmt.Fprintf(out, "  - %d images per page (landscape A4)\n", types.ImagesPerPage)
	fmt.Fprintf(out, "  - %d PDF cop%s\n", copies, plural(copies, "y", "ies"))

	if !opts.yes {
		ok, err := ask(ctx, func() bool { return p.Confirm("\nContinue?") })
		if err != nil || !ok {
			return a.cancelled(out)
		}
	}

	seed := opts.seed
	if !opts.seedSet {
		seed = batch.NewSeed()
	}

	composer := compose.New(a.cfg.Layout, log)
	orch := batch.New(composer, batch.Options{
		OutputDir: a.cfg.Paths.OutputFolder,
		Seed:      seed,
		Now:       a.now,
		Out:       out,
		Logger:    log,
	})
	res := orch.Run(ctx, images, copies)

	fmt.Fprintf(out, "\n%s\n", rule[:50])
	fmt.Fprintf(out, "RESULT: %d/%d PDF document(s) generated\n", res.Succeeded, res.Requested)
	if res.Requested > 1 {
		fmt.Fprintf(out, "Seed: %d (pass --seed %d to reproduce the order)\n", res.Seed, res.Seed)
	}
	if res.OK() {
		fmt.Fprintf(out, "Output folder: %s\n", a.cfg.Paths.OutputFolder)
	}

	a.record(ctx, res, len(images))

	if res.Cancelled {
		return a.cancelled(out)
	}
	if !res.OK() {
		return errNoDocuments
	}

	a.offerOpen(ctx, p, opts.open)
	return nil
}

// discover finds the input images. A missing input folder is reported but
// treated the same as an empty one.
func (a *app) discover(out io.Writer) ([]types.ImageEntry, error) {
	input := a.cfg.Paths.InputFolder
	images, err := discover.Discover(input)
	switch {
	case errors.Is(err, discover.ErrRootNotFound):
		fmt.Fprintf(out, "Warning: folder %q does not exist.\n", input)
		a.log.Warn("input folder not found", "path", input)
	case err != nil:
		a.log.Error("scanning input folder failed", "path", input, "error", err)
		return nil, fmt.Errorf("scanning %s: %w", input, err)
	}

	if len(images) == 0 {
		a.log.Error("no image files found in the input folder", "path", input)
		fmt.Fprintln(out, "\nHow to fix:")
		fmt.Fprintf(out, "  1. Create the folder %q if it does not exist\n", input)
		fmt.Fprintf(out, "  2. Put image files (%s) into it\n", strings.Join(discover.Extensions(), ", "))
		fmt.Fprintln(out, "  3. Run landscape-pdf again")
		return nil, errNoImages
	}

	if a.cfg.Paths.NaturalSort {
		discover.SortNatural(images)
	}
	a.log.Info("images discovered", "count", len(images), "path", input)
	return images, nil
}

// record writes the run to the history ledger. Failures are only logged.
func (a *app) record(ctx context.Context, res batch.Result, images int) {
	if !a.cfg.History.Enabled {
		return
	}
	store, err := history.Open(a.cfg.History)
	if err != nil {
		a.log.Warn("cannot open history", "error", err)
		return
	}
	defer store.Close()

	run := history.RunFromResult(res, a.cfg.Paths.InputFolder, a.cfg.Paths.OutputFolder, images)
	id, err := store.RecordRun(context.WithoutCancel(ctx), run)
	if err != nil {
		a.log.Warn("cannot record run in history", "error", err)
		return
	}
	a.log.Debug("run recorded", "id", id, "db", store.Path())
}

func (a *app) offerOpen(ctx context.Context, p *prompt.Prompter, mode openMode) {
	switch mode {
	case openNever:
		return
	case openAsk:
		ok, err := ask(ctx, func() bool { return p.Confirm("\nOpen the output folder?") })
		if err != nil || !ok {
			return
		}
	}
	if err := a.opener.Open(a.cfg.Paths.OutputFolder); err != nil {
		a.log.Warn("cannot open output folder", "error", err)
	}
}

func (a *app) cancelled(out io.Writer) error {
	fmt.Fprintln(out, "\nCancelled.")
	a.log.Warn("run cancelled by user")
	return errCancelled
}

// ask runs a blocking prompt and gives up when ctx is done, so an interrupt
// during a prompt ends the run instead of waiting for input.
func ask[T any](ctx context.Context, f func() T) (T, error) {
	ch := make(chan T, 1)
	// After an interrupt the goroutine stays blocked on input until the
	// process exits.
	go func() { ch <- f() }()
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func printBanner(out io.Writer) {
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, " LANDSCAPE PDF GENERATOR")
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, " - Landscape A4 (297x210mm)")
	fmt.Fprintln(out, " - 2 images per page")
	fmt.Fprintln(out, " - Automatic page numbers")
	fmt.Fprintln(out, " - Multiple copies in random order")
	fmt.Fprintln(out, rule)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
