// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch generates several copies of a document from one image list.
// Copy 1 keeps the discovery order; every later copy is an independent
// uniform shuffle of it. Copies run one after another and a failed copy does
// not stop the rest.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"time"

	"github.com/pdiddy/landscape-pdf/internal/compose"
	"github.com/pdiddy/landscape-pdf/pkg/types"
)

// Copy count bounds. Anything outside becomes DefaultCopies.
const (
	MinCopies     = 1
	MaxCopies     = 20
	DefaultCopies = 1
)

const (
	filenamePrefix = "landscape_pdf_"
	timestampFmt   = "20060102_150405"

	// pcgStream is the second PCG word; the seed supplies the first.
	pcgStream = 0x9e3779b97f4a7c15
)

// Composer writes one document. *compose.Composer satisfies it.
type Composer interface {
	Compose(ctx context.Context, images []types.ImageEntry, outputPath string) (compose.Document, error)
}

// Options configures an Orchestrator.
type Options struct {
	// OutputDir receives every generated PDF.
	OutputDir string
	// Seed drives the shuffle for copies 2 and later.
	Seed uint64
	// Now is the clock used for filenames. Defaults to time.Now.
	Now func() time.Time
	// Out receives one progress line per copy and the summary. May be nil.
	Out io.Writer
	// Logger receives structured records. Defaults to a discarding logger.
	Logger *slog.Logger
}

// CopyResult is the outcome of one copy.
type CopyResult struct {
	Copy   int
	Path   string
	Order  []string
	Status types.DocumentStatus
	Pages  int
	Err    error
}

// Result summarises a run.
type Result struct {
	Requested int
	Succeeded int
	Failed    int
	Cancelled bool
	Seed      uint64
	Started   time.Time
	Finished  time.Time
	Copies    []CopyResult
}

// OK reports whether at least one document was generated.
func (r Result) OK() bool { return r.Succeeded > 0 }

// Orchestrator runs the copy loop.
type Orchestrator struct {
	composer Composer
	rng      *rand.Rand
	opts     Options
}

// New returns an Orchestrator whose shuffles are fully determined by
// opts.Seed.
func New(c Composer, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		composer: c,
		rng:      rand.New(rand.NewPCG(opts.Seed, pcgStream)),
		opts:     opts,
	}
}

// NewSeed draws a seed from the runtime's entropy-seeded generator.
func NewSeed() uint64 {
	return rand.Uint64()
}

// ClampCopies returns n when it lies in [MinCopies, MaxCopies] and
// DefaultCopies otherwise.
func ClampCopies(n int) int {
	if n < MinCopies || n > MaxCopies {
		return DefaultCopies
	}
	return n
}

// Shuffle returns a uniformly random permutation of canonical. The input
// slice is never modified.
func Shuffle(rng *rand.Rand, canonical []types.ImageEntry) []types.ImageEntry {
	out := slices.Clone(canonical)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Filename returns the output name for copy index of copies generated at t.
// A single copy carries no suffix.
func Filename(t time.Time, index, copies int) string {
	stamp := t.Format(timestampFmt)
	if copies <= 1 {
		return filenamePrefix + stamp + ".pdf"
	}
	return fmt.Sprintf("%s%s_copy%02d.pdf", filenamePrefix, stamp, index)
}

// Run generates copies documents from canonical. copies is clamped first.
// The context is checked before each copy; once it is done no further copy
// starts and the result is marked cancelled.
func (o *Orchestrator) Run(ctx context.Context, canonical []types.ImageEntry, copies int) Result {
	copies = ClampCopies(copies)
	w := o.opts.Out
	log := o.opts.Logger

	result := Result{
		Requested: copies,
		Seed:      o.opts.Seed,
		Started:   o.opts.Now(),
	}
	log.Info("batch started", "copies", copies, "images", len(canonical), "seed", o.opts.Seed)
	fmt.Fprintf(w, "\nGenerating %d PDF document(s)...\n", copies)

	for c := 1; c <= copies; c++ {
		if err := ctx.Err(); err != nil {
			result.Cancelled = true
			log.Warn("batch cancelled", "remaining", copies-c+1)
			break
		}

		cr := o.runCopy(ctx, canonical, c, copies)
		switch cr.Status {
		case types.DocumentDone:
			result.Succeeded++
		case types.DocumentCancelled:
			result.Cancelled = true
		default:
			result.Failed++
		}
		result.Copies = append(result.Copies, cr)
		if cr.Status == types.DocumentCancelled {
			break
		}
	}

	result.Finished = o.opts.Now()
	fmt.Fprintf(w, "\nBatch summary: %d/%d documents generated\n", result.Succeeded, result.Requested)
	log.Info("batch finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"requested", result.Requested,
		"cancelled", result.Cancelled)
	return result
}

func (o *Orchestrator) runCopy(ctx context.Context, canonical []types.ImageEntry, c, copies int) CopyResult {
	w := o.opts.Out
	order := canonical
	if c > 1 {
		order = Shuffle(o.rng, canonical)
	}
	name := Filename(o.opts.Now(), c, copies)
	path := filepath.Join(o.opts.OutputDir, name)
	log := o.opts.Logger.With("copy", c, "file", name)

	fmt.Fprintf(w, "\nCopy %d/%d...\n", c, copies)
	log.Debug("copy order", "order", types.RelPaths(order))

	cr := CopyResult{Copy: c, Path: path, Order: types.RelPaths(order)}
	doc, err := o.composer.Compose(ctx, order, path)
	switch {
	case err == nil:
		cr.Status = types.DocumentDone
		cr.Pages = doc.Pages
		fmt.Fprintf(w, "  generated: %s (%d pages)\n", name, doc.Pages)
		log.Info("copy generated", "pages", doc.Pages)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		cr.Status = types.DocumentCancelled
		cr.Err = err
		fmt.Fprintf(w, "  cancelled: %s\n", name)
		log.Warn("copy cancelled")
	default:
		cr.Status = types.DocumentFailed
		cr.Err = err
		fmt.Fprintf(w, "  failed:    %s (%v)\n", name, err)
		log.Error("copy failed", "error", err)
	}
	return cr
}
