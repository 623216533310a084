// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose lays images out two per landscape A4 page and publishes
// the result as a PDF. A document is written to a hidden temp file next to
// its destination, checked with pdfcpu, and renamed into place only when
// every image was placed and the page count is right.
package compose

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/landscape-pdf/pkg/types"
)

const creator = "landscape-pdf"

// Document describes a published PDF.
type Document struct {
	Path   string `json:"path" yaml:"path"`
	Images int    `json:"images" yaml:"images"`
	Pages  int    `json:"pages" yaml:"pages"`
	Bytes  int64  `json:"bytes" yaml:"bytes"`
}

// Composer turns ordered image lists into PDFs. It is safe to reuse for
// many documents but not from several goroutines at once.
type Composer struct {
	layout   types.LayoutConfig
	geometry Geometry
	pdfConf  *model.Configuration
	logger   *slog.Logger
}

// New returns a Composer for layout. A nil logger discards output.
func New(layout types.LayoutConfig, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if layout.NativeDPI <= 0 {
		layout.NativeDPI = 72
	}
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Composer{
		layout:   layout,
		geometry: NewGeometry(layout),
		pdfConf:  conf,
		logger:   logger,
	}
}

// Compose writes images, in order, to outputPath. Each page holds two images
// side by side; an odd final image sits alone in the left slot. Any image
// that cannot be read aborts the document: the error is an *ImageError and
// nothing is left at outputPath or in its directory.
func (c *Composer) Compose(ctx context.Context, images []types.ImageEntry, outputPath string) (Document, error) {
	if len(images) == 0 {
		return Document{}, ErrNoImages
	}
	log := c.logger.With("output", filepath.Base(outputPath))
	want := types.PageCount(len(images))
	log.Info("composing document", "images", len(images), "pages", want)

	pdf, err := c.render(ctx, images, outputPath, log)
	if err != nil {
		return Document{}, err
	}
	doc, err := c.publish(pdf, outputPath, want, log)
	if err != nil {
		return Document{}, err
	}
	doc.Images = len(images)
	log.Info("document written", "pages", doc.Pages, "bytes", doc.Bytes)
	return doc, nil
}

// render builds the whole document in memory.
func (c *Composer) render(ctx context.Context, images []types.ImageEntry, outputPath string, log *slog.Logger) (*gofpdf.Fpdf, error) {
	m := c.layout.MarginMM
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(m, m, m)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath)), true)
	pdf.SetCreator(creator, true)
	pdf.SetFont("Helvetica", "", c.layout.FontSize)
	pdf.SetTextColor(64, 64, 64)

	slots := c.geometry.Slots()
	pages := Pages(images)
	n := 0
	for p, pair := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		for i, entry := range pair {
			if err := c.place(pdf, entry, slots[i], n); err != nil {
				log.Error("image failed", "image", entry.RelPath, "page", p+1, "error", err)
				return nil, err
			}
			n++
		}
		c.pageNumber(pdf, p+1, len(pages))
		if pdf.Err() {
			return nil, fmt.Errorf("rendering page %d: %w", p+1, pdf.Error())
		}
		log.Debug("page rendered", "page", p+1, "images", len(pair))
	}
	return pdf, nil
}

// place embeds one image centred in slot. Each occurrence is registered
// under its own name so a path listed twice is still drawn twice.
func (c *Composer) place(pdf *gofpdf.Fpdf, entry types.ImageEntry, slot Rect, n int) error {
	prep, err := c.prepare(entry.AbsPath, slot)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("img%04d", n)
	opts := gofpdf.ImageOptions{ImageType: prep.imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(prep.data))
	if pdf.Err() {
		err := pdf.Error()
		return &ImageError{Path: entry.AbsPath, Stage: StageEmbed, Err: err}
	}
	r := Fit(slot,
		pixelsToMM(prep.width, c.layout.NativeDPI),
		pixelsToMM(prep.height, c.layout.NativeDPI),
		c.layout.Upscale)
	pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, opts, 0, "")
	return nil
}

// pageNumber writes "page / total" centred in the footer band.
func (c *Composer) pageNumber(pdf *gofpdf.Fpdf, page, total int) {
	f := c.geometry.FooterRect()
	pdf.SetXY(f.X, f.Y)
	pdf.CellFormat(f.W, f.H, fmt.Sprintf("%d / %d", page, total), "", 0, "CM", false, 0, "")
}

// publish writes pdf to a temp file beside outputPath, optionally runs it
// through pdfcpu's optimizer, checks the page count, and renames the result
// into place. Temp files never survive a failure.
func (c *Composer) publish(pdf *gofpdf.Fpdf, outputPath string, want int, log *slog.Logger) (Document, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Document{}, fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return Document{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := pdf.Output(tmp); err != nil {
		tmp.Close()
		return Document{}, fmt.Errorf("writing PDF: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return Document{}, fmt.Errorf("syncing PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Document{}, fmt.Errorf("closing PDF: %w", err)
	}

	final := tmpPath
	if c.layout.Optimize {
		optPath := tmpPath + ".opt"
		defer os.Remove(optPath)
		if err := api.OptimizeFile(tmpPath, optPath, c.pdfConf); err != nil {
			return Document{}, fmt.Errorf("optimizing PDF: %w", err)
		}
		final = optPath
	}

	pages, err := api.PageCountFile(final)
	if err != nil {
		return Document{}, fmt.Errorf("reading back PDF: %w", err)
	}
	if pages != want {
		return Document{}, fmt.Errorf("%w: got %d, want %d", ErrPageCount, pages, want)
	}

	if _, err := os.Stat(outputPath); err == nil {
		log.Warn("replacing existing file", "path", outputPath)
	}
	if err := os.Rename(final, outputPath); err != nil {
		return Document{}, fmt.Errorf("publishing PDF: %w", err)
	}
	info, err := os.Stat(outputPath)
	if err != nil {
		return Document{}, fmt.Errorf("stat %s: %w", outputPath, err)
	}
	return Document{Path: outputPath, Pages: pages, Bytes: info.Size()}, nil
}
