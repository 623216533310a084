// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"math"

	"github.com/pdiddy/landscape-pdf/pkg/types"
)

// Landscape A4 in millimetres.
const (
	PageWidthMM  = 297.0
	PageHeightMM = 210.0
	mmPerInch    = 25.4
)

// Rect is an axis-aligned box in millimetres, origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Geometry is the fixed page layout: two slots side by side above a footer
// band that holds the page number.
type Geometry struct {
	Margin float64
	Gutter float64
	Footer float64
}

// NewGeometry takes the margins from cfg.
func NewGeometry(cfg types.LayoutConfig) Geometry {
	return Geometry{Margin: cfg.MarginMM, Gutter: cfg.GutterMM, Footer: cfg.FooterMM}
}

// Slots returns the left and right image slots.
func (g Geometry) Slots() [types.ImagesPerPage]Rect {
	w := (PageWidthMM - 2*g.Margin - g.Gutter) / 2
	h := PageHeightMM - 2*g.Margin - g.Footer
	return [types.ImagesPerPage]Rect{
		{X: g.Margin, Y: g.Margin, W: w, H: h},
		{X: g.Margin + w + g.Gutter, Y: g.Margin, W: w, H: h},
	}
}

// FooterRect is the band under the slots where the page number is centred.
func (g Geometry) FooterRect() Rect {
	return Rect{
		X: g.Margin,
		Y: PageHeightMM - g.Margin - g.Footer,
		W: PageWidthMM - 2*g.Margin,
		H: g.Footer,
	}
}

// Fit places a w×h image in slot: aspect ratio preserved, centred, and never
// larger than its native size unless upscale is set.
func Fit(slot Rect, w, h float64, upscale bool) Rect {
	if w <= 0 || h <= 0 {
		return Rect{X: slot.X, Y: slot.Y}
	}
	scale := math.Min(slot.W/w, slot.H/h)
	if !upscale && scale > 1 {
		scale = 1
	}
	pw, ph := w*scale, h*scale
	return Rect{
		X: slot.X + (slot.W-pw)/2,
		Y: slot.Y + (slot.H-ph)/2,
		W: pw,
		H: ph,
	}
}

// Pages groups images into pages of up to two, in order. The last page holds
// a single image when the count is odd.
func Pages(images []types.ImageEntry) [][]types.ImageEntry {
	pages := make([][]types.ImageEntry, 0, types.PageCount(len(images)))
	for i := 0; i < len(images); i += types.ImagesPerPage {
		end := min(i+types.ImagesPerPage, len(images))
		pages = append(pages, images[i:end])
	}
	return pages
}

// pixelsToMM converts a pixel length at dpi to millimetres.
func pixelsToMM(px int, dpi float64) float64 {
	return float64(px) / dpi * mmPerInch
}

// mmToPixels converts a length in millimetres to pixels at dpi.
func mmToPixels(mm, dpi float64) int {
	return int(math.Ceil(mm / mmPerInch * dpi))
}
