// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/landscape-pdf/pkg/types"
)

func TestGeometry_Slots(t *testing.T) {
	g := Geometry{Margin: 10, Gutter: 10, Footer: 12}
	slots := g.Slots()

	assert.InDelta(t, 133.5, slots[0].W, 1e-9)
	assert.InDelta(t, 178.0, slots[0].H, 1e-9)
	assert.Equal(t, slots[0].W, slots[1].W)
	assert.InDelta(t, 10.0, slots[0].X, 1e-9)
	assert.InDelta(t, 153.5, slots[1].X, 1e-9)
	// The right slot ends at the right margin.
	assert.InDelta(t, PageWidthMM-10, slots[1].X+slots[1].W, 1e-9)

	f := g.FooterRect()
	assert.InDelta(t, 188.0, f.Y, 1e-9)
	assert.InDelta(t, PageHeightMM-10, f.Y+f.H, 1e-9)
}

func TestFit(t *testing.T) {
	slot := Rect{X: 10, Y: 10, W: 100, H: 200}

	tests := []struct {
		name    string
		w, h    float64
		upscale bool
		want    Rect
	}{
		{"small image keeps native size", 50, 40, false, Rect{X: 35, Y: 90, W: 50, H: 40}},
		{"small image upscaled to width", 50, 40, true, Rect{X: 10, Y: 70, W: 100, H: 80}},
		{"wide image limited by width", 400, 100, false, Rect{X: 10, Y: 97.5, W: 100, H: 25}},
		{"tall image limited by height", 100, 800, false, Rect{X: 47.5, Y: 10, W: 25, H: 200}},
		{"exact fit", 100, 200, false, Rect{X: 10, Y: 10, W: 100, H: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(slot, tt.w, tt.h, tt.upscale)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.W, got.W, 1e-9)
			assert.InDelta(t, tt.want.H, got.H, 1e-9)
			assert.InDelta(t, tt.w/tt.h, got.W/got.H, 1e-9, "aspect ratio")
		})
	}
}

func TestFit_ZeroSize(t *testing.T) {
	got := Fit(Rect{X: 1, Y: 2, W: 3, H: 4}, 0, 10, false)
	assert.Equal(t, Rect{X: 1, Y: 2}, got)
}

func TestPages(t *testing.T) {
	mk := func(n int) []types.ImageEntry {
		out := make([]types.ImageEntry, n)
		for i := range out {
			out[i] = types.ImageEntry{RelPath: string(rune('a' + i))}
		}
		return out
	}

	assert.Empty(t, Pages(nil))

	pages := Pages(mk(3))
	assert.Len(t, pages, 2)
	assert.Equal(t, []string{"a", "b"}, types.RelPaths(pages[0]))
	assert.Equal(t, []string{"c"}, types.RelPaths(pages[1]))

	for n := 1; n <= 9; n++ {
		assert.Len(t, Pages(mk(n)), types.PageCount(n))
	}
}

func TestUnitConversion(t *testing.T) {
	assert.InDelta(t, 25.4, pixelsToMM(72, 72), 1e-9)
	assert.Equal(t, 300, mmToPixels(25.4, 300))
	assert.Equal(t, 4, mmToPixels(1, 100))
}
