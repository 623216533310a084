// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"

	// Decoders for every extension discovery accepts.
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rwcarlsen/goexif/exif"
	xdraw "golang.org/x/image/draw"
)

const (
	imageTypeJPEG = "JPG"
	imageTypePNG  = "PNG"

	jpegQuality = 90
)

// prepared is an image ready to embed: encoded bytes in a format the PDF
// writer accepts, plus the displayed size in pixels used for layout.
type prepared struct {
	data      []byte
	imageType string
	width     int
	height    int
}

// prepare reads the image at path and turns it into something the PDF writer
// can embed. JPEGs are passed through untouched when they need neither
// rotation nor downsampling. Everything else is decoded, rotated upright
// according to EXIF orientation, downsampled to the configured DPI for slot,
// and re-encoded.
func (c *Composer) prepare(path string, slot Rect) (*prepared, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ImageError{Path: path, Stage: StageOpen, Err: err}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageError{Path: path, Stage: StageDecode, Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &ImageError{Path: path, Stage: StageDecode, Err: fmt.Errorf("empty image %dx%d", cfg.Width, cfg.Height)}
	}

	orientation := 1
	if format == "jpeg" {
		orientation = exifOrientation(data)
	}
	w, h := cfg.Width, cfg.Height
	if orientation >= 5 {
		w, h = h, w
	}

	tw, th := c.targetPixels(slot, w, h)
	resize := tw < w || th < h

	if format == "jpeg" && orientation == 1 && !resize && jpegEmbeddable(cfg) {
		return &prepared{data: data, imageType: imageTypeJPEG, width: w, height: h}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageError{Path: path, Stage: StageDecode, Err: err}
	}
	out := orient(toNRGBA(img), orientation)
	if resize {
		out = downsample(out, tw, th)
	}

	var buf bytes.Buffer
	imageType := imageTypePNG
	if format == "jpeg" {
		imageType = imageTypeJPEG
		err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&buf, out)
	}
	if err != nil {
		return nil, &ImageError{Path: path, Stage: StageEncode, Err: err}
	}
	return &prepared{data: buf.Bytes(), imageType: imageType, width: w, height: h}, nil
}

// targetPixels returns the largest pixel size worth embedding for an image
// of w×h pixels placed in slot. It returns w, h unchanged when downsampling
// is disabled.
func (c *Composer) targetPixels(slot Rect, w, h int) (int, int) {
	if c.layout.MaxDPI <= 0 {
		return w, h
	}
	r := Fit(slot, pixelsToMM(w, c.layout.NativeDPI), pixelsToMM(h, c.layout.NativeDPI), c.layout.Upscale)
	tw := mmToPixels(r.W, c.layout.MaxDPI)
	th := mmToPixels(r.H, c.layout.MaxDPI)
	if tw >= w || th >= h {
		return w, h
	}
	return max(tw, 1), max(th, 1)
}

// jpegEmbeddable reports whether the PDF writer accepts the JPEG as is.
// Grey and YCbCr JPEGs embed directly. CMYK is re-encoded.
func jpegEmbeddable(cfg image.Config) bool {
	return cfg.ColorModel == color.GrayModel || cfg.ColorModel == color.YCbCrModel
}

// exifOrientation returns the EXIF orientation tag (1..8), or 1 when the
// file carries none or it cannot be read.
func exifOrientation(data []byte) int {
	// Non-critical decode errors still return usable tags.
	x, _ := exif.Decode(bytes.NewReader(data))
	if x == nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// orient returns src transformed so that EXIF orientation o displays upright.
func orient(src *image.NRGBA, o int) *image.NRGBA {
	if o <= 1 || o > 8 {
		return src
	}
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	dw, dh := sw, sh
	if o >= 5 {
		dw, dh = sh, sw
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			var sx, sy int
			switch o {
			case 2:
				sx, sy = sw-1-x, y
			case 3:
				sx, sy = sw-1-x, sh-1-y
			case 4:
				sx, sy = x, sh-1-y
			case 5:
				sx, sy = y, x
			case 6:
				sx, sy = y, sh-1-x
			case 7:
				sx, sy = sw-1-y, sh-1-x
			case 8:
				sx, sy = sw-1-y, x
			}
			si := src.PixOffset(sx, sy)
			di := dst.PixOffset(x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

func downsample(src *image.NRGBA, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
