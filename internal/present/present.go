// Package present converts a rendered frame's packed 6-6-6-5 scanlines into
// a host image and encodes it as WebP. This stands in for the out-of-scope
// display compositor — the rasterizer core's only contract with the
// outside world is GetLine; what the host does with those scanlines is
// not the core's concern.
package present

import (
	"fmt"
	"image"
	"io"

	"golang.org/x/image/draw"

	"github.com/HugoSmits86/nativewebp"
)

// ToNRGBA converts width×height rows of packed 6-6-6-5 pixels (as returned
// by Renderer.GetLine, one call per row) into an *image.NRGBA, widening
// each 6-bit channel to 8 bits and treating the 5-bit alpha as fully
// opaque output (host displays don't composite against the DS's own
// alpha plane).
func ToNRGBA(rows [][]uint32, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height && y < len(rows); y++ {
		row := rows[y]
		for x := 0; x < width && x < len(row); x++ {
			px := row[x]
			r := widen6(px & 0x3F)
			g := widen6((px >> 8) & 0x3F)
			b := widen6((px >> 16) & 0x3F)

			i := dst.PixOffset(x, y)
			dst.Pix[i] = r
			dst.Pix[i+1] = g
			dst.Pix[i+2] = b
			dst.Pix[i+3] = 255
		}
	}
	return dst
}

// widen6 scales a 6-bit (0..63) channel to 8 bits (0..255).
func widen6(c uint32) uint8 {
	return uint8((c*255 + 31) / 63)
}

// Upscale resizes img to width×height using Catmull-Rom resampling, for
// visibility when the native 256×192 output is too small to inspect.
func Upscale(img *image.NRGBA, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// EncodeWebP writes img to w as a lossless WebP frame.
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("present: webp encode: %w", err)
	}
	return nil
}
