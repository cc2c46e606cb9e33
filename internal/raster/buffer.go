package raster

import (
	"nds3dsoft/internal/rconfig"
	"nds3dsoft/internal/vram"
)

// Buffer geometry. The usable image is inset by a 1-pixel border on every
// side, which simplifies the edge-marking post-pass's neighbor reads: it
// never needs to special-case column 0, column 255, row 0, or row 191.
const (
	ScanlineWidth     = 258
	NumScanlines      = 194
	BufferSize        = ScanlineWidth * NumScanlines
	FirstPixelOffset  = ScanlineWidth + 1
	visibleWidth      = 256
	visibleHeight     = 192
)

// Buffers holds the three pixel planes and the shadow stencil. Each plane
// is doubled in depth: addresses [0, BufferSize) hold the topmost pixel
// per column, [BufferSize, 2*BufferSize) hold the second-topmost, used for
// antialiasing and shadow-volume support.
type Buffers struct {
	Color [2 * BufferSize]uint32
	Depth [2 * BufferSize]uint32
	Attr  [2 * BufferSize]uint32

	Stencil [256 * 2]byte

	prevIsShadowMask bool
}

// Reset zeros the color, depth and attribute planes; the stencil is left
// as it is. It is called only on device reset, not between frames.
func (b *Buffers) Reset() {
	for i := range b.Color {
		b.Color[i] = 0
		b.Depth[i] = 0
		b.Attr[i] = 0
	}
	b.prevIsShadowMask = false
}

// pixelAddr computes the flat buffer offset for screen column x, row y.
func pixelAddr(y, x int32) uint32 {
	return uint32(FirstPixelOffset) + uint32(y)*uint32(ScanlineWidth) + uint32(x)
}

// Clear resets the usable region to the configured clear color/depth/attr,
// or to a VRAM-backed 256x192 clear image when the rear-image clear bit is
// set, and fills the 1-pixel border with clear depth and the clear
// polygon id so edge marking sees a consistent border.
func (b *Buffers) Clear(regs *rconfig.Registers, vr *vram.Flat) {
	clearz := ((regs.ClearAttr2 & 0x7FFF) * 0x200) + 0x1FF
	polyid := regs.ClearAttr1 & 0x3F000000

	for x := 0; x < ScanlineWidth; x++ {
		b.Color[x] = 0
		b.Depth[x] = clearz
		b.Attr[x] = polyid
	}

	for x := ScanlineWidth; x < ScanlineWidth*193; x += ScanlineWidth {
		b.Color[x] = 0
		b.Depth[x] = clearz
		b.Attr[x] = polyid
		b.Color[x+257] = 0
		b.Depth[x+257] = clearz
		b.Attr[x+257] = polyid
	}

	for x := ScanlineWidth * 193; x < ScanlineWidth*194; x++ {
		b.Color[x] = 0
		b.Depth[x] = clearz
		b.Attr[x] = polyid
	}

	if regs.DispCnt&rconfig.DispRearImage != 0 {
		xoff := uint8((regs.ClearAttr2 >> 16) & 0xFF)
		yoff := uint8((regs.ClearAttr2 >> 24) & 0xFF)

		for y := 0; y < ScanlineWidth*192; y += ScanlineWidth {
			xo := xoff
			for x := 0; x < 256; x++ {
				val2 := vr.ReadTextureU16(0x40000 + uint32(yoff)<<9 + uint32(xo)<<1)
				val3 := vr.ReadTextureU16(0x60000 + uint32(yoff)<<9 + uint32(xo)<<1)

				r := expand6(uint32(val2))
				g := expand6(uint32(val2) >> 5)
				bch := expand6(uint32(val2) >> 10)
				var a uint32
				if val2&0x8000 != 0 {
					a = 0x1F000000
				}
				color := r | (g << 8) | (bch << 16) | a

				z := (uint32(val3&0x7FFF) * 0x200) + 0x1FF

				addr := uint32(FirstPixelOffset) + uint32(y) + uint32(x)
				b.Color[addr] = color
				b.Depth[addr] = z
				b.Attr[addr] = polyid | uint32(val3&0x8000)

				xo++
			}
			yoff++
		}
		return
	}

	r := expand6(regs.ClearAttr1)
	g := expand6(regs.ClearAttr1 >> 5)
	bch := expand6(regs.ClearAttr1 >> 10)
	a := (regs.ClearAttr1 >> 16) & 0x1F
	color := r | (g << 8) | (bch << 16) | (a << 24)

	polyid |= regs.ClearAttr1 & 0x8000

	for y := 0; y < ScanlineWidth*192; y += ScanlineWidth {
		for x := 0; x < 256; x++ {
			addr := uint32(FirstPixelOffset) + uint32(y) + uint32(x)
			b.Color[addr] = color
			b.Depth[addr] = clearz
			b.Attr[addr] = polyid
		}
	}
}
