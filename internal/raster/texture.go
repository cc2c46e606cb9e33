package raster

import "nds3dsoft/internal/vram"

// texFormat values, bits 26-28 of a texture parameter word.
const (
	texFmtNone       = 0
	texFmtA3I5       = 1
	texFmt4Color     = 2
	texFmt16Color    = 3
	texFmt256Color   = 4
	texFmtCompressed = 5
	texFmtA5I3       = 6
	texFmtDirect     = 7
)

// TextureFormat returns the texture format field (bits 26-28) of a texture
// parameter word.
func TextureFormat(texparam uint32) uint32 { return (texparam >> 26) & 0x7 }

// SampleTexture decodes one texel from VRAM given a texture parameter word
// and palette base, at texture-space coordinates s,t (1/16th-texel fixed
// point). It returns the texel's 15-bit packed RGB and 5-bit alpha.
func SampleTexture(vr *vram.Flat, texparam, texpal uint32, s, t int16) (color uint16, alpha uint8) {
	vramaddr := (texparam & 0xFFFF) << 3

	width := int32(8) << ((texparam >> 20) & 0x7)
	height := int32(8) << ((texparam >> 23) & 0x7)

	sc := int32(s) >> 4
	tc := int32(t) >> 4

	if texparam&(1<<16) != 0 {
		if texparam&(1<<18) != 0 {
			if sc&width != 0 {
				sc = (width - 1) - (sc & (width - 1))
			} else {
				sc = sc & (width - 1)
			}
		} else {
			sc &= width - 1
		}
	} else {
		if sc < 0 {
			sc = 0
		} else if sc >= width {
			sc = width - 1
		}
	}

	if texparam&(1<<17) != 0 {
		if texparam&(1<<19) != 0 {
			if tc&height != 0 {
				tc = (height - 1) - (tc & (height - 1))
			} else {
				tc = tc & (height - 1)
			}
		} else {
			tc &= height - 1
		}
	} else {
		if tc < 0 {
			tc = 0
		} else if tc >= height {
			tc = height - 1
		}
	}

	var alpha0 uint8
	if texparam&(1<<29) == 0 {
		alpha0 = 31
	}

	switch TextureFormat(texparam) {
	case texFmtA3I5:
		addr := vramaddr + uint32((tc*width)+sc)
		pixel := vr.ReadTextureU8(addr)

		pal := texpal << 4
		color = vr.ReadPaletteU16(pal + uint32(pixel&0x1F)<<1)
		alpha = ((pixel >> 3) & 0x1C) + (pixel >> 6)

	case texFmt4Color:
		addr := vramaddr + uint32(((tc*width)+sc)>>2)
		pixel := vr.ReadTextureU8(addr)
		pixel >>= uint((sc & 0x3) << 1)
		pixel &= 0x3

		pal := texpal << 3
		color = vr.ReadPaletteU16(pal + uint32(pixel)<<1)
		if pixel == 0 {
			alpha = alpha0
		} else {
			alpha = 31
		}

	case texFmt16Color:
		addr := vramaddr + uint32(((tc*width)+sc)>>1)
		pixel := vr.ReadTextureU8(addr)
		if sc&0x1 != 0 {
			pixel >>= 4
		} else {
			pixel &= 0xF
		}

		pal := texpal << 4
		color = vr.ReadPaletteU16(pal + uint32(pixel)<<1)
		if pixel == 0 {
			alpha = alpha0
		} else {
			alpha = 31
		}

	case texFmt256Color:
		addr := vramaddr + uint32((tc*width)+sc)
		pixel := vr.ReadTextureU8(addr)

		pal := texpal << 4
		color = vr.ReadPaletteU16(pal + uint32(pixel)<<1)
		if pixel == 0 {
			alpha = alpha0
		} else {
			alpha = 31
		}

	case texFmtCompressed:
		color, alpha = sampleCompressed(vr, vramaddr, texpal, width, sc, tc)

	case texFmtA5I3:
		addr := vramaddr + uint32((tc*width)+sc)
		pixel := vr.ReadTextureU8(addr)

		pal := texpal << 4
		color = vr.ReadPaletteU16(pal + uint32(pixel&0x7)<<1)
		alpha = pixel >> 3

	case texFmtDirect:
		addr := vramaddr + uint32(((tc*width)+sc)<<1)
		color = vr.ReadTextureU16(addr)
		if color&0x8000 != 0 {
			alpha = 31
		}
	}

	return color, alpha
}

// sampleCompressed decodes a texel from the 4x4 block-compressed format.
// Each 4x4 tile packs 2-bit indices into 4 bytes in the texture slot; a
// palette header for the tile lives in a second, sibling VRAM slot at
// 0x20000 + ((addr & 0x1FFFC) >> 1), plus 0x10000 when addr >= 0x40000.
func sampleCompressed(vr *vram.Flat, vramaddrBase uint32, texpal uint32, width, sc, tc int32) (color uint16, alpha uint8) {
	vramaddr := vramaddrBase
	vramaddr += uint32((tc&0x3FC)*(width>>2)) + uint32(sc&0x3FC)
	vramaddr += uint32(tc & 0x3)

	slot1addr := uint32(0x20000) + ((vramaddr & 0x1FFFC) >> 1)
	if vramaddr >= 0x40000 {
		slot1addr += 0x10000
	}

	val := vr.ReadTextureU8(vramaddr)
	val >>= uint(2 * (sc & 0x3))

	palinfo := vr.ReadTextureU16(slot1addr)
	paloffset := uint32(palinfo&0x3FFF) << 2
	pal := texpal << 4

	switch val & 0x3 {
	case 0:
		color = vr.ReadPaletteU16(pal + paloffset)
		alpha = 31

	case 1:
		color = vr.ReadPaletteU16(pal + paloffset + 2)
		alpha = 31

	case 2:
		switch palinfo >> 14 {
		case 1:
			color = averageColor(
				vr.ReadPaletteU16(pal+paloffset),
				vr.ReadPaletteU16(pal+paloffset+2), 1, 1, 1)
		case 3:
			color = averageColor(
				vr.ReadPaletteU16(pal+paloffset),
				vr.ReadPaletteU16(pal+paloffset+2), 5, 3, 3)
		default:
			color = vr.ReadPaletteU16(pal + paloffset + 4)
		}
		alpha = 31

	case 3:
		switch palinfo >> 14 {
		case 2:
			color = vr.ReadPaletteU16(pal + paloffset + 6)
			alpha = 31
		case 3:
			color = averageColor(
				vr.ReadPaletteU16(pal+paloffset),
				vr.ReadPaletteU16(pal+paloffset+2), 3, 5, 3)
			alpha = 31
		default:
			color = 0
			alpha = 0
		}
	}

	return color, alpha
}

// averageColor blends two packed 5-5-5 colors channel-wise as
// (c0*w0 + c1*w1) >> shift, masking each channel to prevent cross-channel
// carry. weight1==weight0 (both 1) is the plain average case.
func averageColor(c0, c1 uint16, w0, w1, shift uint32) uint16 {
	r0 := uint32(c0) & 0x001F
	g0 := uint32(c0) & 0x03E0
	b0 := uint32(c0) & 0x7C00
	r1 := uint32(c1) & 0x001F
	g1 := uint32(c1) & 0x03E0
	b1 := uint32(c1) & 0x7C00

	r := (r0*w0 + r1*w1) >> shift
	g := ((g0*w0 + g1*w1) >> shift) & 0x03E0
	b := ((b0*w0 + b1*w1) >> shift) & 0x7C00

	return uint16(r | g | b)
}
