package raster

import (
	"nds3dsoft/internal/fixed"
	"nds3dsoft/internal/rconfig"
	"nds3dsoft/internal/vram"
)

// Blend modes, poly attr bits 4-5.
const (
	blendModulate = 0
	blendDecal    = 1
	blendToon     = 2
	blendShadow   = 3
)

func blendMode(attr uint32) uint32 { return (attr >> 4) & 0x3 }
func polyAlpha(attr uint32) uint32 { return (attr >> 16) & 0x1F }
func isWireframe(attr uint32) bool { return polyAlpha(attr) == 0 }

// expand6 widens a 5-bit (0..31) channel to a 6-bit (0..63) channel.
func expand6(c uint32) uint32 { return fixed.Expand5To6(c) }

// RenderPixel evaluates the per-pixel pipeline: toon/highlight vertex-color
// preprocessing, texture fetch and combine (decal/modulate), and the
// highlight-mode additive pass. Wireframe polygons always emit alpha 31.
// Returns a packed color with R bits 0-5, G 8-13, B 16-21, A 24-28.
func RenderPixel(regs *rconfig.Registers, vr *vram.Flat, polygon *Polygon, vrC, vgC, vbC uint32, s, t int16) uint32 {
	blend := blendMode(polygon.Attr)
	pAlpha := polyAlpha(polygon.Attr)
	wireframe := pAlpha == 0

	if blend == blendToon {
		if regs.DispCnt&rconfig.DispHighlight != 0 {
			// Highlight mode: all vertex components are set to the red
			// component; the toon color is added to the final color.
			vgC = vrC
			vbC = vrC
		} else {
			tooncolor := uint32(regs.ToonTable[vrC>>1])
			vrC = expand6(tooncolor)
			vgC = expand6(tooncolor >> 5)
			vbC = expand6(tooncolor >> 10)
		}
	}

	var r, g, b, a uint32

	if regs.DispCnt&rconfig.DispTextureEnable != 0 && TextureFormat(polygon.TexParam) != texFmtNone {
		tcolor, talpha16 := SampleTexture(vr, polygon.TexParam, polygon.TexPalette, s, t)
		talpha := uint32(talpha16)
		tcolorW := uint32(tcolor)

		tr := expand6(tcolorW)
		tg := expand6(tcolorW >> 5)
		tb := expand6(tcolorW >> 10)

		if blend&0x1 != 0 {
			// Decal.
			switch talpha {
			case 0:
				r, g, b = vrC, vgC, vbC
			case 31:
				r, g, b = tr, tg, tb
			default:
				r = ((tr * talpha) + (vrC * (31 - talpha))) >> 5
				g = ((tg * talpha) + (vgC * (31 - talpha))) >> 5
				b = ((tb * talpha) + (vbC * (31 - talpha))) >> 5
			}
			a = pAlpha
		} else {
			// Modulate.
			r = ((tr+1)*(vrC+1) - 1) >> 6
			g = ((tg+1)*(vgC+1) - 1) >> 6
			b = ((tb+1)*(vbC+1) - 1) >> 6
			a = ((talpha+1)*(pAlpha+1) - 1) >> 5
		}
	} else {
		r, g, b, a = vrC, vgC, vbC, pAlpha
	}

	if blend == blendToon && regs.DispCnt&rconfig.DispHighlight != 0 {
		tooncolor := uint32(regs.ToonTable[vrC>>1])
		hr := expand6(tooncolor)
		hg := expand6(tooncolor >> 5)
		hb := expand6(tooncolor >> 10)

		r += hr
		g += hg
		b += hb

		if r > 63 {
			r = 63
		}
		if g > 63 {
			g = 63
		}
		if b > 63 {
			b = 63
		}
	}

	if wireframe {
		a = 31
	}

	return r | (g << 8) | (b << 16) | (a << 24)
}

// AlphaBlend blends a source color onto a destination color using alpha.
// When alpha blending is disabled (display-control bit 3 clear) the
// source simply overwrites the destination color channels; alpha tracks
// the maximum of source and destination regardless.
func AlphaBlend(regs *rconfig.Registers, srccolor, dstcolor, alpha uint32) uint32 {
	dstalpha := dstcolor >> 24
	if dstalpha == 0 {
		return srccolor
	}

	srcR := srccolor & 0x3F
	srcG := (srccolor >> 8) & 0x3F
	srcB := (srccolor >> 16) & 0x3F

	if regs.DispCnt&rconfig.DispAlphaBlend != 0 {
		dstR := dstcolor & 0x3F
		dstG := (dstcolor >> 8) & 0x3F
		dstB := (dstcolor >> 16) & 0x3F

		alpha++
		srcR = ((srcR * alpha) + (dstR * (32 - alpha))) >> 5
		srcG = ((srcG * alpha) + (dstG * (32 - alpha))) >> 5
		srcB = ((srcB * alpha) + (dstB * (32 - alpha))) >> 5
		alpha--
	}

	if alpha > dstalpha {
		dstalpha = alpha
	}

	return srcR | (srcG << 8) | (srcB << 16) | (dstalpha << 24)
}

// depthTest is the per-polygon depth predicate, resolved once outside the
// per-pixel loop to avoid an indirect call in the hot path for every pixel.
type depthTest func(dstz, z int32, dstattr uint32) bool

const (
	equalZTolerance = 0x200
	equalWTolerance = 0xFF
)

func depthTestEqualZ(dstz, z int32, dstattr uint32) bool {
	diff := dstz - z
	return uint32(diff+equalZTolerance) <= 2*equalZTolerance
}

func depthTestEqualW(dstz, z int32, dstattr uint32) bool {
	diff := dstz - z
	return uint32(diff+equalWTolerance) <= 2*equalWTolerance
}

func depthTestLessThan(dstz, z int32, dstattr uint32) bool {
	return z < dstz
}

func depthTestLessThanFrontFacing(dstz, z int32, dstattr uint32) bool {
	if dstattr&0x00400010 == 0x00000010 {
		// Destination is opaque and back-facing.
		return z <= dstz
	}
	return z < dstz
}

// resolveDepthTest picks the depth predicate for a polygon, matching the
// rule that "equal" mode is used when poly attr bit 14 is set, otherwise
// "less than" with a front-facing variant that allows "<=" against an
// existing opaque, back-facing pixel.
func resolveDepthTest(polygon *Polygon) depthTest {
	if polygon.Attr&(1<<14) != 0 {
		if polygon.WBuffer {
			return depthTestEqualW
		}
		return depthTestEqualZ
	}
	if polygon.FacingView {
		return depthTestLessThanFrontFacing
	}
	return depthTestLessThan
}
