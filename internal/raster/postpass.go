package raster

import (
	"nds3dsoft/internal/rconfig"
	"nds3dsoft/internal/vram"
)

// RenderScanline dispatches every live polygon's contribution to scanline
// y: shadow-mask polygons go through RenderShadowMaskScanline, everything
// else through RenderPolygonScanline. A polygon participates in scanline y
// when y falls within its [YTop, YBottom) span, or is exactly YTop for a
// zero-height (flat) polygon.
func RenderScanline(buf *Buffers, regs *rconfig.Registers, vr *vram.Flat, polygons []*rendererPolygon, y int32) {
	for _, rp := range polygons {
		p := rp.Poly
		if y >= p.YTop && (y < p.YBottom || (y == p.YTop && p.YBottom == p.YTop)) {
			if p.IsShadowMask {
				RenderShadowMaskScanline(buf, regs, rp, y)
			} else {
				RenderPolygonScanline(buf, regs, vr, rp, y)
			}
		}
	}
}

// CalculateFogDensity computes the 0..128 fog density for the pixel at
// pixeladdr from its depth value, the configured fog offset/shift, and
// the 32+1-entry fog density table, linearly interpolating between the two
// table entries the depth value falls between.
func CalculateFogDensity(buf *Buffers, regs *rconfig.Registers, pixeladdr uint32) uint32 {
	z := buf.Depth[pixeladdr]

	var densityid, densityfrac uint32
	if z < regs.FogOffset {
		densityid, densityfrac = 0, 0
	} else {
		z -= regs.FogOffset
		z = (z >> 2) << regs.FogShift

		densityid = z >> 17
		if densityid >= 32 {
			densityid = 32
			densityfrac = 0
		} else {
			densityfrac = z & 0x1FFFF
		}
	}

	density := ((regs.FogDensityTable[densityid] * (0x20000 - densityfrac)) +
		(regs.FogDensityTable[densityid+1] * densityfrac)) >> 17
	if density >= 127 {
		density = 128
	}
	return density
}

// ScanlineFinalPass runs the three post-passes over scanline y: edge
// marking, fog, and antialiasing composite. Each is independently gated by
// a display-control bit. Edge marking and antialiasing only ever touch the
// topmost pixel layer (plus, for AA, the second layer it blends against);
// fog touches both layers when the second is covered. Callers must invoke
// this one scanline behind the geometry pass (see RenderPolygons) since
// edge marking reads the rows immediately above and below.
func ScanlineFinalPass(buf *Buffers, regs *rconfig.Registers, y int32) {
	if regs.DispCnt&rconfig.DispEdgeMark != 0 {
		for x := int32(0); x < visibleWidth; x++ {
			pixeladdr := pixelAddr(y, x)

			attr := buf.Attr[pixeladdr]
			if attr&0xF == 0 {
				continue
			}

			polyid := attr >> 24
			z := buf.Depth[pixeladdr]

			if (polyid != buf.Attr[pixeladdr-1]>>24 && z < buf.Depth[pixeladdr-1]) ||
				(polyid != buf.Attr[pixeladdr+1]>>24 && z < buf.Depth[pixeladdr+1]) ||
				(polyid != buf.Attr[pixeladdr-ScanlineWidth]>>24 && z < buf.Depth[pixeladdr-ScanlineWidth]) ||
				(polyid != buf.Attr[pixeladdr+ScanlineWidth]>>24 && z < buf.Depth[pixeladdr+ScanlineWidth]) {

				edgecolor := uint32(regs.EdgeTable[polyid>>3])
				edgeR := expand6(edgecolor)
				edgeG := expand6(edgecolor >> 5)
				edgeB := expand6(edgecolor >> 10)

				buf.Color[pixeladdr] = edgeR | (edgeG << 8) | (edgeB << 16) | (buf.Color[pixeladdr] & 0xFF000000)
				buf.Attr[pixeladdr] = (buf.Attr[pixeladdr] & 0xFFFFE0FF) | 0x00001000
			}
		}
	}

	if regs.DispCnt&rconfig.DispFogEnable != 0 {
		fogcolor := regs.DispCnt&rconfig.DispFogOnlyAlpha == 0

		fogR := expand6(regs.FogColor)
		fogG := expand6(regs.FogColor >> 5)
		fogB := expand6(regs.FogColor >> 10)
		fogA := (regs.FogColor >> 16) & 0x1F

		applyFog := func(pixeladdr uint32) bool {
			attr := buf.Attr[pixeladdr]
			if attr&(1<<15) == 0 {
				return false
			}

			density := CalculateFogDensity(buf, regs, pixeladdr)

			srccolor := buf.Color[pixeladdr]
			srcR := srccolor & 0x3F
			srcG := (srccolor >> 8) & 0x3F
			srcB := (srccolor >> 16) & 0x3F
			srcA := (srccolor >> 24) & 0x1F

			if fogcolor {
				srcR = ((fogR * density) + (srcR * (128 - density))) >> 7
				srcG = ((fogG * density) + (srcG * (128 - density))) >> 7
				srcB = ((fogB * density) + (srcB * (128 - density))) >> 7
			}
			srcA = ((fogA * density) + (srcA * (128 - density))) >> 7

			buf.Color[pixeladdr] = srcR | (srcG << 8) | (srcB << 16) | (srcA << 24)
			return true
		}

		for x := int32(0); x < visibleWidth; x++ {
			pixeladdr := pixelAddr(y, x)
			if !applyFog(pixeladdr) {
				continue
			}
			if buf.Attr[pixeladdr]&0x3 == 0 {
				continue
			}
			applyFog(pixeladdr + BufferSize)
		}
	}

	if regs.DispCnt&rconfig.DispAntialias != 0 {
		for x := int32(0); x < visibleWidth; x++ {
			pixeladdr := pixelAddr(y, x)

			attr := buf.Attr[pixeladdr]
			if attr&0x3 == 0 {
				continue
			}

			coverage := (attr >> 8) & 0x1F
			if coverage == 0x1F {
				continue
			}

			if coverage == 0 {
				buf.Color[pixeladdr] = buf.Color[pixeladdr+BufferSize]
				continue
			}

			topcolor := buf.Color[pixeladdr]
			topR := topcolor & 0x3F
			topG := (topcolor >> 8) & 0x3F
			topB := (topcolor >> 16) & 0x3F
			topA := (topcolor >> 24) & 0x1F

			botcolor := buf.Color[pixeladdr+BufferSize]
			botR := botcolor & 0x3F
			botG := (botcolor >> 8) & 0x3F
			botB := (botcolor >> 16) & 0x3F
			botA := (botcolor >> 24) & 0x1F

			coverage++

			if botA > 0 {
				topR = ((topR * coverage) + (botR * (32 - coverage))) >> 5
				topG = ((topG * coverage) + (botG * (32 - coverage))) >> 5
				topB = ((topB * coverage) + (botB * (32 - coverage))) >> 5
			}
			topA = ((topA * coverage) + (botA * (32 - coverage))) >> 5

			buf.Color[pixeladdr] = topR | (topG << 8) | (topB << 16) | (topA << 24)
		}
	}
}
