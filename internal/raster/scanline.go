package raster

import (
	"nds3dsoft/internal/rconfig"
	"nds3dsoft/internal/vram"
)

// edgeSetup is the state shared by RenderPolygonScanline and
// RenderShadowMaskScanline once a scanline's left/right slopes have been
// stepped into position: where the span starts and ends, its interpolated
// W/Z endpoints, which edges should be filled, and the edge-length/AA
// coverage descriptors for each side. The two scanline procedures are
// ~70% identical; this is the shared 70%, factored into one helper.
type edgeSetup struct {
	xstart, xend int32
	wl, wr       int32
	zl, zr       int32

	lFilledge, rFilledge bool
	lEdgeLen, rEdgeLen   int32
	lEdgeCov, rEdgeCov   int32

	vlcur, vlnext, vrcur, vrnext *Vertex
	interpStart, interpEnd       *Interpolator
}

func prepareEdges(rp *rendererPolygon, forceFill bool) edgeSetup {
	p := rp.Poly

	var es edgeSetup
	es.xstart = rp.XL
	es.xend = rp.XR

	if forceFill {
		es.lFilledge, es.rFilledge = true, true
	} else {
		es.lFilledge = rp.SlopeL.Negative || !rp.SlopeL.XMajor
		es.rFilledge = (!rp.SlopeR.Negative && rp.SlopeR.XMajor) || rp.SlopeR.Increment == 0
	}

	es.wl = rp.SlopeL.Interp.Interpolate(p.FinalW[rp.CurVL], p.FinalW[rp.NextVL])
	es.wr = rp.SlopeR.Interp.Interpolate(p.FinalW[rp.CurVR], p.FinalW[rp.NextVR])

	es.zl = rp.SlopeL.Interp.InterpolateZ(p.FinalZ[rp.CurVL], p.FinalZ[rp.NextVL], p.WBuffer)
	es.zr = rp.SlopeR.Interp.InterpolateZ(p.FinalZ[rp.CurVR], p.FinalZ[rp.NextVR], p.WBuffer)

	// If the left and right edges are swapped, render backwards: this
	// models a hardware quirk around X-major edge length calculation with
	// swapped edges, treated as Y-major on both sides.
	if es.xstart > es.xend {
		es.vlcur = p.Vertices[rp.CurVR]
		es.vlnext = p.Vertices[rp.NextVR]
		es.vrcur = p.Vertices[rp.CurVL]
		es.vrnext = p.Vertices[rp.NextVL]

		es.interpStart = &rp.SlopeR.Interp
		es.interpEnd = &rp.SlopeL.Interp

		es.lEdgeLen, es.lEdgeCov = rp.SlopeR.EdgeParamsYMajor()
		es.rEdgeLen, es.rEdgeCov = rp.SlopeL.EdgeParamsYMajor()

		es.xstart, es.xend = es.xend, es.xstart
		es.wl, es.wr = es.wr, es.wl
		es.zl, es.zr = es.zr, es.zl
		es.lFilledge, es.rFilledge = es.rFilledge, es.lFilledge
	} else {
		es.vlcur = p.Vertices[rp.CurVL]
		es.vlnext = p.Vertices[rp.NextVL]
		es.vrcur = p.Vertices[rp.CurVR]
		es.vrnext = p.Vertices[rp.NextVR]

		es.interpStart = &rp.SlopeL.Interp
		es.interpEnd = &rp.SlopeR.Interp

		es.lEdgeLen, es.lEdgeCov = rp.SlopeL.EdgeParams()
		es.rEdgeLen, es.rEdgeCov = rp.SlopeR.EdgeParams()
	}

	return es
}

func yEdgeFlags(y, ytop, ybottom int32) uint32 {
	switch {
	case y == ytop:
		return 0x4
	case y == ybottom-1:
		return 0x8
	default:
		return 0
	}
}

// PlotTranslucentPixel blends a translucent color onto the pixel at
// pixeladdr, updating its attribute word. updateDepth mirrors polygon attr
// bit 11 ("update depth on translucent"); when clear the depth buffer is
// left untouched.
func PlotTranslucentPixel(buf *Buffers, regs *rconfig.Registers, pixeladdr uint32, color uint32, z int32, updateDepth bool, polyattr uint32, shadow bool) {
	dstattr := buf.Attr[pixeladdr]
	attr := (polyattr & 0xE0F0) | ((polyattr >> 8) & 0xFF0000) | (1 << 22) | (dstattr & 0xFF001F0F)

	if shadow {
		// For shadows, opaque pixels are also checked.
		if dstattr&(1<<22) != 0 {
			if dstattr&0x007F0000 == attr&0x007F0000 {
				return
			}
		} else {
			if dstattr&0x3F000000 == polyattr&0x3F000000 {
				return
			}
		}
	} else {
		// Skip if translucent polygon IDs are equal.
		if dstattr&0x007F0000 == attr&0x007F0000 {
			return
		}
	}

	if dstattr&(1<<15) == 0 {
		attr &^= 1 << 15
	}

	color = AlphaBlend(regs, color, buf.Color[pixeladdr], color>>24)

	if updateDepth {
		buf.Depth[pixeladdr] = uint32(z)
	}

	buf.Color[pixeladdr] = color
	buf.Attr[pixeladdr] = attr
}

// RenderPolygonScanline renders one polygon's contribution to scanline y:
// depth-tests, shades, and plots (or translucently blends) every covered
// column, in three segments (left edge, interior, right edge).
func RenderPolygonScanline(buf *Buffers, regs *rconfig.Registers, vr *vram.Flat, rp *rendererPolygon, y int32) {
	p := rp.Poly

	polyattr := p.Attr & 0x3F008000
	if !p.FacingView {
		polyattr |= 1 << 4
	}

	wireframe := isWireframe(p.Attr)
	fnDepthTest := resolveDepthTest(p)

	buf.prevIsShadowMask = false

	if p.YTop != p.YBottom {
		if y >= p.Vertices[rp.NextVL].FinalPosition[1] && rp.CurVL != p.VBottom {
			setupPolygonLeftEdge(rp, y)
		}
		if y >= p.Vertices[rp.NextVR].FinalPosition[1] && rp.CurVR != p.VBottom {
			setupPolygonRightEdge(rp, y)
		}
	}

	// Edge-fill rules for opaque pixels: the right edge is filled if its
	// slope is X-major going right-handed, the left edge if it isn't
	// (or is negative); edges with slope 0 are always filled. Edges are
	// always filled when wireframe, antialiasing, or edge-marking are on.
	forceFill := wireframe || regs.DispCnt&(rconfig.DispAntialias|rconfig.DispEdgeMark) != 0
	es := prepareEdges(rp, forceFill)

	rl := es.interpStart.Interpolate(es.vlcur.FinalColor[0], es.vlnext.FinalColor[0])
	gl := es.interpStart.Interpolate(es.vlcur.FinalColor[1], es.vlnext.FinalColor[1])
	bl := es.interpStart.Interpolate(es.vlcur.FinalColor[2], es.vlnext.FinalColor[2])
	sl := es.interpStart.Interpolate(int32(es.vlcur.TexCoords[0]), int32(es.vlnext.TexCoords[0]))
	tl := es.interpStart.Interpolate(int32(es.vlcur.TexCoords[1]), int32(es.vlnext.TexCoords[1]))

	rr := es.interpEnd.Interpolate(es.vrcur.FinalColor[0], es.vrnext.FinalColor[0])
	gr := es.interpEnd.Interpolate(es.vrcur.FinalColor[1], es.vrnext.FinalColor[1])
	br := es.interpEnd.Interpolate(es.vrcur.FinalColor[2], es.vrnext.FinalColor[2])
	sr := es.interpEnd.Interpolate(int32(es.vrcur.TexCoords[0]), int32(es.vrnext.TexCoords[0]))
	tr := es.interpEnd.Interpolate(int32(es.vrcur.TexCoords[1]), int32(es.vrnext.TexCoords[1]))

	yedge := yEdgeFlags(y, p.YTop, p.YBottom)

	x := es.xstart
	var interpX Interpolator
	interpX.dir = DirX
	interpX.Setup(es.xstart, es.xend+1, es.wl, es.wr)

	if x < 0 {
		x = 0
	}

	updateDepthOnTranslucent := p.Attr&(1<<11) != 0
	aaEnabled := regs.DispCnt&rconfig.DispAntialias != 0

	shade := func(addr uint32) (color uint32, z int32, dstattr uint32, ok bool) {
		dstattr = buf.Attr[addr]

		if p.IsShadow {
			stencil := buf.Stencil[256*(y&0x1)+x]
			if stencil == 0 {
				return 0, 0, 0, false
			}
			if stencil&0x1 == 0 {
				addr += BufferSize
			}
			if stencil&0x2 == 0 {
				dstattr &^= 0x3
			}
		}

		interpX.SetX(x)
		z = interpX.InterpolateZ(es.zl, es.zr, p.WBuffer)

		if !fnDepthTest(int32(buf.Depth[addr]), z, dstattr) {
			if dstattr&0x3 == 0 {
				return 0, 0, 0, false
			}
			addr += BufferSize
			dstattr = buf.Attr[addr]
			if !fnDepthTest(int32(buf.Depth[addr]), z, dstattr) {
				return 0, 0, 0, false
			}
		}

		vrC := uint32(interpX.Interpolate(rl, rr))
		vgC := uint32(interpX.Interpolate(gl, gr))
		vbC := uint32(interpX.Interpolate(bl, br))
		s := int16(interpX.Interpolate(sl, sr))
		t := int16(interpX.Interpolate(tl, tr))

		color = RenderPixel(regs, vr, p, vrC>>3, vgC>>3, vbC>>3, s, t)
		if color>>24 <= regs.AlphaRef {
			return 0, 0, 0, false
		}

		return color, z, dstattr, true
	}

	plotOpaqueOrTranslucent := func(pixeladdr uint32, color uint32, z int32, dstattr uint32, edge uint32, withAA bool, xcov *int32, edgeCov int32, invertCov bool) {
		alpha := color >> 24

		if alpha == 31 {
			attr := polyattr | edge

			if withAA {
				var cov int32
				if edgeCov&(-2147483648) != 0 {
					cov = *xcov >> 5
					if cov > 31 {
						cov = 31
					}
					if invertCov {
						cov = 0x1F - cov
						if cov < 0 {
							cov = 0
						}
					}
					*xcov += edgeCov & 0x3FF
				} else {
					cov = edgeCov
				}
				attr |= uint32(cov) << 8

				if pixeladdr < BufferSize {
					buf.Color[pixeladdr+BufferSize] = buf.Color[pixeladdr]
					buf.Depth[pixeladdr+BufferSize] = buf.Depth[pixeladdr]
					buf.Attr[pixeladdr+BufferSize] = buf.Attr[pixeladdr]
				}
			}

			buf.Depth[pixeladdr] = uint32(z)
			buf.Color[pixeladdr] = color
			buf.Attr[pixeladdr] = attr
			return
		}

		zw := z
		if !updateDepthOnTranslucent {
			zw = 0
		}
		PlotTranslucentPixel(buf, regs, pixeladdr, color, zw, updateDepthOnTranslucent, polyattr, p.IsShadow)
		if dstattr&0x3 != 0 && pixeladdr < BufferSize {
			PlotTranslucentPixel(buf, regs, pixeladdr+BufferSize, color, zw, updateDepthOnTranslucent, polyattr, p.IsShadow)
		}
	}

	// Part 1: left edge.
	edge := yedge | 0x1
	xlimit := es.xstart + es.lEdgeLen
	if xlimit > es.xend+1 {
		xlimit = es.xend + 1
	}
	if xlimit > visibleWidth {
		xlimit = visibleWidth
	}

	xcov := int32(0)
	if es.lEdgeCov&(-2147483648) != 0 {
		xcov = (es.lEdgeCov >> 12) & 0x3FF
		if xcov == 0x3FF {
			xcov = 0
		}
	}

	if !es.lFilledge {
		lim2 := es.xend - es.rEdgeLen + 1
		if lim2 < xlimit {
			x = lim2
		} else {
			x = xlimit
		}
	} else {
		for ; x < xlimit; x++ {
			addr := pixelAddr(y, x)
			color, z, dstattr, ok := shade(addr)
			if !ok {
				continue
			}
			plotOpaqueOrTranslucent(addr, color, z, dstattr, edge, aaEnabled, &xcov, es.lEdgeCov, false)
		}
	}

	// Part 2: polygon interior.
	edge = yedge
	xlimit = es.xend - es.rEdgeLen + 1
	if xlimit > es.xend+1 {
		xlimit = es.xend + 1
	}
	if xlimit > visibleWidth {
		xlimit = visibleWidth
	}

	if wireframe && edge == 0 {
		x = xlimit
	} else {
		for ; x < xlimit; x++ {
			addr := pixelAddr(y, x)
			color, z, dstattr, ok := shade(addr)
			if !ok {
				continue
			}
			zw := z
			if !updateDepthOnTranslucent {
				zw = 0
			}
			if color>>24 == 31 {
				buf.Depth[addr] = uint32(z)
				buf.Color[addr] = color
				buf.Attr[addr] = polyattr | edge
			} else {
				PlotTranslucentPixel(buf, regs, addr, color, zw, updateDepthOnTranslucent, polyattr, p.IsShadow)
				if dstattr&0x3 != 0 && addr < BufferSize {
					PlotTranslucentPixel(buf, regs, addr+BufferSize, color, zw, updateDepthOnTranslucent, polyattr, p.IsShadow)
				}
			}
		}
	}

	// Part 3: right edge.
	edge = yedge | 0x2
	xlimit = es.xend + 1
	if xlimit > visibleWidth {
		xlimit = visibleWidth
	}
	if es.rEdgeCov&(-2147483648) != 0 {
		xcov = (es.rEdgeCov >> 12) & 0x3FF
		if xcov == 0x3FF {
			xcov = 0
		}
	}

	if es.rFilledge {
		for ; x < xlimit; x++ {
			addr := pixelAddr(y, x)
			color, z, dstattr, ok := shade(addr)
			if !ok {
				continue
			}
			plotOpaqueOrTranslucent(addr, color, z, dstattr, edge, aaEnabled, &xcov, es.rEdgeCov, true)
		}
	}

	rp.XL = rp.SlopeL.Step()
	rp.XR = rp.SlopeR.Step()
}

// RenderShadowMaskScanline renders a shadow-mask polygon's contribution to
// scanline y: it writes no pixels, only stencil bits wherever the depth
// test fails, for the actual shadow polygon to consult later.
func RenderShadowMaskScanline(buf *Buffers, regs *rconfig.Registers, rp *rendererPolygon, y int32) {
	p := rp.Poly

	polyalpha := polyAlpha(p.Attr)
	wireframe := polyalpha == 0
	fnDepthTest := resolveDepthTest(p)

	if !buf.prevIsShadowMask {
		row := int(y & 0x1)
		for i := 0; i < 256; i++ {
			buf.Stencil[256*row+i] = 0
		}
	}
	buf.prevIsShadowMask = true

	if p.YTop != p.YBottom {
		if y >= p.Vertices[rp.NextVL].FinalPosition[1] && rp.CurVL != p.VBottom {
			setupPolygonLeftEdge(rp, y)
		}
		if y >= p.Vertices[rp.NextVR].FinalPosition[1] && rp.CurVR != p.VBottom {
			setupPolygonRightEdge(rp, y)
		}
	}

	// Edge-fill rules for opaque shadow-mask polygons are an open question
	// in the source material; this follows the documented guess: fill
	// both edges whenever the polygon isn't fully opaque or AA/edge-mark
	// is enabled, otherwise apply the same rule as regular polygons.
	forceFill := polyalpha < 31 || regs.DispCnt&(rconfig.DispAntialias|rconfig.DispEdgeMark) != 0
	es := prepareEdges(rp, forceFill)

	if wireframe {
		polyalpha = 31
	}
	if polyalpha <= regs.AlphaRef {
		rp.XL = rp.SlopeL.Step()
		rp.XR = rp.SlopeR.Step()
		return
	}

	yedge := yEdgeFlags(y, p.YTop, p.YBottom)

	x := es.xstart
	var interpX Interpolator
	interpX.dir = DirX
	interpX.Setup(es.xstart, es.xend+1, es.wl, es.wr)

	if x < 0 {
		x = 0
	}

	mark := func(addr uint32) {
		interpX.SetX(x)
		z := interpX.InterpolateZ(es.zl, es.zr, p.WBuffer)
		dstattr := buf.Attr[addr]

		if !fnDepthTest(int32(buf.Depth[addr]), z, dstattr) {
			buf.Stencil[256*(y&0x1)+x] |= 0x1
		}
		if dstattr&0x3 != 0 {
			addr += BufferSize
			if !fnDepthTest(int32(buf.Depth[addr]), z, buf.Attr[addr]) {
				buf.Stencil[256*(y&0x1)+x] |= 0x2
			}
		}
	}

	// Part 1: left edge.
	xlimit := es.xstart + es.lEdgeLen
	if xlimit > es.xend+1 {
		xlimit = es.xend + 1
	}
	if xlimit > visibleWidth {
		xlimit = visibleWidth
	}
	for ; x < xlimit; x++ {
		if !es.lFilledge {
			continue
		}
		mark(pixelAddr(y, x))
	}

	// Part 2: polygon interior.
	edge := yedge
	xlimit = es.xend - es.rEdgeLen + 1
	if xlimit > es.xend+1 {
		xlimit = es.xend + 1
	}
	if xlimit > visibleWidth {
		xlimit = visibleWidth
	}
	if wireframe && edge == 0 {
		x = xlimit
	} else {
		for ; x < xlimit; x++ {
			mark(pixelAddr(y, x))
		}
	}

	// Part 3: right edge.
	xlimit = es.xend + 1
	if xlimit > visibleWidth {
		xlimit = visibleWidth
	}
	for ; x < xlimit; x++ {
		if !es.rFilledge {
			continue
		}
		mark(pixelAddr(y, x))
	}

	rp.XL = rp.SlopeL.Step()
	rp.XR = rp.SlopeR.Step()
}
