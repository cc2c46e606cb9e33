package raster

// Vertex carries the per-vertex attributes the rasterizer reads. Screen
// position and vertex color are produced by the out-of-scope geometry
// pipeline; color components are stored at 8x their final 6-bit range
// (0..504); the scanline rasterizer recovers the 6-bit value with a final
// ">>3" before handing the color to RenderPixel.
type Vertex struct {
	FinalPosition [2]int32 // screen X, Y
	FinalColor    [3]int32 // R, G, B, each 0..504
	TexCoords     [2]int16 // S, T, 1/16th-texel fixed point
}

// Polygon is one frame's worth of preprocessed, screen-space polygon input.
// It is immutable for the duration of a frame; the core never mutates it.
type Polygon struct {
	Vertices    []*Vertex
	NumVertices uint32

	VTop, VBottom uint32
	YTop, YBottom int32

	FinalW []int32
	FinalZ []int32

	TexParam   uint32
	TexPalette uint32

	Attr uint32

	FacingView   bool
	WBuffer      bool
	IsShadow     bool
	IsShadowMask bool
	Degenerate   bool
}

// PolygonID returns the 6-bit polygon identity packed in bits 24-29 of Attr
// (opaque id) — translucent polygons also store it in bits 16-21, derived
// from the same field by the scanline rasterizer.
func (p *Polygon) PolygonID() uint32 { return (p.Attr >> 24) & 0x3F }

// rendererPolygon is the mutable per-frame traversal state for one polygon:
// the left/right edge slopes and the fan-traversal cursors into its vertex
// list. One rendererPolygon exists per live polygon in a frame's polygon
// list; it is reset by setupPolygon at the start of the polygon's run and
// advanced scanline by scanline via setupPolygonLeftEdge/RightEdge.
type rendererPolygon struct {
	Poly *Polygon

	SlopeL, SlopeR Slope
	XL, XR         int32

	CurVL, CurVR   uint32
	NextVL, NextVR uint32
}

func newRendererPolygon() *rendererPolygon {
	return &rendererPolygon{
		SlopeL: NewSlope(SideLeft),
		SlopeR: NewSlope(SideRight),
	}
}

func wrapInc(i, n uint32) uint32 {
	i++
	if i >= n {
		return 0
	}
	return i
}

func wrapDec(i, n uint32) uint32 {
	if i == 0 {
		return n - 1
	}
	return i - 1
}

// setupPolygonLeftEdge rotates the left-edge fan cursor forward until it
// straddles scanline y, then re-seeds the left slope for the new segment.
func setupPolygonLeftEdge(rp *rendererPolygon, y int32) {
	p := rp.Poly
	for y >= p.Vertices[rp.NextVL].FinalPosition[1] && rp.CurVL != p.VBottom {
		rp.CurVL = rp.NextVL
		if p.FacingView {
			rp.NextVL = wrapInc(rp.CurVL, p.NumVertices)
		} else {
			rp.NextVL = wrapDec(rp.CurVL, p.NumVertices)
		}
	}

	rp.XL = rp.SlopeL.Setup(
		p.Vertices[rp.CurVL].FinalPosition[0], p.Vertices[rp.NextVL].FinalPosition[0],
		p.Vertices[rp.CurVL].FinalPosition[1], p.Vertices[rp.NextVL].FinalPosition[1],
		p.FinalW[rp.CurVL], p.FinalW[rp.NextVL], y)
}

// setupPolygonRightEdge is the mirror of setupPolygonLeftEdge: it rotates
// the opposite way around the fan, since left and right edges walk the
// polygon's vertex list in opposite directions.
func setupPolygonRightEdge(rp *rendererPolygon, y int32) {
	p := rp.Poly
	for y >= p.Vertices[rp.NextVR].FinalPosition[1] && rp.CurVR != p.VBottom {
		rp.CurVR = rp.NextVR
		if p.FacingView {
			rp.NextVR = wrapDec(rp.CurVR, p.NumVertices)
		} else {
			rp.NextVR = wrapInc(rp.CurVR, p.NumVertices)
		}
	}

	rp.XR = rp.SlopeR.Setup(
		p.Vertices[rp.CurVR].FinalPosition[0], p.Vertices[rp.NextVR].FinalPosition[0],
		p.Vertices[rp.CurVR].FinalPosition[1], p.Vertices[rp.NextVR].FinalPosition[1],
		p.FinalW[rp.CurVR], p.FinalW[rp.NextVR], y)
}

// setupPolygon initializes a polygon's traversal state at the start of its
// run: it picks the fan-traversal direction from FacingView, and handles
// the degenerate flat-polygon case (YTop == YBottom) by picking the
// leftmost/rightmost among vertices 0, 1 and n-1 and collapsing both
// slopes to a single column.
func setupPolygon(rp *rendererPolygon, polygon *Polygon) {
	n := polygon.NumVertices
	vtop, vbot := polygon.VTop, polygon.VBottom
	ytop, ybot := polygon.YTop, polygon.YBottom

	rp.Poly = polygon
	rp.CurVL = vtop
	rp.CurVR = vtop

	if polygon.FacingView {
		rp.NextVL = wrapInc(rp.CurVL, n)
		rp.NextVR = wrapDec(rp.CurVR, n)
	} else {
		rp.NextVL = wrapDec(rp.CurVL, n)
		rp.NextVR = wrapInc(rp.CurVR, n)
	}

	if ybot == ytop {
		vtop, vbot = 0, 0

		i := uint32(1)
		if polygon.Vertices[i].FinalPosition[0] < polygon.Vertices[vtop].FinalPosition[0] {
			vtop = i
		}
		if polygon.Vertices[i].FinalPosition[0] > polygon.Vertices[vbot].FinalPosition[0] {
			vbot = i
		}

		i = n - 1
		if polygon.Vertices[i].FinalPosition[0] < polygon.Vertices[vtop].FinalPosition[0] {
			vtop = i
		}
		if polygon.Vertices[i].FinalPosition[0] > polygon.Vertices[vbot].FinalPosition[0] {
			vbot = i
		}

		rp.CurVL, rp.NextVL = vtop, vtop
		rp.CurVR, rp.NextVR = vbot, vbot

		rp.XL = rp.SlopeL.SetupDummy(polygon.Vertices[rp.CurVL].FinalPosition[0])
		rp.XR = rp.SlopeR.SetupDummy(polygon.Vertices[rp.CurVR].FinalPosition[0])
		return
	}

	setupPolygonLeftEdge(rp, ytop)
	setupPolygonRightEdge(rp, ytop)
}
