package raster

import (
	"nds3dsoft/internal/rconfig"
	"nds3dsoft/internal/vram"
	"testing"
)

// apexTriangle returns a triangle with a unique top vertex at (128,0) and a
// base running from (256,192) to (0,192), covering roughly columns
// [95,161] at row 50 and the full width by row 191. It's reused by several
// scenario tests below as a simple, unambiguous (no top/bottom vertex tie)
// shape to rasterize.
func apexTriangle(attr uint32, z, w int32, rgb [3]int32) *Polygon {
	return &Polygon{
		NumVertices: 3,
		Vertices: []*Vertex{
			{FinalPosition: [2]int32{128, 0}, FinalColor: rgb},
			{FinalPosition: [2]int32{256, 192}, FinalColor: rgb},
			{FinalPosition: [2]int32{0, 192}, FinalColor: rgb},
		},
		FinalW:     []int32{w, w, w},
		FinalZ:     []int32{z, z, z},
		TexParam:   0,
		TexPalette: 0,
		Attr:       attr,
		FacingView: true,
		WBuffer:    false,
		YTop:       0,
		YBottom:    192,
		VTop:       0,
		VBottom:    1,
	}
}

func TestFlatOpaqueTriangleCoversInteriorWithConstantAttributes(t *testing.T) {
	buf := &Buffers{}
	regs := rconfig.Default()
	vr := vram.NewFlat()
	buf.Clear(&regs, vr)

	const polyID = uint32(1)
	poly := apexTriangle((polyID<<24)|(31<<16), 0x4000, 0x1000, [3]int32{504, 504, 504})

	RenderFrame(buf, &regs, vr, []*Polygon{poly})

	// (128,100) lies well inside the triangle's interior at row 100.
	addr := pixelAddr(100, 128)
	color := buf.Color[addr]
	if r, g, b, a := color&0x3F, (color>>8)&0x3F, (color>>16)&0x3F, color>>24; r != 63 || g != 63 || b != 63 || a != 31 {
		t.Fatalf("covered pixel color = (%d,%d,%d,%d), want (63,63,63,31)", r, g, b, a)
	}
	if buf.Depth[addr] != 0x4000 {
		t.Fatalf("covered pixel depth = %#x, want 0x4000", buf.Depth[addr])
	}
	if id := (buf.Attr[addr] >> 24) & 0x3F; id != polyID {
		t.Fatalf("covered pixel opaque id = %d, want %d", id, polyID)
	}

	// (10,100) lies outside the triangle (left boundary at row 100 is
	// around column 61) and should still show the clear color/depth.
	outsideAddr := pixelAddr(100, 10)
	if buf.Color[outsideAddr] != 0 {
		t.Fatalf("uncovered pixel color = %#08x, want the clear color 0", buf.Color[outsideAddr])
	}
	if id := (buf.Attr[outsideAddr] >> 24) & 0x3F; id != 0 {
		t.Fatalf("uncovered pixel opaque id = %d, want 0 (clear id)", id)
	}
}

func TestFlatOpaqueTriangleLeavesBorderColumnsUntouched(t *testing.T) {
	buf := &Buffers{}
	regs := rconfig.Default()
	vr := vram.NewFlat()
	buf.Clear(&regs, vr)

	borderBefore := pixelAddr(100, -1)
	rightBefore := pixelAddr(100, 256)
	wantColor := buf.Color[borderBefore]
	wantDepth := buf.Depth[borderBefore]
	wantRightColor := buf.Color[rightBefore]

	poly := apexTriangle((1<<24)|(31<<16), 0x4000, 0x1000, [3]int32{504, 504, 504})
	RenderFrame(buf, &regs, vr, []*Polygon{poly})

	if buf.Color[borderBefore] != wantColor || buf.Depth[borderBefore] != wantDepth {
		t.Fatalf("left border column was modified by rendering")
	}
	if buf.Color[rightBefore] != wantRightColor {
		t.Fatalf("right border column was modified by rendering")
	}
}

func TestPlotTranslucentPixelSkipsMatchingPolygonID(t *testing.T) {
	buf := &Buffers{}
	regs := &rconfig.Registers{DispCnt: rconfig.DispAlphaBlend}

	addr := pixelAddr(50, 50)
	opaqueColor := uint32(63) | (63 << 8) | (63 << 16) | (31 << 24)
	buf.Color[addr] = opaqueColor
	// Bit22 marks "a translucent polygon already wrote here"; a prior
	// translucent write from id 5 sets it alongside the id in bits16-22.
	buf.Attr[addr] = (1 << 22) | (5 << 16)

	srcColor := uint32(0) | (0 << 8) | (0 << 16) | (16 << 24)
	polyattr := uint32(5 << 24) // same id (5), shifted into bits16-23 by PlotTranslucentPixel

	PlotTranslucentPixel(buf, regs, addr, srcColor, 9999, false, polyattr, false)

	if buf.Color[addr] != opaqueColor {
		t.Fatalf("PlotTranslucentPixel wrote over a pixel with a matching translucent id: got %#08x, want unchanged %#08x", buf.Color[addr], opaqueColor)
	}
}

func TestPlotTranslucentPixelBlendsDifferentPolygonID(t *testing.T) {
	buf := &Buffers{}
	regs := &rconfig.Registers{DispCnt: rconfig.DispAlphaBlend}

	addr := pixelAddr(50, 50)
	buf.Color[addr] = uint32(63) | (63 << 8) | (63 << 16) | (31 << 24)
	buf.Attr[addr] = (1 << 22) | (5 << 16) // existing translucent id 5

	srcColor := uint32(0) | (0 << 8) | (0 << 16) | (16 << 24) // black, alpha 16
	polyattr := uint32(6 << 24)                                // different id (6)

	PlotTranslucentPixel(buf, regs, addr, srcColor, 9999, false, polyattr, false)

	// alpha++ => 17; channel = (0*17 + 63*15) >> 5 = 29.
	got := buf.Color[addr]
	if r := got & 0x3F; r != 29 {
		t.Fatalf("blended R channel = %d, want 29", r)
	}
	if a := got >> 24; a != 31 {
		t.Fatalf("blended alpha = %d, want max(16,31)=31", a)
	}
	if id := (buf.Attr[addr] >> 16) & 0x3F; id != 6 {
		t.Fatalf("blended attr translucent id = %d, want 6", id)
	}
}

// TestPlotTranslucentPixelOverOpaqueWithMatchingIDStillBlends exercises
// scenario 3 literally: an opaque destination never carries the translucent
// flag, so a translucent write sharing its numeric polygon id still blends
// instead of being skipped — the id-equality skip only fires against an
// existing translucent write.
func TestPlotTranslucentPixelOverOpaqueWithMatchingIDStillBlends(t *testing.T) {
	buf := &Buffers{}
	regs := &rconfig.Registers{DispCnt: rconfig.DispAlphaBlend}

	addr := pixelAddr(50, 50)
	buf.Color[addr] = uint32(63) | (0 << 8) | (0 << 16) | (31 << 24) // opaque red, id=1
	buf.Depth[addr] = 0x20000
	buf.Attr[addr] = 1 << 24 // opaque id=1, bit22 (translucent) clear

	srcColor := uint32(0) | (0 << 8) | (63 << 16) | (16 << 24) // translucent blue, α=16
	polyattr := uint32(1 << 24)                                  // same id (1)

	PlotTranslucentPixel(buf, regs, addr, srcColor, 0x10000, false, polyattr, false)

	got := buf.Color[addr]
	if r := got & 0x3F; r != 29 {
		t.Fatalf("blended R channel = %d, want 29", r)
	}
	if g := (got >> 8) & 0x3F; g != 0 {
		t.Fatalf("blended G channel = %d, want 0", g)
	}
	if b := (got >> 16) & 0x3F; b != 33 {
		t.Fatalf("blended B channel = %d, want 33", b)
	}
	if a := got >> 24; a != 31 {
		t.Fatalf("blended alpha = %d, want max(16,31)=31", a)
	}
}

func TestCalculateFogDensityExactTableEntry(t *testing.T) {
	buf := &Buffers{}
	regs := &rconfig.Registers{FogShift: 0, FogOffset: 0}
	regs.FogDensityTable[3] = 50

	addr := pixelAddr(0, 0)
	buf.Depth[addr] = 0x180000 // chosen so densityid=3, densityfrac=0 exactly

	if got := CalculateFogDensity(buf, regs, addr); got != 50 {
		t.Fatalf("CalculateFogDensity (exact table entry) = %d, want 50", got)
	}
}

func TestCalculateFogDensityInterpolatesBetweenEntries(t *testing.T) {
	buf := &Buffers{}
	regs := &rconfig.Registers{FogShift: 0, FogOffset: 0}
	regs.FogDensityTable[3] = 40
	regs.FogDensityTable[4] = 60

	addr := pixelAddr(0, 0)
	buf.Depth[addr] = 0x1C0000 // densityid=3, densityfrac halfway to entry 4

	if got := CalculateFogDensity(buf, regs, addr); got != 50 {
		t.Fatalf("CalculateFogDensity (halfway interpolation) = %d, want 50", got)
	}
}

func TestCalculateFogDensityClampsAt128(t *testing.T) {
	buf := &Buffers{}
	regs := &rconfig.Registers{FogShift: 0, FogOffset: 0}
	regs.FogDensityTable[3] = 200
	regs.FogDensityTable[4] = 200

	addr := pixelAddr(0, 0)
	buf.Depth[addr] = 0x180000

	if got := CalculateFogDensity(buf, regs, addr); got != 128 {
		t.Fatalf("CalculateFogDensity should clamp to 128, got %d", got)
	}
}

// TestShadowMaskGatesShadowPolygon exercises the two-pass shadow volume
// technique: a shadow-mask polygon writes stencil bits wherever its depth
// test fails against existing content, and a following shadow polygon only
// writes a pixel if the stencil says so.
func TestShadowMaskGatesShadowPolygon(t *testing.T) {
	buf := &Buffers{}
	regs := &rconfig.Registers{}

	const maskedColumn = 100  // mask depth test fails here -> shadow should draw
	const litColumn = 150     // mask depth test passes here -> shadow should not draw
	const row = int32(50)

	maskedAddr := pixelAddr(row, maskedColumn)
	litAddr := pixelAddr(row, litColumn)

	buf.Depth[maskedAddr] = 1000
	buf.Depth[litAddr] = 6000
	buf.Color[litAddr] = 0xDEADBEEF

	mask := apexTriangle((2<<24)|(31<<16), 5000, 0x1000, [3]int32{0, 0, 0})
	mask.IsShadowMask = true

	maskRP := newRendererPolygon()
	setupPolygon(maskRP, mask)
	setupPolygonLeftEdge(maskRP, row)
	setupPolygonRightEdge(maskRP, row)
	RenderShadowMaskScanline(buf, regs, maskRP, row)

	if buf.Stencil[256*(row&1)+maskedColumn]&0x1 == 0 {
		t.Fatalf("shadow mask should have set stencil bit 0x1 at the masked column (depth test fails there)")
	}
	if buf.Stencil[256*(row&1)+litColumn]&0x1 != 0 {
		t.Fatalf("shadow mask should not have set stencil bit 0x1 at the lit column (depth test passes there)")
	}

	shadow := apexTriangle((7<<24)|(31<<16), 500, 0x1000, [3]int32{504, 504, 504})
	shadow.IsShadow = true

	shadowRP := newRendererPolygon()
	setupPolygon(shadowRP, shadow)
	setupPolygonLeftEdge(shadowRP, row)
	setupPolygonRightEdge(shadowRP, row)
	RenderPolygonScanline(buf, regs, vram.NewFlat(), shadowRP, row)

	if buf.Depth[maskedAddr] != 500 {
		t.Fatalf("shadow polygon should have written the masked column: depth = %d, want 500", buf.Depth[maskedAddr])
	}
	if id := (buf.Attr[maskedAddr] >> 24) & 0x3F; id != 7 {
		t.Fatalf("shadow polygon opaque id at masked column = %d, want 7", id)
	}

	if buf.Depth[litAddr] != 6000 {
		t.Fatalf("shadow polygon should not have written the lit column: depth = %d, want unchanged 6000", buf.Depth[litAddr])
	}
	if buf.Color[litAddr] != 0xDEADBEEF {
		t.Fatalf("shadow polygon should not have written the lit column's color")
	}
}
