package raster

import (
	"nds3dsoft/internal/rconfig"
	"nds3dsoft/internal/vram"
)

// RenderPolygons rasterizes one frame's polygon list into buf: it sets up
// traversal state for every non-degenerate polygon, then walks all 192
// scanlines, running the geometry pass for row y followed by the post-pass
// for row y-1 (a one-row lag, since edge marking needs the row below to
// have already been rasterized). The final row's post-pass runs once,
// after the loop. onRowDone, when non-nil, is called once after each row's
// post-pass (192 calls per frame); the threaded renderer passes its
// scanline semaphore's Post so waiting consumers are released row by row.
func RenderPolygons(buf *Buffers, regs *rconfig.Registers, vr *vram.Flat, polygons []*Polygon, onRowDone func()) {
	list := make([]*rendererPolygon, 0, len(polygons))
	for _, poly := range polygons {
		if poly.Degenerate {
			continue
		}
		rp := newRendererPolygon()
		setupPolygon(rp, poly)
		list = append(list, rp)
	}

	RenderScanline(buf, regs, vr, list, 0)

	for y := int32(1); y < visibleHeight; y++ {
		RenderScanline(buf, regs, vr, list, y)
		ScanlineFinalPass(buf, regs, y-1)

		if onRowDone != nil {
			onRowDone()
		}
	}

	ScanlineFinalPass(buf, regs, visibleHeight-1)
	if onRowDone != nil {
		onRowDone()
	}
}

// RenderFrame clears buf and rasterizes polygons into it synchronously.
// It is the non-threaded path; the threaded path lives in worker.go and
// calls RenderPolygons directly from the render goroutine instead.
func RenderFrame(buf *Buffers, regs *rconfig.Registers, vr *vram.Flat, polygons []*Polygon) {
	buf.Clear(regs, vr)
	RenderPolygons(buf, regs, vr, polygons, nil)
}
