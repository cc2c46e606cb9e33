package raster

import (
	"sync"

	"nds3dsoft/internal/rconfig"
	"nds3dsoft/internal/vram"
)

// semaphore is a minimal counting semaphore built on a buffered channel,
// standing in for the platform counting semaphore the original renderer
// uses to hand scanlines and frame-completion signals between the render
// thread and its consumer. Post is non-blocking and drops the signal if
// the channel is already full (mirroring a semaphore that saturates at
// its configured maximum count); Wait blocks until a signal is available.
type semaphore chan struct{}

func newSemaphore(capacity int) semaphore {
	return make(semaphore, capacity)
}

func (s semaphore) Post() {
	select {
	case s <- struct{}{}:
	default:
	}
}

// PostN posts n signals, dropping any that would overflow the channel's
// capacity — used when a frame is identical to the last and every
// scanline's completion is signalled at once instead of row by row.
func (s semaphore) PostN(n int) {
	for i := 0; i < n; i++ {
		s.Post()
	}
}

func (s semaphore) Wait() {
	<-s
}

// Reset drains any pending signals without blocking.
func (s semaphore) Reset() {
	for {
		select {
		case <-s:
		default:
			return
		}
	}
}

// Renderer owns the pixel buffers, VRAM view, and registers for one
// rasterizer instance, plus the optional background render goroutine and
// its three counting semaphores. It is the concrete type behind the
// "frame driver" external interface: SetRenderSettings, RenderFrame,
// VCount144, and GetLine.
type Renderer struct {
	Buffers Buffers
	VRAM    *vram.Flat
	Regs    rconfig.Registers

	renderStart    semaphore
	renderDone     semaphore
	scanlineCount  semaphore
	threadRunning  bool
	threadRendered bool

	frameIdentical bool
	pending        []*Polygon

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewRenderer constructs a Renderer with freshly zeroed buffers and VRAM,
// and default registers.
func NewRenderer() *Renderer {
	r := &Renderer{
		VRAM: vram.NewFlat(),
		Regs: rconfig.Default(),

		renderStart:   newSemaphore(1),
		renderDone:    newSemaphore(1),
		scanlineCount: newSemaphore(visibleHeight + 1),
	}
	return r
}

// Reset zeros the pixel buffers, matching a device reset rather than a
// frame boundary.
func (r *Renderer) Reset() {
	r.Buffers.Reset()
}

// SetRenderSettings toggles the background render goroutine. Switching
// threaded on launches renderThreadFunc; switching it off joins the
// goroutine and drains the semaphores, mirroring the original's
// DeInit/Init pair run on a settings change rather than only at shutdown.
func (r *Renderer) SetRenderSettings(threaded bool) {
	if threaded == r.threadRunning {
		return
	}

	if threaded {
		r.threadRunning = true
		r.wg.Add(1)
		go r.renderThreadFunc()
		return
	}

	r.threadRunning = false
	r.renderStart.Post()
	r.wg.Wait()

	r.renderStart.Reset()
	r.renderDone.Reset()
	r.scanlineCount.Reset()
}

// DeInit stops the render goroutine (if running) and releases its
// resources. Safe to call even if the renderer was never threaded.
func (r *Renderer) DeInit() {
	r.SetRenderSettings(false)
}

// renderThreadFunc is the background render goroutine: it waits for a
// frame to be queued, renders it (or fast-forwards every scanline count
// if the frame is identical to the last), then signals completion. It
// exits once threadRunning is cleared and a final start signal wakes it.
func (r *Renderer) renderThreadFunc() {
	defer r.wg.Done()
	for {
		r.renderStart.Wait()
		if !r.threadRunning {
			return
		}

		r.mu.Lock()
		identical := r.frameIdentical
		polygons := r.pending
		r.mu.Unlock()

		if identical {
			r.scanlineCount.PostN(visibleHeight)
		} else {
			r.Buffers.Clear(&r.Regs, r.VRAM)
			RenderPolygons(&r.Buffers, &r.Regs, r.VRAM, polygons, r.scanlineCount.Post)
		}

		r.renderDone.Post()
	}
}

// RenderFrame queues (or, when not threaded, immediately runs) a frame's
// worth of polygons. frameIdentical lets a caller skip re-rasterizing a
// frame whose VRAM and geometry haven't changed since the last one was
// drawn, provided Regs.FrameIdentical also allows it.
func (r *Renderer) RenderFrame(polygons []*Polygon, frameIdentical bool) {
	identical := frameIdentical && r.Regs.FrameIdentical

	if r.threadRunning {
		r.mu.Lock()
		r.frameIdentical = identical
		r.pending = polygons
		r.mu.Unlock()
		r.renderStart.Post()
		return
	}

	if identical {
		return
	}
	r.Buffers.Clear(&r.Regs, r.VRAM)
	RenderPolygons(&r.Buffers, &r.Regs, r.VRAM, polygons, nil)
}

// VCount144 blocks until the background render thread has finished the
// current frame, matching the point in the NDS video timing (scanline
// 144) where the real hardware's rendering unit is guaranteed done. It is
// a no-op when not threaded, since RenderFrame already ran synchronously.
func (r *Renderer) VCount144() {
	if r.threadRunning {
		r.renderDone.Wait()
	}
}

// GetLine returns the finished, composited scanline for row, waiting for
// the background render thread to finish rasterizing it first when
// threaded. Rows beyond the visible 192 don't produce a completion signal
// and so never block.
func (r *Renderer) GetLine(row int32) []uint32 {
	if r.threadRunning && row < visibleHeight {
		r.scanlineCount.Wait()
	}

	addr := pixelAddr(row, 0)
	return r.Buffers.Color[addr : addr+visibleWidth]
}
