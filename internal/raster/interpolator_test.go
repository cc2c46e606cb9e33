package raster

import "testing"

func TestInterpolatorLinearEndpoints(t *testing.T) {
	i := NewInterpolator(DirX, 10, 20, 0x1000, 0x1000)

	i.SetX(10)
	if got := i.Interpolate(5, 25); got != 5 {
		t.Fatalf("Interpolate at x0 = %d, want 5", got)
	}

	i.SetX(20)
	if got := i.Interpolate(5, 25); got != 25 {
		t.Fatalf("Interpolate at x1 = %d, want 25", got)
	}
}

func TestInterpolatorLinearMonotonic(t *testing.T) {
	i := NewInterpolator(DirX, 0, 16, 0x800, 0x800)

	prev := int32(-1)
	for x := int32(0); x <= 16; x++ {
		i.SetX(x)
		got := i.Interpolate(0, 160)
		if got < prev {
			t.Fatalf("Interpolate not monotonic at x=%d: got %d, prev %d", x, got, prev)
		}
		prev = got
	}
	if prev != 160 {
		t.Fatalf("Interpolate at x1 = %d, want 160", prev)
	}
}

func TestInterpolatorPerspectiveEndpoints(t *testing.T) {
	i := NewInterpolator(DirX, 0, 10, 1, 2)

	i.SetX(0)
	if got := i.Interpolate(100, 200); got != 100 {
		t.Fatalf("Interpolate at x0 = %d, want 100", got)
	}

	i.SetX(10)
	if got := i.Interpolate(100, 200); got != 200 {
		t.Fatalf("Interpolate at x1 = %d, want 200", got)
	}
}

func TestInterpolatorDegenerateReturnsY0(t *testing.T) {
	i := NewInterpolator(DirX, 5, 5, 0x1000, 0x1000)
	i.SetX(5)
	if got := i.Interpolate(7, 42); got != 7 {
		t.Fatalf("Interpolate on zero-width span = %d, want 7", got)
	}
}

func TestInterpolatorEqualValuesShortCircuit(t *testing.T) {
	i := NewInterpolator(DirX, 0, 10, 3, 7)
	i.SetX(5)
	if got := i.Interpolate(9, 9); got != 9 {
		t.Fatalf("Interpolate with equal endpoints = %d, want 9", got)
	}
}

func TestInterpolateZWBufferEndpoints(t *testing.T) {
	i := NewInterpolator(DirX, 0, 10, 1, 2)

	i.SetX(0)
	if got := i.InterpolateZ(1000, 2000, true); got != 1000 {
		t.Fatalf("InterpolateZ(wbuffer) at x0 = %d, want 1000", got)
	}

	i.SetX(10)
	if got := i.InterpolateZ(1000, 2000, true); got != 2000 {
		t.Fatalf("InterpolateZ(wbuffer) at x1 = %d, want 2000", got)
	}
}

func TestInterpolateZEqualReturnsZ0(t *testing.T) {
	i := NewInterpolator(DirX, 0, 10, 1, 1)
	i.SetX(4)
	if got := i.InterpolateZ(500, 500, false); got != 500 {
		t.Fatalf("InterpolateZ with equal z0/z1 = %d, want 500", got)
	}
}
