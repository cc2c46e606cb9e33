package raster

import "nds3dsoft/internal/fixed"

// Side selects which polygon edge a Slope walks: left edges and right
// edges use slightly different dx initialization and edge-fill rules.
type Side int

const (
	SideLeft  Side = 0
	SideRight Side = 1
)

// Slope walks one polygon edge one scanline at a time. It exposes the
// current X via XVal, seeds an Interpolator along whichever axis changes
// faster (XMajor), and can report the pixel run length and antialias
// coverage for the edge on the current scanline via EdgeParams.
type Slope struct {
	side Side

	Increment int32
	Negative  bool
	XMajor    bool
	Interp    Interpolator

	x0, xmin, xmax int32
	xlen, ylen     int32
	dx             int32
	y              int32

	xcovIncr int32
}

// NewSlope constructs a Slope for the given edge side.
func NewSlope(side Side) Slope {
	return Slope{side: side, Interp: NewInterpolator(DirY, 0, 0, 0, 0)}
}

// SetupDummy degenerates a zero-height polygon edge to a single column,
// used when the polygon's top and bottom scanlines coincide.
func (s *Slope) SetupDummy(x0 int32) int32 {
	if s.side == SideRight {
		s.dx = -fixed.SlopeOne
		x0--
	} else {
		s.dx = 0
	}

	s.x0 = x0
	s.xmin = x0
	s.xmax = x0

	s.Increment = 0
	s.XMajor = false

	s.Interp.Setup(0, 0, 0, 0)
	s.Interp.SetX(0)

	s.xcovIncr = 0

	return x0
}

// Setup initializes the slope for a new edge segment (x0,y0)-(x1,y1) with
// endpoint W values w0,w1, positioned at scanline y.
func (s *Slope) Setup(x0, x1, y0, y1, w0, w1, y int32) int32 {
	s.x0 = x0
	s.y = y

	switch {
	case x1 > x0:
		s.xmin = x0
		s.xmax = x1 - 1
		s.Negative = false
	case x1 < x0:
		s.xmin = x1
		s.xmax = x0 - 1
		s.Negative = true
	default:
		s.xmin = x0
		if s.side == SideRight {
			s.xmin--
		}
		s.xmax = s.xmin
		s.Negative = false
	}

	s.xlen = s.xmax + 1 - s.xmin
	s.ylen = y1 - y0

	// The slope increment has an 18-bit fractional part. For some reason
	// the hardware doesn't compute x/y directly: it computes 1/y and then
	// multiplies by x.
	switch {
	case s.ylen == 0:
		s.Increment = 0
	case s.ylen == s.xlen:
		s.Increment = fixed.SlopeOne
	default:
		yrecip := int32((int64(1) << 18) / int64(s.ylen))
		s.Increment = (x1 - x0) * yrecip
		if s.Increment < 0 {
			s.Increment = -s.Increment
		}
	}

	s.XMajor = s.Increment > fixed.SlopeOne

	if s.side == SideRight {
		switch {
		case s.XMajor:
			if s.Negative {
				s.dx = fixed.SlopeOne/2 + fixed.SlopeOne
			} else {
				s.dx = s.Increment - fixed.SlopeOne/2
			}
		case s.Increment != 0:
			if s.Negative {
				s.dx = fixed.SlopeOne
			} else {
				s.dx = 0
			}
		default:
			s.dx = -fixed.SlopeOne
		}
	} else {
		switch {
		case s.XMajor:
			if s.Negative {
				s.dx = (s.Increment - fixed.SlopeOne/2) + fixed.SlopeOne
			} else {
				s.dx = fixed.SlopeOne/2
			}
		case s.Increment != 0:
			if s.Negative {
				s.dx = fixed.SlopeOne
			} else {
				s.dx = 0
			}
		default:
			s.dx = 0
		}
	}

	s.dx += (y - y0) * s.Increment

	x := s.XVal()

	if s.XMajor {
		if s.side == SideRight {
			s.Interp.Setup(x0-1, x1-1, w0, w1)
		} else {
			s.Interp.Setup(x0, x1, w0, w1)
		}
		s.Interp.SetX(x)

		s.xcovIncr = (s.ylen << 10) / s.xlen
	} else {
		s.Interp.Setup(y0, y1, w0, w1)
		s.Interp.SetX(y)
	}

	return x
}

// Step advances the slope by one scanline and returns the new X.
func (s *Slope) Step() int32 {
	s.dx += s.Increment
	s.y++

	x := s.XVal()
	if s.XMajor {
		s.Interp.SetX(x)
	} else {
		s.Interp.SetX(s.y)
	}
	return x
}

// XVal returns the slope's current X, clamped to [xmin, xmax].
func (s *Slope) XVal() int32 {
	var ret int32
	if s.Negative {
		ret = s.x0 - (s.dx >> 18)
	} else {
		ret = s.x0 + (s.dx >> 18)
	}

	if ret < s.xmin {
		ret = s.xmin
	} else if ret > s.xmax {
		ret = s.xmax
	}
	return ret
}

// EdgeParamsXMajor returns the pixel run length and AA coverage descriptor
// for an X-major edge on the current scanline. The descriptor packs a
// start-pixel marker into bit 31, the starting coverage into bits 12-21,
// and the per-pixel coverage increment into bits 0-9.
func (s *Slope) EdgeParamsXMajor() (length, coverage int32) {
	if (s.side == SideRight) != s.Negative {
		length = (s.dx >> 18) - ((s.dx - s.Increment) >> 18)
	} else {
		length = ((s.dx + s.Increment) >> 18) - (s.dx >> 18)
	}

	startx := s.dx >> 18
	if s.Negative {
		startx = s.xlen - startx
	}
	if s.side == SideRight {
		startx = startx - length + 1
	}

	startcov := (((startx << 10) + 0x1FF) * s.ylen) / s.xlen
	coverage = (-2147483648) | ((startcov & 0x3FF) << 12) | (s.xcovIncr & 0x3FF)
	return length, coverage
}

// EdgeParamsYMajor returns the pixel run length (always 1) and the
// precomputed AA coverage for a Y-major edge on the current scanline.
func (s *Slope) EdgeParamsYMajor() (length, coverage int32) {
	length = 1

	if s.Increment == 0 {
		coverage = 31
		return
	}

	cov := ((s.dx >> 9) + (s.Increment >> 10)) >> 4
	if (cov >> 5) != (s.dx >> 18) {
		cov = 31
	}
	cov &= 0x1F
	if (s.side == SideRight) == s.Negative {
		cov = 0x1F - cov
	}

	coverage = cov
	return
}

// EdgeParams dispatches to EdgeParamsXMajor or EdgeParamsYMajor depending
// on the slope's current major axis.
func (s *Slope) EdgeParams() (length, coverage int32) {
	if s.XMajor {
		return s.EdgeParamsXMajor()
	}
	return s.EdgeParamsYMajor()
}
