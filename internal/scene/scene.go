// Package scene builds synthetic, already screen-space polygon lists for
// the demo command and integration tests, standing in for the real
// geometry/transform/clip/W-divide pipeline the rasterizer core expects
// upstream of it. It needs just enough of a camera to turn object-space
// vertices into the fixed-point screen positions, colors, and W/Z values
// raster.Polygon carries.
package scene

import (
	"math"

	"nds3dsoft/internal/mathutil"
	"nds3dsoft/internal/raster"
	"nds3dsoft/internal/vram"
)

const (
	screenWidth  = 256
	screenHeight = 192

	// checkerTexVRAMAddr and checkerPalVRAMAddr are where BuildCheckerTexture
	// writes the demo checkerboard, and where Cube's polygons point their
	// texture parameter word at.
	checkerTexVRAMAddr = 0
	checkerPalVRAMAddr = 0
	checkerSize        = 8
)

// camera is a minimal pinhole projector: world-space Z is distance along
// the view direction, and screen position is a simple perspective divide
// scaled by focal and centered on the screen.
type camera struct {
	focal  float64
	cx, cy float64
}

func defaultCamera() camera {
	return camera{focal: 160, cx: screenWidth / 2, cy: screenHeight / 2}
}

// project maps a camera-space point (z > 0 is in front of the camera) to
// screen position, and returns depth values scaled into a range
// comparable with the renderer's default cleared depth (see
// rconfig.Default, clear depth 0xFFFFFF).
func (c camera) project(p mathutil.Vec3) (x, y int32, w, z int32) {
	invZ := 1.0 / p[2]
	sx := c.cx + p[0]*c.focal*invZ
	sy := c.cy - p[1]*c.focal*invZ

	depth := p[2] * 0x10000
	if depth < 1 {
		depth = 1
	}
	if depth > 0x7FFFFF {
		depth = 0x7FFFFF
	}

	return int32(math.Round(sx)), int32(math.Round(sy)), int32(depth), int32(depth)
}

// BuildCheckerTexture writes an 8x8 256-color checkerboard texture and a
// two-entry palette into vr at the fixed address Cube's polygons expect.
func BuildCheckerTexture(vr *vram.Flat) {
	tex := make([]byte, checkerSize*checkerSize)
	for t := 0; t < checkerSize; t++ {
		for s := 0; s < checkerSize; s++ {
			if (s+t)%2 == 0 {
				tex[t*checkerSize+s] = 0
			} else {
				tex[t*checkerSize+s] = 1
			}
		}
	}
	vr.WriteTexture(checkerTexVRAMAddr, tex)

	pal := []byte{
		0x00, 0x00, // index 0: black
		0xFF, 0x7F, // index 1: white (15-bit 0x7FFF)
	}
	vr.WritePalette(checkerPalVRAMAddr, pal)
}

// checkerTexParam is the texture parameter word for Cube's faces: 8x8,
// 256-color format, opaque color 0, addressed at checkerTexVRAMAddr.
func checkerTexParam() uint32 {
	const fmt256Color = 4
	return (checkerTexVRAMAddr >> 3) | (fmt256Color << 26)
}

type face struct {
	corners [4]mathutil.Vec3
	color   [3]int32
	polyID  uint32
}

// Cube returns the six faces of a unit cube centered on the origin,
// rotated by angle radians around Y and X, translated dist units down
// the camera's view axis, as a screen-space polygon list ready for
// raster.RenderFrame/RenderPolygons. Each face is textured with the
// checkerboard BuildCheckerTexture writes.
func Cube(angle float64, dist float64) []*raster.Polygon {
	rot := mathutil.Mat3Mul(mathutil.RotY(angle), mathutil.RotX(angle*0.6))

	faces := []face{
		{corners: quad(-1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1, 1), color: [3]int32{504, 252, 252}, polyID: 0},  // +Z
		{corners: quad(1, -1, -1, -1, -1, -1, -1, 1, -1, 1, 1, -1), color: [3]int32{252, 504, 252}, polyID: 1}, // -Z
		{corners: quad(-1, -1, -1, -1, -1, 1, -1, 1, 1, -1, 1, -1), color: [3]int32{252, 252, 504}, polyID: 2}, // -X
		{corners: quad(1, -1, 1, 1, -1, -1, 1, 1, -1, 1, 1, 1), color: [3]int32{504, 504, 252}, polyID: 3},     // +X
		{corners: quad(-1, 1, 1, 1, 1, 1, 1, 1, -1, -1, 1, -1), color: [3]int32{252, 504, 504}, polyID: 4},     // +Y
		{corners: quad(-1, -1, -1, 1, -1, -1, 1, -1, 1, -1, -1, 1), color: [3]int32{504, 252, 504}, polyID: 5}, // -Y
	}

	cam := defaultCamera()
	texparam := checkerTexParam()

	polys := make([]*raster.Polygon, 0, len(faces))
	for _, f := range faces {
		poly := &raster.Polygon{
			NumVertices: 4,
			Vertices:    make([]*raster.Vertex, 4),
			FinalW:      make([]int32, 4),
			FinalZ:      make([]int32, 4),
			TexParam:    texparam,
			TexPalette:  0,
			FacingView:  true,
			WBuffer:     false,
		}

		uvs := [4][2]int16{{0, 0}, {checkerSize * 16, 0}, {checkerSize * 16, checkerSize * 16}, {0, checkerSize * 16}}

		ytop, ybot := int32(1<<30), int32(-(1 << 30))
		vtop, vbot := uint32(0), uint32(0)

		for i, corner := range f.corners {
			world := rot.MulVec3(corner)
			world[2] += dist

			sx, sy, w, z := cam.project(world)

			poly.Vertices[i] = &raster.Vertex{
				FinalPosition: [2]int32{sx, sy},
				FinalColor:    f.color,
				TexCoords:     uvs[i],
			}
			poly.FinalW[i] = w
			poly.FinalZ[i] = z

			if sy < ytop {
				ytop = sy
				vtop = uint32(i)
			}
			if sy > ybot {
				ybot = sy
				vbot = uint32(i)
			}
		}

		poly.YTop, poly.YBottom = ytop, ybot
		poly.VTop, poly.VBottom = vtop, vbot
		poly.Degenerate = ytop == ybot && allSameX(poly.Vertices)

		poly.Attr = (f.polyID << 24) | (31 << 16)

		polys = append(polys, poly)
	}

	return polys
}

func allSameX(verts []*raster.Vertex) bool {
	x := verts[0].FinalPosition[0]
	for _, v := range verts[1:] {
		if v.FinalPosition[0] != x {
			return false
		}
	}
	return true
}

func quad(x0, y0, z0, x1, y1, z1, x2, y2, z2, x3, y3, z3 float64) [4]mathutil.Vec3 {
	return [4]mathutil.Vec3{{x0, y0, z0}, {x1, y1, z1}, {x2, y2, z2}, {x3, y3, z3}}
}
