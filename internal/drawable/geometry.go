// Package drawable provides the leaf drawables of the viewer: triangle meshes
// for slide planes, label surfaces and annotation outlines.
package drawable

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is CPU-side triangle (or line) data in model space.
type Geometry struct {
	Positions [][3]float32
	Indices   []uint32 // empty for non-indexed geometry
	Lines     bool
}

// Bounds returns the axis-aligned bounding box of the positions.
func (g Geometry) Bounds() (lo, hi mgl32.Vec3) {
	if len(g.Positions) == 0 {
		return lo, hi
	}
	lo = mgl32.Vec3(g.Positions[0])
	hi = lo
	for _, p := range g.Positions[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}

// Count is the number of vertices submitted per draw.
func (g Geometry) Count() int {
	if len(g.Indices) > 0 {
		return len(g.Indices)
	}
	return len(g.Positions)
}

// Transformed returns a copy with every position multiplied by m.
func (g Geometry) Transformed(m mgl32.Mat4) Geometry {
	out := Geometry{
		Positions: make([][3]float32, len(g.Positions)),
		Indices:   append([]uint32(nil), g.Indices...),
		Lines:     g.Lines,
	}
	for i, p := range g.Positions {
		out.Positions[i] = [3]float32(mgl32.TransformCoordinate(mgl32.Vec3(p), m))
	}
	return out
}

// QuadGeometry is a width×height rectangle in the z=0 plane centred on the
// origin, as used for slide planes.
func QuadGeometry(width, height float32) Geometry {
	w, h := width/2, height/2
	return Geometry{
		Positions: [][3]float32{{-w, -h, 0}, {w, -h, 0}, {w, h, 0}, {-w, h, 0}},
		Indices:   []uint32{0, 1, 2, 2, 3, 0},
	}
}

// BoxGeometry is an axis-aligned box centred on the origin.
func BoxGeometry(sx, sy, sz float32) Geometry {
	x, y, z := sx/2, sy/2, sz/2
	return Geometry{
		Positions: [][3]float32{
			{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
			{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
		},
		Indices: []uint32{
			4, 5, 6, 6, 7, 4, // +z
			1, 0, 3, 3, 2, 1, // -z
			5, 1, 2, 2, 6, 5, // +x
			0, 4, 7, 7, 3, 0, // -x
			7, 6, 2, 2, 3, 7, // +y
			0, 1, 5, 5, 4, 0, // -y
		},
	}
}

// OutlineGeometry is a closed polyline through points in the z=0 plane,
// drawn as line segments. Fewer than two points yield empty geometry.
func OutlineGeometry(points []mgl32.Vec2) Geometry {
	if len(points) < 2 {
		return Geometry{Lines: true}
	}
	g := Geometry{Lines: true}
	for _, p := range points {
		g.Positions = append(g.Positions, [3]float32{p.X(), p.Y(), 0})
	}
	n := uint32(len(points))
	for i := uint32(0); i < n; i++ {
		g.Indices = append(g.Indices, i, (i+1)%n)
	}
	return g
}

// GridGeometry is a width×height line grid in the z=0 plane with the given
// number of cells along each axis, used as a measurement overlay.
func GridGeometry(width, height float32, divisions int) Geometry {
	divisions = max(divisions, 1)
	w, h := width/2, height/2
	g := Geometry{Lines: true}
	addLine := func(a, b [3]float32) {
		base := uint32(len(g.Positions))
		g.Positions = append(g.Positions, a, b)
		g.Indices = append(g.Indices, base, base+1)
	}
	for i := 0; i <= divisions; i++ {
		f := float32(i) / float32(divisions)
		x := -w + f*width
		y := -h + f*height
		addLine([3]float32{x, -h, 0}, [3]float32{x, h, 0})
		addLine([3]float32{-w, y, 0}, [3]float32{w, y, 0})
	}
	return g
}

func positionBytes(p [][3]float32) []byte {
	if len(p) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&p[0])), len(p)*12)
}

func indexBytes(idx []uint32) []byte {
	if len(idx) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&idx[0])), len(idx)*4)
}
