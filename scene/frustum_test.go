package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFrustumCulling(t *testing.T) {
	cam := NewCamera(45, 1, 0.1, 100)
	cam.Pitch = 0
	cam.Distance = 5
	f := cam.Frustum()

	unit := AABB{Min: mgl32.Vec3{-0.5, -0.5, -0.5}, Max: mgl32.Vec3{0.5, 0.5, 0.5}}
	assert.True(t, unit.IntersectsFrustum(&f), "box at the target")
	assert.False(t, unit.Transform(mgl32.Translate3D(100, 0, 0)).IntersectsFrustum(&f), "far to the side")
	assert.False(t, unit.Transform(mgl32.Translate3D(0, 0, 10)).IntersectsFrustum(&f), "behind the eye")
	assert.False(t, unit.Transform(mgl32.Translate3D(0, 0, -200)).IntersectsFrustum(&f), "beyond far")

	wide := AABB{Min: mgl32.Vec3{-50, -0.1, -0.1}, Max: mgl32.Vec3{50, 0.1, 0.1}}
	assert.True(t, wide.IntersectsFrustum(&f), "straddling boxes are kept")
}

func TestAABBTransform(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{2, 1, 1}}
	moved := box.Transform(mgl32.Translate3D(1, 2, 3))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, moved.Min)
	assert.Equal(t, mgl32.Vec3{3, 3, 4}, moved.Max)

	rotated := box.Transform(mgl32.HomogRotate3DZ(mgl32.DegToRad(90)))
	assert.InDelta(t, -1, rotated.Min.X(), 1e-5)
	assert.InDelta(t, 2, rotated.Max.Y(), 1e-5)
}
