//go:build gpu

package peel_test

import (
	"runtime"
	"testing"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"histo-viewer/core"
	"histo-viewer/internal/drawable"
	"histo-viewer/internal/opengl/glapi"
	"histo-viewer/internal/peel"
	"histo-viewer/internal/shaders"
	"histo-viewer/scene"
)

// Run with: go test -tags gpu ./internal/peel/
func TestCompositeOnGPU(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	wc := core.DefaultWindowConfig()
	wc.Width, wc.Height = 64, 64
	wc.Visible = false
	window, err := core.NewWindow(wc)
	if err != nil {
		t.Skipf("no GL context: %v", err)
	}
	defer window.Destroy()

	log := zaptest.NewLogger(t)
	api, err := glapi.New(log)
	require.NoError(t, err)
	registry := shaders.NewRegistry(log)
	require.NoError(t, registry.RegisterBuiltins())
	defer registry.Delete()

	// Positions are already in clip space: Update gets no camera.
	back := drawable.NewMesh(api, registry, "back", drawable.QuadGeometry(2, 2))
	back.Color = core.Color{R: 1, A: 1}
	back.ObjectID = 7
	front := drawable.NewMesh(api, registry, "front",
		drawable.QuadGeometry(2, 2).Transformed(mgl32.Translate3D(0, 0, -0.5)))
	front.Color = core.Color{B: 1, A: 0.5}
	front.Opaque = false
	for _, m := range []*drawable.Mesh{back, front} {
		require.NoError(t, m.Upload())
		defer m.Destroy()
	}
	root := scene.NewGroup("root")
	root.AddChild(back)
	root.AddChild(front)

	r := peel.New(api,
		peel.WithLogger(log),
		peel.WithShaderActivator(registry),
		peel.WithUniformsSource(registry),
		peel.WithSceneRoot(peel.SceneRootFunc(func() scene.Drawable { return root })),
		peel.WithDefaultFramebuffer(window),
	)
	require.NoError(t, r.Initialize())
	defer r.Teardown()
	vp := window.Viewport()
	require.NoError(t, r.Resize(vp))

	r.Update(nil, scene.IdentityFrame())
	require.NoError(t, r.Render())

	px := readPixel(vp.Width/2, vp.Height/2)
	assert.InDelta(t, 0.5, px[0], 0.02, "red behind")
	assert.InDelta(t, 0, px[1], 0.02)
	assert.InDelta(t, 0.5, px[2], 0.02, "half-transparent blue in front")

	id, depth := r.PickObjectIDAndNDCDepth(mgl32.Vec2{0, 0})
	assert.Equal(t, uint32(7), id, "translucent geometry is not pickable")
	assert.InDelta(t, 0, depth, 1e-3)

	// Without overlap peeling reduces to plain OVER on the background.
	back.Geometry = drawable.QuadGeometry(1, 2).Transformed(mgl32.Translate3D(0.5, 0, 0))
	front.Geometry = drawable.QuadGeometry(1, 2).Transformed(mgl32.Translate3D(-0.5, 0, -0.5))
	for _, m := range []*drawable.Mesh{back, front} {
		m.Destroy()
		require.NoError(t, m.Upload())
	}
	r.Update(nil, scene.IdentityFrame())
	require.NoError(t, r.Render())

	left := readPixel(vp.Width/4, vp.Height/2)
	assert.InDelta(t, 0, left[0], 0.02)
	assert.InDelta(t, 0.5, left[2], 0.02, "blue over black background")
	right := readPixel(3*vp.Width/4, vp.Height/2)
	assert.InDelta(t, 1, right[0], 0.02, "opaque red untouched")
	assert.InDelta(t, 0, right[2], 0.02)
}

func readPixel(x, y int) [4]float32 {
	var px [4]float32
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.ReadPixels(int32(x), int32(y), 1, 1, gl.RGBA, gl.FLOAT, gl.Ptr(&px[0]))
	return px
}
