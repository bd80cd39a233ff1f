package peel

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"histo-viewer/core"
	"histo-viewer/internal/opengl"
	"histo-viewer/internal/opengl/gltest"
	"histo-viewer/scene"
)

type stubProgram struct {
	name    string
	applied []opengl.UniformSet
}

func (p *stubProgram) ApplyUniforms(u opengl.UniformSet) error {
	p.applied = append(p.applied, u.Clone())
	return nil
}

type stubShaders struct {
	programs  map[string]*stubProgram
	activated []string
	missing   map[string]bool
}

func newStubShaders() *stubShaders {
	return &stubShaders{programs: map[string]*stubProgram{}, missing: map[string]bool{}}
}

func (s *stubShaders) Activate(name string) (opengl.Program, error) {
	s.activated = append(s.activated, name)
	if s.missing[name] {
		return nil, nil
	}
	p, ok := s.programs[name]
	if !ok {
		p = &stubProgram{name: name}
		s.programs[name] = p
	}
	return p, nil
}

func (s *stubShaders) Uniforms(name string) opengl.UniformSet {
	return opengl.UniformSet{"opacity": float32(1)}
}

type renderCall struct {
	stage  scene.RenderStage
	filter scene.ObjectsToRender
}

// recordingDrawable logs every Render call and can emulate fragment writes
// through onRender.
type recordingDrawable struct {
	calls    []renderCall
	updates  []float64
	viewport core.Viewport
	onRender func(stage scene.RenderStage, filter scene.ObjectsToRender) error
}

func (d *recordingDrawable) Render(stage scene.RenderStage, filter scene.ObjectsToRender) error {
	d.calls = append(d.calls, renderCall{stage, filter})
	if d.onRender != nil {
		return d.onRender(stage, filter)
	}
	return nil
}

func (d *recordingDrawable) Update(time float64, viewport core.Viewport, camera *scene.Camera, frame scene.CoordinateFrame, data scene.AccumulatedRenderingData) {
	d.updates = append(d.updates, time)
	d.viewport = viewport
}

func (d *recordingDrawable) count(stage scene.RenderStage) int {
	n := 0
	for _, c := range d.calls {
		if c.stage == stage {
			n++
		}
	}
	return n
}

type fixedFramebuffer uint32

func (f fixedFramebuffer) DefaultFramebuffer() uint32 { return uint32(f) }

type fixture struct {
	fake    *gltest.Fake
	shaders *stubShaders
	root    *recordingDrawable
	overlay *recordingDrawable
	r       *Renderer
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		fake:    gltest.New(),
		shaders: newStubShaders(),
		root:    &recordingDrawable{},
		overlay: &recordingDrawable{},
	}
	f.r = New(f.fake,
		WithConfig(cfg),
		WithLogger(zaptest.NewLogger(t)),
		WithShaderActivator(f.shaders),
		WithUniformsSource(f.shaders),
		WithSceneRoot(SceneRootFunc(func() scene.Drawable { return f.root })),
		WithOverlayRoot(SceneRootFunc(func() scene.Drawable { return f.overlay })),
	)
	require.NoError(t, f.r.Initialize())
	return f
}

func (f *fixture) resize(t *testing.T, w, h int) {
	t.Helper()
	require.NoError(t, f.r.Resize(core.NewViewport(w, h)))
}

// fakeTexture returns the fake's record of a renderer texture.
func (f *fixture) fakeTexture(tex *opengl.Texture) *gltest.Texture {
	return f.fake.TextureByID(tex.ID())
}
