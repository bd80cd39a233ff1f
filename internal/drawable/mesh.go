package drawable

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"histo-viewer/core"
	"histo-viewer/internal/opengl"
	"histo-viewer/internal/shaders"
	"histo-viewer/scene"
)

// Programs is what a Mesh needs from the shader registry.
type Programs interface {
	opengl.ShaderActivator
	opengl.UniformsSource
}

// Mesh is a leaf drawable with a single colour. It is opaque when Opaque is
// set and the accumulated opacity is 1; otherwise it takes part in depth
// peeling.
type Mesh struct {
	Name     string
	Geometry Geometry
	Color    core.Color // straight alpha
	ObjectID uint32
	Opaque   bool
	Pickable bool
	Visible  bool
	// Overlay meshes only draw in the overlay stage.
	Overlay bool

	api      opengl.API
	programs Programs

	vao, vbo, ebo uint32
	count         int32
	bounds        scene.AABB

	mvp      mgl32.Mat4
	model    mgl32.Mat4
	opacity  float32
	pickable bool
	culled   bool
}

func NewMesh(api opengl.API, programs Programs, name string, geom Geometry) *Mesh {
	return &Mesh{
		Name:     name,
		Geometry: geom,
		Color:    core.ColorWhite,
		Opaque:   true,
		Pickable: true,
		Visible:  true,
		api:      api,
		programs: programs,
		mvp:      mgl32.Ident4(),
		model:    mgl32.Ident4(),
		opacity:  1,
		pickable: true,
	}
}

// Upload creates the vertex array and buffers. Calling it twice is a no-op.
func (m *Mesh) Upload() error {
	if m.vao != 0 {
		return nil
	}
	a := m.api
	m.vao = a.GenVertexArray()
	m.vbo = a.GenBuffer()
	a.BindVertexArray(m.vao)

	a.BindBuffer(opengl.ARRAY_BUFFER, m.vbo)
	a.BufferData(opengl.ARRAY_BUFFER, positionBytes(m.Geometry.Positions), opengl.STATIC_DRAW)
	a.EnableVertexAttribArray(0)
	a.VertexAttribPointer(0, 3, opengl.FLOAT, false, 12, 0)

	if len(m.Geometry.Indices) > 0 {
		m.ebo = a.GenBuffer()
		a.BindBuffer(opengl.ELEMENT_ARRAY_BUFFER, m.ebo)
		a.BufferData(opengl.ELEMENT_ARRAY_BUFFER, indexBytes(m.Geometry.Indices), opengl.STATIC_DRAW)
	}
	a.BindVertexArray(0)
	m.count = int32(m.Geometry.Count())
	lo, hi := m.Geometry.Bounds()
	m.bounds = scene.AABB{Min: lo, Max: hi}
	return opengl.Check(a, "mesh "+m.Name+": upload")
}

// Destroy releases the GPU buffers.
func (m *Mesh) Destroy() {
	if m.vao == 0 {
		return
	}
	m.api.DeleteVertexArray(m.vao)
	m.api.DeleteBuffer(m.vbo)
	if m.ebo != 0 {
		m.api.DeleteBuffer(m.ebo)
	}
	m.vao, m.vbo, m.ebo = 0, 0, 0
}

// IsOpaque reports how the mesh is classified for the current frame.
func (m *Mesh) IsOpaque() bool {
	return m.Opaque && m.Color.A*m.opacity >= 1
}

func (m *Mesh) IsPickable() bool { return m.pickable }

// Culled reports whether the last Update found the mesh outside the camera
// frustum.
func (m *Mesh) Culled() bool { return m.culled }

func (m *Mesh) Update(time float64, viewport core.Viewport, camera *scene.Camera, frame scene.CoordinateFrame, data scene.AccumulatedRenderingData) {
	m.model = frame.WorldFromFrame.Mul4(data.ModelTransform)
	m.mvp = m.model
	m.culled = false
	if camera != nil {
		m.mvp = camera.ViewProjectionMatrix().Mul4(m.model)
		f := camera.Frustum()
		m.culled = m.vao != 0 && !m.bounds.Transform(m.model).IntersectsFrustum(&f)
	}
	m.opacity = data.Opacity
	m.pickable = m.Pickable && data.Pickable
}

func (m *Mesh) Render(stage scene.RenderStage, filter scene.ObjectsToRender) error {
	if !m.Visible || m.culled || m.vao == 0 || m.count == 0 {
		return nil
	}
	if m.Overlay != (stage == scene.StageOverlay) {
		return nil
	}
	if !filter.Matches(m.IsOpaque(), m.pickable) {
		return nil
	}
	name, ok := programFor(stage, filter)
	if !ok {
		return nil
	}
	prog, err := m.programs.Activate(name)
	if err != nil {
		return errors.Wrapf(err, "mesh %q", m.Name)
	}
	if prog == nil {
		return errors.Wrapf(opengl.ErrNullProgram, "mesh %q: %s", m.Name, name)
	}
	if err := prog.ApplyUniforms(m.uniforms(name)); err != nil {
		return errors.Wrapf(err, "mesh %q", m.Name)
	}

	mode := uint32(opengl.TRIANGLES)
	if m.Geometry.Lines {
		mode = opengl.LINES
	}
	m.api.BindVertexArray(m.vao)
	if m.ebo != 0 {
		m.api.DrawElements(mode, m.count, opengl.UNSIGNED_INT, 0)
	} else {
		m.api.DrawArrays(mode, 0, m.count)
	}
	m.api.BindVertexArray(0)
	return nil
}

func (m *Mesh) uniforms(program string) opengl.UniformSet {
	u := m.programs.Uniforms(program)
	c := m.Color
	c.A *= m.opacity
	u[shaders.UniformMVP] = m.mvp
	u[shaders.UniformModel] = m.model
	u[shaders.UniformColor] = mgl32.Vec4{c.R, c.G, c.B, c.A}
	u[shaders.UniformObjectID] = m.ObjectID
	return u
}

// programFor maps a pass to the program a mesh draws with.
func programFor(stage scene.RenderStage, filter scene.ObjectsToRender) (string, bool) {
	switch stage {
	case scene.StageOpaque:
		if filter == scene.RenderPickable {
			return shaders.ProgramObjectID, true
		}
		return shaders.ProgramOpaque, true
	case scene.StageInitialize:
		return shaders.ProgramInit, true
	case scene.StageDepthPeel:
		return shaders.ProgramPeel, true
	case scene.StageOverlay:
		return shaders.ProgramOverlay, true
	}
	return "", false
}
