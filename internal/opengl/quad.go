package opengl

import (
	"github.com/pkg/errors"
)

// Sampler uniform names of the full-screen programs.
const (
	UniformTempTexture         = "tempTexture"
	UniformFrontBlenderTexture = "frontBlenderTexture"
	UniformBackBlenderTexture  = "backBlenderTexture"
	UniformDebugTexture        = "debugTexture"
	UniformDebugIDTexture      = "debugIdTexture"
	UniformDebugInteger        = "integerTexture"
)

// fullScreenQuad draws one screen-covering triangle. The vertex shader builds
// the positions from gl_VertexID, so the vertex array stays empty.
type fullScreenQuad struct {
	api      API
	program  string
	shaders  ShaderActivator
	uniforms UniformSet
	vao      uint32
}

func newFullScreenQuad(api API, program string, shaders ShaderActivator, src UniformsSource) fullScreenQuad {
	q := fullScreenQuad{api: api, program: program, shaders: shaders}
	if src != nil {
		q.uniforms = src.Uniforms(program).Clone()
	} else {
		q.uniforms = UniformSet{}
	}
	return q
}

// Init creates the vertex array. Calling it twice is a no-op.
func (q *fullScreenQuad) Init() error {
	if q.vao != 0 {
		return nil
	}
	q.vao = q.api.GenVertexArray()
	return Check(q.api, q.program+": create vertex array")
}

func (q *fullScreenQuad) Destroy() {
	if q.vao == 0 {
		return
	}
	q.api.DeleteVertexArray(q.vao)
	q.vao = 0
}

func (q *fullScreenQuad) draw() error {
	if q.vao == 0 {
		return errors.Wrap(ErrNotGenerated, q.program+": vertex array")
	}
	if q.shaders == nil {
		return errors.Wrap(ErrNullProgram, q.program+": no shader activator")
	}
	prog, err := q.shaders.Activate(q.program)
	if err != nil {
		return errors.Wrapf(err, "activate %s", q.program)
	}
	if prog == nil {
		return errors.Wrap(ErrNullProgram, q.program)
	}
	if err := prog.ApplyUniforms(q.uniforms); err != nil {
		return errors.Wrapf(err, "%s uniforms", q.program)
	}

	q.api.BindVertexArray(q.vao)
	q.api.DrawArrays(TRIANGLES, 0, 3)
	q.api.BindVertexArray(0)
	return Check(q.api, q.program+": draw")
}

// ── BlendQuad ─────────────────────────────────────────────────────────────────

// BlendQuad composites the back colour of the current peel into the back
// blender. The blend state is owned by the caller.
type BlendQuad struct {
	fullScreenQuad
	backTemp *[2]*Texture
}

func NewBlendQuad(api API, shaders ShaderActivator, src UniformsSource, backTemp *[2]*Texture) *BlendQuad {
	return &BlendQuad{
		fullScreenQuad: newFullScreenQuad(api, ProgramBlend, shaders, src),
		backTemp:       backTemp,
	}
}

// Render samples backTemp[slot] on unit 0.
func (q *BlendQuad) Render(slot int) error {
	q.backTemp[slot].Bind(0)
	q.uniforms[UniformTempTexture] = int32(0)
	return q.draw()
}

// ── FinalQuad ─────────────────────────────────────────────────────────────────

// FinalQuad writes front-blend over back-blend into the bound framebuffer.
type FinalQuad struct {
	fullScreenQuad
	frontBlend  *[2]*Texture
	backBlender *Texture
}

func NewFinalQuad(api API, shaders ShaderActivator, src UniformsSource, frontBlend *[2]*Texture, backBlender *Texture) *FinalQuad {
	return &FinalQuad{
		fullScreenQuad: newFullScreenQuad(api, ProgramFinal, shaders, src),
		frontBlend:     frontBlend,
		backBlender:    backBlender,
	}
}

// Render samples frontBlend[slot] on unit 0 and the back blender on unit 1.
// The colour buffer is cleared first so stale pixels never reach a later
// occlusion-query pass.
func (q *FinalQuad) Render(slot int) error {
	q.api.ClearColor(0, 0, 0, 0)
	q.api.Clear(COLOR_BUFFER_BIT)

	q.frontBlend[slot].Bind(0)
	q.backBlender.Bind(1)
	q.uniforms[UniformFrontBlenderTexture] = int32(0)
	q.uniforms[UniformBackBlenderTexture] = int32(1)
	return q.draw()
}

// ── DebugQuad ─────────────────────────────────────────────────────────────────

// DebugQuad displays a single texture, for inspecting intermediate targets.
type DebugQuad struct {
	fullScreenQuad
	texture *Texture
}

func NewDebugQuad(api API, shaders ShaderActivator, src UniformsSource) *DebugQuad {
	return &DebugQuad{fullScreenQuad: newFullScreenQuad(api, ProgramDebug, shaders, src)}
}

// SetTexture selects the texture shown by Render. It is not owned.
func (q *DebugQuad) SetTexture(tex *Texture) { q.texture = tex }

// Render draws the selected texture. Integer textures are bound on unit 1 so
// the float and unsigned samplers never share a unit.
func (q *DebugQuad) Render() error {
	if q.texture == nil {
		return nil
	}
	q.uniforms[UniformDebugTexture] = int32(0)
	q.uniforms[UniformDebugIDTexture] = int32(1)
	if q.texture.IsInteger() {
		q.texture.Bind(1)
		q.uniforms[UniformDebugInteger] = true
	} else {
		q.texture.Bind(0)
		q.uniforms[UniformDebugInteger] = false
	}
	return q.draw()
}
