package opengl

// UniformSet maps uniform names to values. Supported value types are decided
// by the Program implementation; the renderer itself only writes int32
// sampler units.
type UniformSet map[string]any

// Clone returns a shallow copy so per-draw values never leak into defaults.
func (u UniformSet) Clone() UniformSet {
	c := make(UniformSet, len(u))
	for k, v := range u {
		c[k] = v
	}
	return c
}

// Program is an activated shader program.
type Program interface {
	ApplyUniforms(u UniformSet) error
}

// ShaderActivator makes the named program current and returns it.
type ShaderActivator interface {
	Activate(name string) (Program, error)
}

// UniformsSource supplies the registered default uniforms of a program.
type UniformsSource interface {
	Uniforms(name string) UniformSet
}

// Names of the programs driven directly by the renderer's full-screen passes.
const (
	ProgramBlend = "ddp_blend"
	ProgramFinal = "ddp_final"
	ProgramDebug = "debug_quad"
)

// Texture units bound by the renderer while translucent geometry is drawn
// with StageDepthPeel, and the sampler names peel shaders are expected to use.
const (
	PeelDepthUnit   = 0
	PeelFrontUnit   = 1
	OpaqueDepthUnit = 2

	UniformDepthBlenderTexture = "depthBlenderTexture"
	UniformPeelFrontTexture    = "frontBlenderTexture"
	UniformOpaqueDepthTexture  = "opaqueDepthTexture"
)
