package shaders

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"histo-viewer/core"
	"histo-viewer/internal/opengl"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in     any
		kind   uniformKind
		floats []float32
	}{
		{int32(3), kindInt, nil},
		{7, kindInt, nil},
		{true, kindInt, nil},
		{uint32(9), kindUint, nil},
		{float32(0.5), kindFloat, []float32{0.5}},
		{0.25, kindFloat, []float32{0.25}},
		{mgl32.Vec2{1, 2}, kindVec2, []float32{1, 2}},
		{mgl32.Vec3{1, 2, 3}, kindVec3, []float32{1, 2, 3}},
		{mgl32.Vec4{1, 2, 3, 4}, kindVec4, []float32{1, 2, 3, 4}},
		{core.Color{R: 0.1, G: 0.2, B: 0.3, A: 0.4}, kindVec4, []float32{0.1, 0.2, 0.3, 0.4}},
	}
	for _, tt := range tests {
		v, err := normalize(tt.in)
		require.NoError(t, err, "%T", tt.in)
		assert.Equal(t, tt.kind, v.kind, "%T", tt.in)
		if tt.floats != nil {
			assert.Equal(t, tt.floats, v.floats, "%T", tt.in)
		}
	}

	v, err := normalize(true)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v.i)

	m, err := normalize(mgl32.Ident4())
	require.NoError(t, err)
	assert.Equal(t, kindMat4, m.kind)
	assert.Len(t, m.floats, 16)

	_, err = normalize("red")
	assert.ErrorContains(t, err, "unsupported uniform type string")
}

func TestBuiltinsAreComplete(t *testing.T) {
	builtins := Builtins()
	for _, name := range []string{
		ProgramOpaque, ProgramObjectID, ProgramInit, ProgramPeel, ProgramOverlay,
		opengl.ProgramBlend, opengl.ProgramFinal, opengl.ProgramDebug,
	} {
		src, ok := builtins[name]
		require.True(t, ok, name)
		for _, s := range []string{src.Vertex, src.Fragment} {
			assert.True(t, strings.HasSuffix(s, "\x00"), "%s must be NUL terminated", name)
			assert.Contains(t, s, "#version 410 core", name)
		}
		for uniform, v := range src.Defaults {
			_, err := normalize(v)
			assert.NoError(t, err, "%s.%s", name, uniform)
			if _, sampler := v.(int32); sampler {
				assert.Contains(t, src.Fragment, uniform, "%s declares %s", name, uniform)
			}
		}
	}
	assert.Len(t, builtins, 8)
}

func TestPeelSamplersMatchRendererUnits(t *testing.T) {
	peel := Builtins()[ProgramPeel].Defaults
	assert.Equal(t, int32(opengl.PeelDepthUnit), peel[opengl.UniformDepthBlenderTexture])
	assert.Equal(t, int32(opengl.PeelFrontUnit), peel[opengl.UniformPeelFrontTexture])
	assert.Equal(t, int32(opengl.OpaqueDepthUnit), peel[opengl.UniformOpaqueDepthTexture])
}

func TestRegistryLookups(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))

	_, err := r.Activate("missing")
	assert.ErrorContains(t, err, `unknown shader program "missing"`)
	assert.Empty(t, r.Uniforms("missing"))

	r.defaults["opaque"] = opengl.UniformSet{UniformColor: mgl32.Vec4{1, 0, 0, 1}}
	u := r.Uniforms("opaque")
	u[UniformColor] = mgl32.Vec4{0, 1, 0, 1}
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, r.defaults["opaque"][UniformColor])

	r.programs["opaque"] = &Program{name: "opaque", id: 3, locations: map[string]int32{}}
	r.programs["blend"] = &Program{name: "blend", id: 4, locations: map[string]int32{}}
	assert.Equal(t, []string{"blend", "opaque"}, r.Names())
}

func TestApplyUniformsRejectsUnsupportedTypes(t *testing.T) {
	p := &Program{name: "opaque", locations: map[string]int32{}}
	err := p.ApplyUniforms(opengl.UniformSet{"tint": []int{1}})
	assert.ErrorContains(t, err, "opaque.tint")
}
