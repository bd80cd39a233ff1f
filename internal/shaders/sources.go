package shaders

import (
	"github.com/go-gl/mathgl/mgl32"

	"histo-viewer/internal/opengl"
)

// Program names used by drawables. The full-screen program names live in
// package opengl next to the quads that draw them.
const (
	ProgramOpaque   = "opaque"
	ProgramObjectID = "object_id"
	ProgramInit     = "ddp_init"
	ProgramPeel     = "ddp_peel"
	ProgramOverlay  = "overlay"
)

// Uniform names shared by the mesh programs.
const (
	UniformMVP       = "mvp"
	UniformModel     = "model"
	UniformColor     = "color"
	UniformClipPlane = "clipPlane"
	UniformObjectID  = "objectId"
)

// Source is the GLSL text and default uniforms of one program.
type Source struct {
	Vertex   string
	Fragment string
	Defaults opengl.UniformSet
}

// meshVertSrc transforms positions and feeds clip distance 0, which the
// opaque pass enables to cut the near region of a slide stack.
const meshVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 mvp;
uniform mat4 model;
uniform vec4 clipPlane;

void main() {
    vec4 world = model * vec4(inPosition, 1.0);
    gl_ClipDistance[0] = dot(world, clipPlane);
    gl_Position = mvp * vec4(inPosition, 1.0);
}
` + "\x00"

// quadVertSrc is a fullscreen triangle from gl_VertexID; no VBO needed.
const quadVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

const opaqueFragSrc = `
#version 410 core
uniform vec4 color;
out vec4 fragColor;
void main() {
    fragColor = vec4(color.rgb * color.a, color.a);
}
` + "\x00"

const objectIDFragSrc = `
#version 410 core
uniform uint objectId;
layout(location = 0) out uint outID;
layout(location = 1) out float outDepth;
void main() {
    outID    = objectId;
    outDepth = gl_FragCoord.z;
}
` + "\x00"

// initFragSrc writes (-z, z) so MAX blending keeps the nearest and farthest
// translucent depth in front of the opaque surface.
const initFragSrc = `
#version 410 core
uniform sampler2D opaqueDepthTexture;
layout(location = 0) out vec2 outDepth;
void main() {
    float opaque = texelFetch(opaqueDepthTexture, ivec2(gl_FragCoord.xy), 0).r;
    if (gl_FragCoord.z > opaque) {
        discard;
    }
    outDepth = vec2(-gl_FragCoord.z, gl_FragCoord.z);
}
` + "\x00"

// peelFragSrc extracts the next nearest and farthest layers. All three
// outputs are MAX-blended; the front colour accumulates under-blended.
const peelFragSrc = `
#version 410 core
uniform sampler2D depthBlenderTexture;
uniform sampler2D frontBlenderTexture;
uniform sampler2D opaqueDepthTexture;
uniform vec4 color;

layout(location = 0) out vec2 outDepth;
layout(location = 1) out vec4 outFront;
layout(location = 2) out vec4 outBack;

const float MAX_DEPTH = 1.0;

void main() {
    ivec2 px    = ivec2(gl_FragCoord.xy);
    float z     = gl_FragCoord.z;
    float opaque = texelFetch(opaqueDepthTexture, px, 0).r;
    vec2  bounds = texelFetch(depthBlenderTexture, px, 0).xy;
    vec4  front  = texelFetch(frontBlenderTexture, px, 0);

    outDepth = vec2(-MAX_DEPTH);
    outFront = front;
    outBack  = vec4(0.0);

    if (z > opaque) {
        return;
    }
    float nearest  = -bounds.x;
    float farthest = bounds.y;
    if (z < nearest || z > farthest) {
        return;
    }
    if (z > nearest && z < farthest) {
        outDepth = vec2(-z, z);
        return;
    }

    float under = 1.0 - front.a;
    if (z == nearest) {
        outFront.rgb += color.rgb * color.a * under;
        outFront.a    = 1.0 - under * (1.0 - color.a);
    } else {
        outBack = vec4(color.rgb * color.a, color.a);
    }
}
` + "\x00"

// blendFragSrc discards empty texels so the occlusion query only counts
// pixels that still received a back layer.
const blendFragSrc = `
#version 410 core
uniform sampler2D tempTexture;
out vec4 fragColor;
void main() {
    fragColor = texelFetch(tempTexture, ivec2(gl_FragCoord.xy), 0);
    if (fragColor.a == 0.0) {
        discard;
    }
}
` + "\x00"

const finalFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 fragColor;
uniform sampler2D frontBlenderTexture;
uniform sampler2D backBlenderTexture;
void main() {
    vec4 front = texture(frontBlenderTexture, fragUV);
    vec3 back  = texture(backBlenderTexture, fragUV).rgb;
    fragColor  = vec4(front.rgb + (1.0 - front.a) * back, 1.0);
}
` + "\x00"

// debugFragSrc shows float targets directly and hashes object ids to colours.
const debugFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 fragColor;
uniform sampler2D  debugTexture;
uniform usampler2D debugIdTexture;
uniform bool integerTexture;

vec3 hashColor(uint id) {
    uint h = id * 2654435761u;
    return vec3(float(h & 255u), float((h >> 8) & 255u), float((h >> 16) & 255u)) / 255.0;
}

void main() {
    if (integerTexture) {
        uint id = texture(debugIdTexture, fragUV).r;
        fragColor = id == 0u ? vec4(0.0, 0.0, 0.0, 1.0) : vec4(hashColor(id), 1.0);
        return;
    }
    vec4 v = texture(debugTexture, fragUV);
    fragColor = vec4(v.rgb, 1.0);
}
` + "\x00"

// Builtins returns every program the viewer needs, keyed by name.
func Builtins() map[string]Source {
	ident := mgl32.Ident4()
	mesh := func(extra opengl.UniformSet) opengl.UniformSet {
		u := opengl.UniformSet{
			UniformMVP:       ident,
			UniformModel:     ident,
			UniformColor:     mgl32.Vec4{1, 1, 1, 1},
			UniformClipPlane: mgl32.Vec4{0, 0, 0, 1},
		}
		for k, v := range extra {
			u[k] = v
		}
		return u
	}
	return map[string]Source{
		ProgramOpaque: {meshVertSrc, opaqueFragSrc, mesh(nil)},
		ProgramObjectID: {meshVertSrc, objectIDFragSrc, mesh(opengl.UniformSet{
			UniformObjectID: uint32(0),
		})},
		ProgramInit: {meshVertSrc, initFragSrc, mesh(opengl.UniformSet{
			opengl.UniformOpaqueDepthTexture: int32(opengl.OpaqueDepthUnit),
		})},
		ProgramPeel: {meshVertSrc, peelFragSrc, mesh(opengl.UniformSet{
			opengl.UniformDepthBlenderTexture: int32(opengl.PeelDepthUnit),
			opengl.UniformPeelFrontTexture:    int32(opengl.PeelFrontUnit),
			opengl.UniformOpaqueDepthTexture:  int32(opengl.OpaqueDepthUnit),
		})},
		ProgramOverlay: {meshVertSrc, opaqueFragSrc, mesh(nil)},
		opengl.ProgramBlend: {quadVertSrc, blendFragSrc, opengl.UniformSet{
			opengl.UniformTempTexture: int32(0),
		}},
		opengl.ProgramFinal: {quadVertSrc, finalFragSrc, opengl.UniformSet{
			opengl.UniformFrontBlenderTexture: int32(0),
			opengl.UniformBackBlenderTexture:  int32(1),
		}},
		opengl.ProgramDebug: {quadVertSrc, debugFragSrc, opengl.UniformSet{
			opengl.UniformDebugTexture:   int32(0),
			opengl.UniformDebugIDTexture: int32(1),
			opengl.UniformDebugInteger:   false,
		}},
	}
}
