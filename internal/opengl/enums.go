package opengl

// OpenGL enum values used by the renderer. They mirror the values in
// github.com/go-gl/gl/v4.1-core/gl so this package stays free of cgo and can
// be driven by an in-memory API in tests.
const (
	NONE = 0

	NO_ERROR                      = 0
	INVALID_ENUM                  = 0x0500
	INVALID_VALUE                 = 0x0501
	INVALID_OPERATION             = 0x0502
	OUT_OF_MEMORY                 = 0x0505
	INVALID_FRAMEBUFFER_OPERATION = 0x0506

	TEXTURE_2D             = 0x0DE1
	TEXTURE_2D_MULTISAMPLE = 0x9100
	TEXTURE0               = 0x84C0
	TEXTURE_MIN_FILTER     = 0x2801
	TEXTURE_MAG_FILTER     = 0x2800
	TEXTURE_WRAP_S         = 0x2802
	TEXTURE_WRAP_T         = 0x2803
	NEAREST                = 0x2600
	CLAMP_TO_EDGE          = 0x812F

	RGBA8              = 0x8058
	RGBA32F            = 0x8814
	RG32F              = 0x8230
	R32F               = 0x822E
	R32UI              = 0x8236
	DEPTH_COMPONENT32F = 0x8CAC

	RGBA            = 0x1908
	RG              = 0x8227
	RED             = 0x1903
	RED_INTEGER     = 0x8D94
	RG_INTEGER      = 0x8228
	RGBA_INTEGER    = 0x8D99
	DEPTH_COMPONENT = 0x1902

	UNSIGNED_BYTE = 0x1401
	UNSIGNED_INT  = 0x1405
	FLOAT         = 0x1406

	FRAMEBUFFER              = 0x8D40
	READ_FRAMEBUFFER         = 0x8CA8
	DRAW_FRAMEBUFFER         = 0x8CA9
	FRAMEBUFFER_COMPLETE     = 0x8CD5
	COLOR_ATTACHMENT0        = 0x8CE0
	DEPTH_ATTACHMENT         = 0x8D00
	DEPTH_STENCIL_ATTACHMENT = 0x821A

	FRAMEBUFFER_INCOMPLETE_ATTACHMENT         = 0x8CD6
	FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT = 0x8CD7
	FRAMEBUFFER_UNSUPPORTED                   = 0x8CDD
	FRAMEBUFFER_INCOMPLETE_MULTISAMPLE        = 0x8D56

	SAMPLES_PASSED = 0x8914

	DEPTH_TEST     = 0x0B71
	BLEND          = 0x0BE2
	MULTISAMPLE    = 0x809D
	CLIP_DISTANCE0 = 0x3000

	FUNC_ADD            = 0x8006
	MAX                 = 0x8008
	ZERO                = 0
	ONE                 = 1
	SRC_ALPHA           = 0x0302
	ONE_MINUS_SRC_ALPHA = 0x0303

	LESS   = 0x0201
	LEQUAL = 0x0203

	COLOR_BUFFER_BIT = 0x4000
	DEPTH_BUFFER_BIT = 0x0100

	COLOR = 0x1800
	DEPTH = 0x1801

	TRIANGLES = 0x0004
	LINES     = 0x0001

	ARRAY_BUFFER         = 0x8892
	ELEMENT_ARRAY_BUFFER = 0x8893
	STATIC_DRAW          = 0x88E4
)

// ErrorName returns the symbolic name of a glGetError code.
func ErrorName(code uint32) string {
	switch code {
	case NO_ERROR:
		return "GL_NO_ERROR"
	case INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	}
	return "GL_UNKNOWN_ERROR"
}

// FramebufferStatusName returns the symbolic name of a completeness status.
func FramebufferStatusName(status uint32) string {
	switch status {
	case FRAMEBUFFER_COMPLETE:
		return "GL_FRAMEBUFFER_COMPLETE"
	case FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return "GL_FRAMEBUFFER_INCOMPLETE_ATTACHMENT"
	case FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return "GL_FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT"
	case FRAMEBUFFER_UNSUPPORTED:
		return "GL_FRAMEBUFFER_UNSUPPORTED"
	case FRAMEBUFFER_INCOMPLETE_MULTISAMPLE:
		return "GL_FRAMEBUFFER_INCOMPLETE_MULTISAMPLE"
	}
	return "GL_FRAMEBUFFER_STATUS_UNKNOWN"
}
