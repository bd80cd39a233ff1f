package shaders

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"histo-viewer/core"
)

type uniformKind int

const (
	kindInt uniformKind = iota
	kindUint
	kindFloat
	kindVec2
	kindVec3
	kindVec4
	kindMat4
)

// uniformValue is a UniformSet entry normalized to what glUniform* takes.
type uniformValue struct {
	kind   uniformKind
	i      int32
	u      uint32
	floats []float32
}

// normalize converts a Go value to a uniformValue. Unsupported types are an
// error rather than a silent no-op.
func normalize(v any) (uniformValue, error) {
	switch x := v.(type) {
	case int32:
		return uniformValue{kind: kindInt, i: x}, nil
	case int:
		return uniformValue{kind: kindInt, i: int32(x)}, nil
	case bool:
		if x {
			return uniformValue{kind: kindInt, i: 1}, nil
		}
		return uniformValue{kind: kindInt}, nil
	case uint32:
		return uniformValue{kind: kindUint, u: x}, nil
	case float32:
		return uniformValue{kind: kindFloat, floats: []float32{x}}, nil
	case float64:
		return uniformValue{kind: kindFloat, floats: []float32{float32(x)}}, nil
	case mgl32.Vec2:
		return uniformValue{kind: kindVec2, floats: x[:]}, nil
	case mgl32.Vec3:
		return uniformValue{kind: kindVec3, floats: x[:]}, nil
	case mgl32.Vec4:
		return uniformValue{kind: kindVec4, floats: x[:]}, nil
	case core.Color:
		return uniformValue{kind: kindVec4, floats: []float32{x.R, x.G, x.B, x.A}}, nil
	case mgl32.Mat4:
		return uniformValue{kind: kindMat4, floats: x[:]}, nil
	}
	return uniformValue{}, errors.Errorf("unsupported uniform type %T", v)
}
