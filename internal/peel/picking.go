package peel

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"histo-viewer/internal/opengl"
)

// Returned by PickObjectIDAndNDCDepth when nothing can be picked.
const (
	NoObject   uint32  = 0
	NoNDCDepth float32 = -1
)

// pickBuffer is the CPU copy of the object-ID and depth attachments. It is
// refetched at most once after each invalidation. valid is set only by an
// object-ID pass over the current attachments.
type pickBuffer struct {
	ids    []uint32
	depths []float32
	width  int
	height int
	dirty  bool
	valid  bool
}

func (p *pickBuffer) invalidate() { p.dirty = true }

// discard marks the GPU attachments stale until the next object-ID pass.
func (p *pickBuffer) discard() {
	p.dirty = true
	p.valid = false
}

// refresh reads both attachments back when the buffer is dirty or the
// viewport size changed.
func (p *pickBuffer) refresh(t *targets, width, height int) error {
	if !p.dirty && p.width == width && p.height == height && p.ids != nil {
		return nil
	}
	n := width * height
	if cap(p.ids) < n {
		p.ids = make([]uint32, n)
		p.depths = make([]float32, n)
	}
	p.ids = p.ids[:n]
	p.depths = p.depths[:n]

	if err := t.objectID.ReadData(0, opengl.RED_INTEGER, opengl.UNSIGNED_INT, uint32Bytes(p.ids)); err != nil {
		return errors.Wrap(err, "read object ids")
	}
	if err := t.objectDepth.ReadData(0, opengl.RED, opengl.FLOAT, float32Bytes(p.depths)); err != nil {
		return errors.Wrap(err, "read object depths")
	}
	p.width, p.height = width, height
	p.dirty = false
	return nil
}

func (p *pickBuffer) at(x, y int) (uint32, float32) {
	i := y*p.width + x
	return p.ids[i], p.depths[i]
}

// PickObjectIDAndNDCDepth returns the object id and NDC depth of the topmost
// pickable opaque surface under ndc, with ndc in [-1, 1]² and y pointing up.
// It returns (NoObject, NoNDCDepth) when picking is disabled, no object-ID
// pass has run since initialization, the last resize or the last enable, or
// the position falls outside the viewport.
func (r *Renderer) PickObjectIDAndNDCDepth(ndc mgl32.Vec2) (uint32, float32) {
	if !r.cfg.PointPicking || r.targets == nil || !r.pick.valid {
		return NoObject, NoNDCDepth
	}
	x, y := r.viewport.NDCToPixel(ndc.X(), ndc.Y())
	if !r.viewport.Contains(x, y) {
		return NoObject, NoNDCDepth
	}
	if err := r.pick.refresh(r.targets, r.viewport.Width, r.viewport.Height); err != nil {
		r.log.Error("picking readback failed", zap.Error(err))
		return NoObject, NoNDCDepth
	}
	id, depth := r.pick.at(x, y)
	return id, 2*depth - 1
}

func uint32Bytes(s []uint32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}

func float32Bytes(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}
