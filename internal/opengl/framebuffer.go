package opengl

import (
	"github.com/pkg/errors"
)

// FramebufferTarget selects the binding point(s) of a framebuffer.
type FramebufferTarget int

const (
	FramebufferDraw FramebufferTarget = iota
	FramebufferRead
	FramebufferDrawAndRead
)

func (t FramebufferTarget) glEnum() uint32 {
	switch t {
	case FramebufferDraw:
		return DRAW_FRAMEBUFFER
	case FramebufferRead:
		return READ_FRAMEBUFFER
	}
	return FRAMEBUFFER
}

// AttachmentType is the kind of framebuffer attachment point.
type AttachmentType int

const (
	AttachColor AttachmentType = iota
	AttachDepth
	AttachDepthStencil
)

// NoColorIndex marks a non-colour attachment.
const NoColorIndex = -1

// FramebufferObject is an owned off-screen render target.
type FramebufferObject struct {
	api API
	id  uint32
}

func NewFramebufferObject(api API) *FramebufferObject {
	return &FramebufferObject{api: api}
}

func (f *FramebufferObject) ID() uint32 { return f.id }

// Generate creates the GL name. Calling it twice is a no-op.
func (f *FramebufferObject) Generate() error {
	if f.id != 0 {
		return nil
	}
	f.id = f.api.GenFramebuffer()
	return Check(f.api, "FramebufferObject.Generate")
}

func (f *FramebufferObject) Bind(target FramebufferTarget) {
	f.api.BindFramebuffer(target.glEnum(), f.id)
}

// Attach2DTexture binds the framebuffer to target and attaches tex. Colour
// attachments need colorIndex >= 0. The framebuffer must be complete
// afterwards; an incomplete framebuffer is returned as
// *IncompleteFramebufferError.
func (f *FramebufferObject) Attach2DTexture(target FramebufferTarget, attachment AttachmentType, tex *Texture, colorIndex int) error {
	if f.id == 0 {
		return errors.Wrap(ErrNotGenerated, "FramebufferObject.Attach2DTexture")
	}
	var point uint32
	switch attachment {
	case AttachColor:
		if colorIndex < 0 {
			return errors.WithStack(ErrMissingColorIndex)
		}
		point = COLOR_ATTACHMENT0 + uint32(colorIndex)
	case AttachDepth:
		point = DEPTH_ATTACHMENT
	case AttachDepthStencil:
		point = DEPTH_STENCIL_ATTACHMENT
	default:
		return errors.Errorf("unknown attachment type %d", attachment)
	}

	t := target.glEnum()
	f.api.BindFramebuffer(t, f.id)
	f.api.FramebufferTexture2D(t, point, tex.Target(), tex.ID(), 0)
	if err := Check(f.api, "FramebufferObject.Attach2DTexture"); err != nil {
		return err
	}
	return f.CheckComplete(target)
}

// CheckComplete binds the framebuffer to target and verifies completeness.
func (f *FramebufferObject) CheckComplete(target FramebufferTarget) error {
	t := target.glEnum()
	f.api.BindFramebuffer(t, f.id)
	if status := f.api.CheckFramebufferStatus(t); status != FRAMEBUFFER_COMPLETE {
		return errors.WithStack(&IncompleteFramebufferError{Framebuffer: f.id, Status: status})
	}
	return nil
}

// SetDrawBuffers routes fragment outputs 0..n-1 to the given colour
// attachment indices of the currently bound draw framebuffer.
func (f *FramebufferObject) SetDrawBuffers(indices ...int) {
	buffers := make([]uint32, len(indices))
	for i, idx := range indices {
		buffers[i] = COLOR_ATTACHMENT0 + uint32(idx)
	}
	f.api.DrawBuffers(buffers)
}

func (f *FramebufferObject) Delete() {
	if f.id == 0 {
		return
	}
	f.api.DeleteFramebuffer(f.id)
	f.id = 0
}
