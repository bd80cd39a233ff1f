package peel

import (
	"github.com/pkg/errors"

	"histo-viewer/internal/opengl"
)

// Colour attachment layout of the peeling framebuffer. Slot s uses
// attachments 3s (depth), 3s+1 (front blend) and 3s+2 (back temp).
func depthAttachment(slot int) int { return 3 * slot }
func frontAttachment(slot int) int { return 3*slot + 1 }
func backAttachment(slot int) int  { return 3*slot + 2 }

type textureSpec struct {
	tex            *opengl.Texture
	internalFormat int32
	format         uint32
	xtype          uint32
}

// targets owns every texture, framebuffer and query of the renderer.
type targets struct {
	// Ping-pong pairs indexed by slot.
	depth      [2]*opengl.Texture // RG32F: (-nearest, farthest)
	frontBlend [2]*opengl.Texture // RGBA32F
	backTemp   [2]*opengl.Texture // RGBA32F

	// backBlend receives the resolved opaque colour; peeled back layers are
	// blended over it.
	backBlend   *opengl.Texture
	opaqueDepth *opengl.Texture

	opaqueMSColor *opengl.Texture
	opaqueMSDepth *opengl.Texture

	objectID    *opengl.Texture // R32UI
	objectDepth *opengl.Texture // R32F window-space depth
	pickDepth   *opengl.Texture

	peelFBO     *opengl.FramebufferObject
	resolveFBO  *opengl.FramebufferObject
	opaqueMSFBO *opengl.FramebufferObject
	pickFBO     *opengl.FramebufferObject

	query *opengl.QueryObject

	specs []textureSpec
	fbos  []*opengl.FramebufferObject
}

func newTargets(api opengl.API, samples int) (*targets, error) {
	t := &targets{}

	tex2D := func(internalFormat int32, format, xtype uint32) *opengl.Texture {
		tex := opengl.NewTexture(api)
		t.specs = append(t.specs, textureSpec{tex, internalFormat, format, xtype})
		return tex
	}
	texMS := func(internalFormat int32) *opengl.Texture {
		tex := opengl.NewMultisampleTexture(api, samples)
		t.specs = append(t.specs, textureSpec{tex, internalFormat, 0, 0})
		return tex
	}

	for i := 0; i < 2; i++ {
		t.depth[i] = tex2D(opengl.RG32F, opengl.RG, opengl.FLOAT)
		t.frontBlend[i] = tex2D(opengl.RGBA32F, opengl.RGBA, opengl.FLOAT)
		t.backTemp[i] = tex2D(opengl.RGBA32F, opengl.RGBA, opengl.FLOAT)
	}
	t.backBlend = tex2D(opengl.RGBA32F, opengl.RGBA, opengl.FLOAT)
	t.opaqueDepth = tex2D(opengl.DEPTH_COMPONENT32F, opengl.DEPTH_COMPONENT, opengl.FLOAT)
	t.opaqueMSColor = texMS(opengl.RGBA32F)
	t.opaqueMSDepth = texMS(opengl.DEPTH_COMPONENT32F)
	t.objectID = tex2D(opengl.R32UI, opengl.RED_INTEGER, opengl.UNSIGNED_INT)
	t.objectDepth = tex2D(opengl.R32F, opengl.RED, opengl.FLOAT)
	t.pickDepth = tex2D(opengl.DEPTH_COMPONENT32F, opengl.DEPTH_COMPONENT, opengl.FLOAT)

	for _, s := range t.specs {
		if err := s.tex.Generate(); err != nil {
			return t, err
		}
		if err := s.tex.SetData(0, s.internalFormat, s.format, s.xtype, nil); err != nil {
			return t, err
		}
	}

	t.peelFBO = opengl.NewFramebufferObject(api)
	t.resolveFBO = opengl.NewFramebufferObject(api)
	t.opaqueMSFBO = opengl.NewFramebufferObject(api)
	t.pickFBO = opengl.NewFramebufferObject(api)
	t.fbos = []*opengl.FramebufferObject{t.peelFBO, t.resolveFBO, t.opaqueMSFBO, t.pickFBO}
	for _, f := range t.fbos {
		if err := f.Generate(); err != nil {
			return t, err
		}
	}

	type attachment struct {
		fbo   *opengl.FramebufferObject
		kind  opengl.AttachmentType
		tex   *opengl.Texture
		index int
	}
	var attachments []attachment
	for s := 0; s < 2; s++ {
		attachments = append(attachments,
			attachment{t.peelFBO, opengl.AttachColor, t.depth[s], depthAttachment(s)},
			attachment{t.peelFBO, opengl.AttachColor, t.frontBlend[s], frontAttachment(s)},
			attachment{t.peelFBO, opengl.AttachColor, t.backTemp[s], backAttachment(s)},
		)
	}
	attachments = append(attachments,
		attachment{t.resolveFBO, opengl.AttachColor, t.backBlend, 0},
		attachment{t.resolveFBO, opengl.AttachDepth, t.opaqueDepth, opengl.NoColorIndex},
		attachment{t.opaqueMSFBO, opengl.AttachColor, t.opaqueMSColor, 0},
		attachment{t.opaqueMSFBO, opengl.AttachDepth, t.opaqueMSDepth, opengl.NoColorIndex},
		attachment{t.pickFBO, opengl.AttachColor, t.objectID, 0},
		attachment{t.pickFBO, opengl.AttachColor, t.objectDepth, 1},
		attachment{t.pickFBO, opengl.AttachDepth, t.pickDepth, opengl.NoColorIndex},
	)
	for _, a := range attachments {
		if err := a.fbo.Attach2DTexture(opengl.FramebufferDrawAndRead, a.kind, a.tex, a.index); err != nil {
			return t, errors.Wrapf(err, "attach texture %d to framebuffer %d", a.tex.ID(), a.fbo.ID())
		}
	}
	api.BindFramebuffer(opengl.FRAMEBUFFER, 0)

	t.query = opengl.NewQueryObject(api)
	if err := t.query.Generate(); err != nil {
		return t, err
	}
	return t, nil
}

// resize reallocates every texture at width×height and re-checks every
// framebuffer. Texture contents are undefined afterwards.
func (t *targets) resize(width, height int) error {
	for _, s := range t.specs {
		if err := s.tex.SetSize(width, height); err != nil {
			return err
		}
		if err := s.tex.Reallocate(); err != nil {
			return err
		}
	}
	for _, f := range t.fbos {
		if err := f.CheckComplete(opengl.FramebufferDrawAndRead); err != nil {
			return errors.Wrap(err, "after resize")
		}
	}
	return nil
}

// releaseQueries deletes the occlusion query.
func (t *targets) releaseQueries() {
	if t.query != nil {
		t.query.Delete()
	}
}

func (t *targets) destroy() {
	t.releaseQueries()
	for _, f := range t.fbos {
		f.Delete()
	}
	for _, s := range t.specs {
		s.tex.Delete()
	}
}
