package peel

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"histo-viewer/internal/opengl"
	"histo-viewer/scene"
)

// maxDepth is the clear value of the depth ping-pong textures; cleared to
// (-maxDepth, -maxDepth) so MAX blending accepts any first fragment.
const maxDepth = math.MaxFloat32

var (
	zeroColor  = []float32{0, 0, 0, 0}
	depthClear = []float32{-maxDepth, -maxDepth, 0, 0}
)

// Render executes the full pass sequence once. It fails fast when the scene
// root source or shader activator is missing; any GL error aborts the frame.
func (r *Renderer) Render() error {
	if r.targets == nil {
		return errors.WithStack(ErrNotInitialized)
	}
	if r.sceneRoot == nil {
		return errors.Wrap(ErrMissingProvider, "scene root source")
	}
	if r.shaders == nil {
		return errors.Wrap(ErrMissingProvider, "shader activator")
	}

	root := r.sceneRoot.Root()
	var overlay scene.Drawable
	if r.overlayRoot != nil {
		overlay = r.overlayRoot.Root()
	}

	stats := FrameStats{}
	w, h := int32(r.viewport.Width), int32(r.viewport.Height)
	r.api.Viewport(0, 0, w, h)

	if r.cfg.PointPicking {
		if err := r.objectIDPass(root); err != nil {
			return errors.Wrap(err, "object-id pass")
		}
		stats.ObjectIDPass = true
	}
	if err := r.opaquePass(root); err != nil {
		return errors.Wrap(err, "opaque pass")
	}
	if err := r.resolveOpaque(); err != nil {
		return errors.Wrap(err, "opaque resolve")
	}

	r.api.Disable(opengl.MULTISAMPLE)
	r.api.Disable(opengl.DEPTH_TEST)
	r.api.DepthMask(false)

	r.clearSlot(0)
	if err := r.initializeDepths(root); err != nil {
		return errors.Wrap(err, "depth initialization")
	}

	last, err := r.peelLoop(root, &stats)
	if err != nil {
		return err
	}

	if err := r.compose(last); err != nil {
		return errors.Wrap(err, "final composition")
	}
	if err := r.overlayPass(overlay); err != nil {
		return errors.Wrap(err, "overlay pass")
	}
	if err := r.debugPass(last); err != nil {
		return errors.Wrap(err, "debug view")
	}

	r.stats = stats
	return nil
}

// ── Step 0: object ids ────────────────────────────────────────────────────────

func (r *Renderer) objectIDPass(root scene.Drawable) error {
	t := r.targets
	t.pickFBO.Bind(opengl.FramebufferDraw)
	t.pickFBO.SetDrawBuffers(0, 1)
	r.api.ClearBufferuiv(opengl.COLOR, 0, []uint32{0, 0, 0, 0})
	r.api.ClearBufferfv(opengl.COLOR, 1, []float32{1, 0, 0, 0})
	r.api.ClearBufferfv(opengl.DEPTH, 0, []float32{1})

	r.api.Enable(opengl.DEPTH_TEST)
	r.api.DepthFunc(opengl.LESS)
	r.api.DepthMask(true)
	r.api.Disable(opengl.BLEND)

	if root != nil {
		if err := root.Render(scene.StageOpaque, scene.RenderPickable); err != nil {
			return err
		}
	}
	r.pick.invalidate()
	r.pick.valid = true
	return opengl.Check(r.api, "object-id pass")
}

// ── Steps 1-2: opaque geometry ────────────────────────────────────────────────

func (r *Renderer) opaquePass(root scene.Drawable) error {
	t := r.targets
	bg := r.cfg.Background
	t.opaqueMSFBO.Bind(opengl.FramebufferDraw)
	t.opaqueMSFBO.SetDrawBuffers(0)
	r.api.ClearBufferfv(opengl.COLOR, 0, []float32{bg.R, bg.G, bg.B, bg.A})
	r.api.ClearBufferfv(opengl.DEPTH, 0, []float32{1})

	r.api.Enable(opengl.MULTISAMPLE)
	r.api.Enable(opengl.DEPTH_TEST)
	r.api.DepthFunc(opengl.LESS)
	r.api.DepthMask(true)
	r.api.Disable(opengl.BLEND)
	r.api.Enable(opengl.CLIP_DISTANCE0)

	var err error
	if root != nil {
		err = root.Render(scene.StageOpaque, scene.RenderOpaque)
	}
	r.api.Disable(opengl.CLIP_DISTANCE0)
	if err != nil {
		return err
	}
	return opengl.Check(r.api, "opaque pass")
}

func (r *Renderer) resolveOpaque() error {
	t := r.targets
	w, h := int32(r.viewport.Width), int32(r.viewport.Height)
	t.opaqueMSFBO.Bind(opengl.FramebufferRead)
	t.resolveFBO.Bind(opengl.FramebufferDraw)
	t.resolveFBO.SetDrawBuffers(0)
	r.api.BlitFramebuffer(0, 0, w, h, 0, 0, w, h,
		opengl.COLOR_BUFFER_BIT|opengl.DEPTH_BUFFER_BIT, opengl.NEAREST)
	return opengl.Check(r.api, "opaque resolve")
}

// ── Steps 3-6: depth peeling ──────────────────────────────────────────────────

// clearSlot clears the depth, front-blend and back-temp textures of slot.
func (r *Renderer) clearSlot(slot int) {
	t := r.targets
	t.peelFBO.Bind(opengl.FramebufferDraw)
	t.peelFBO.SetDrawBuffers(depthAttachment(slot), frontAttachment(slot), backAttachment(slot))
	r.api.ClearBufferfv(opengl.COLOR, 0, depthClear)
	r.api.ClearBufferfv(opengl.COLOR, 1, zeroColor)
	r.api.ClearBufferfv(opengl.COLOR, 2, zeroColor)
}

func (r *Renderer) initializeDepths(root scene.Drawable) error {
	t := r.targets
	t.peelFBO.SetDrawBuffers(depthAttachment(0))
	r.api.Enable(opengl.BLEND)
	r.api.BlendEquation(opengl.MAX)
	t.opaqueDepth.Bind(opengl.OpaqueDepthUnit)

	if root != nil {
		if err := root.Render(scene.StageInitialize, scene.RenderTranslucent); err != nil {
			return err
		}
	}
	return opengl.Check(r.api, "depth initialization")
}

// peelLoop runs steps 5-7 and returns the slot holding the final front
// blend.
func (r *Renderer) peelLoop(root scene.Drawable, stats *FrameStats) (int, error) {
	useQueries := r.cfg.UseOcclusionQueries()

	// The back blender already holds the resolved opaque colour.
	last := 0
	var previous *uint32
	for peel := 0; peel < r.cfg.MaxPeels; peel++ {
		cur := currentSlot(peel)
		prev := previousSlot(cur)

		r.clearSlot(cur)
		if err := r.peelPass(root, cur, prev); err != nil {
			return last, errors.Wrapf(err, "peel %d", peel)
		}
		status, err := r.blendBack(cur, previous, useQueries)
		if err != nil {
			return last, errors.Wrapf(err, "back blend %d", peel)
		}

		last = cur
		stats.Peels++
		if status.SamplesPassed != nil {
			stats.Samples = append(stats.Samples, *status.SamplesPassed)
		}
		if status.Done {
			if status.Stalled {
				stats.Stalled = true
				r.log.Debug("peel loop stalled",
					zap.Int("peel", peel),
					zap.Uint32("samples", *status.SamplesPassed),
					zap.Uint32("previous", *previous),
				)
			}
			break
		}
		previous = status.SamplesPassed
	}
	return last, nil
}

func (r *Renderer) peelPass(root scene.Drawable, cur, prev int) error {
	t := r.targets
	t.peelFBO.Bind(opengl.FramebufferDraw)
	t.peelFBO.SetDrawBuffers(depthAttachment(cur), frontAttachment(cur), backAttachment(cur))
	r.api.Enable(opengl.BLEND)
	r.api.BlendEquation(opengl.MAX)

	t.depth[prev].Bind(opengl.PeelDepthUnit)
	t.frontBlend[prev].Bind(opengl.PeelFrontUnit)
	t.opaqueDepth.Bind(opengl.OpaqueDepthUnit)

	if root != nil {
		if err := root.Render(scene.StageDepthPeel, scene.RenderTranslucent); err != nil {
			return err
		}
	}
	return opengl.Check(r.api, "peel pass")
}

// ── Step 7: back blending ─────────────────────────────────────────────────────

func (r *Renderer) blendBack(cur int, previous *uint32, useQueries bool) (BlendingStatus, error) {
	t := r.targets
	t.resolveFBO.Bind(opengl.FramebufferDraw)
	t.resolveFBO.SetDrawBuffers(0)
	r.api.Enable(opengl.BLEND)
	r.api.BlendEquation(opengl.FUNC_ADD)
	r.api.BlendFunc(opengl.ONE, opengl.ONE_MINUS_SRC_ALPHA)

	if !useQueries {
		return BlendingStatus{}, r.blendQuad.Render(cur)
	}

	if err := t.query.Begin(); err != nil {
		return BlendingStatus{}, err
	}
	err := r.blendQuad.Render(cur)
	t.query.End()
	if err != nil {
		return BlendingStatus{}, err
	}
	samples, err := t.query.Result()
	if err != nil {
		return BlendingStatus{}, err
	}
	return evaluateBlend(samples, previous, r.threshold), nil
}

// ── Steps 8-9: composition and overlays ───────────────────────────────────────

func (r *Renderer) compose(last int) error {
	vp := r.viewport
	r.bindDefaultFramebuffer(opengl.DRAW_FRAMEBUFFER)
	r.api.Viewport(int32(vp.X), int32(vp.Y), int32(vp.Width), int32(vp.Height))
	r.api.Disable(opengl.BLEND)
	r.api.Disable(opengl.DEPTH_TEST)
	return r.finalQuad.Render(last)
}

func (r *Renderer) overlayPass(overlay scene.Drawable) error {
	r.api.Enable(opengl.MULTISAMPLE)
	r.api.Disable(opengl.DEPTH_TEST)
	r.api.DepthMask(false)
	r.api.Enable(opengl.BLEND)
	r.api.BlendEquation(opengl.FUNC_ADD)
	r.api.BlendFunc(opengl.ONE, opengl.ONE_MINUS_SRC_ALPHA)

	var err error
	if overlay != nil {
		err = overlay.Render(scene.StageOverlay, scene.RenderAll)
	}
	r.api.DepthMask(true)
	r.api.Disable(opengl.BLEND)
	if err != nil {
		return err
	}
	return opengl.Check(r.api, "overlay pass")
}

func (r *Renderer) debugPass(last int) error {
	t := r.targets
	var tex *opengl.Texture
	switch r.cfg.Debug {
	case DebugNone:
		return nil
	case DebugObjectID:
		tex = t.objectID
	case DebugObjectDepth:
		tex = t.objectDepth
	case DebugFrontBlender:
		tex = t.frontBlend[last]
	case DebugBackBlender:
		tex = t.backBlend
	}
	r.debugQuad.SetTexture(tex)
	return r.debugQuad.Render()
}
