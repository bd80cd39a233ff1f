// Package peel implements order-independent transparency with dual depth
// peeling, together with an object-ID buffer for picking.
//
// A frame runs, in order: the optional object-ID pass, the multisampled
// opaque pass and its resolve, depth initialization, a bounded loop of
// peel + back-blend passes, the final composition into the default
// framebuffer, and the overlay pass.
package peel

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"histo-viewer/core"
	"histo-viewer/internal/logger"
	"histo-viewer/internal/opengl"
	"histo-viewer/scene"
)

var (
	// ErrMissingProvider is returned by Render when a required provider has
	// not been configured.
	ErrMissingProvider = errors.New("required provider not configured")
	// ErrNotInitialized is returned when a GPU operation precedes Initialize.
	ErrNotInitialized = errors.New("renderer not initialized")
)

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Peels        int
	Samples      []uint32 // per peel, only with occlusion queries
	Stalled      bool     // loop ended because the sample count stopped decreasing
	ObjectIDPass bool
}

// Renderer is the dual depth-peeling engine. It is not safe for concurrent
// use; every method must be called on the thread owning the GL context.
type Renderer struct {
	api opengl.API
	log *zap.Logger
	cfg Config

	viewport  core.Viewport
	threshold float64

	shaders          opengl.ShaderActivator
	uniforms         opengl.UniformsSource
	sceneRoot        SceneRootSource
	overlayRoot      SceneRootSource
	defaultFBOSource DefaultFramebufferSource
	defaultFBO       uint32

	targets   *targets
	blendQuad *opengl.BlendQuad
	finalQuad *opengl.FinalQuad
	debugQuad *opengl.DebugQuad

	pick  pickBuffer
	stats FrameStats

	now   func() time.Time
	start time.Time
}

// New returns an uninitialized renderer. No GL calls are made until
// Initialize.
func New(api opengl.API, opts ...Option) *Renderer {
	r := &Renderer{
		api:      api,
		log:      logger.Log,
		cfg:      DefaultConfig(),
		viewport: core.NewViewport(1, 1),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.start = r.now()
	r.threshold = occlusionThreshold(r.cfg.OcclusionRatio, r.viewport.Width, r.viewport.Height)
	return r
}

// Initialize creates every GPU resource at 1×1. An incomplete framebuffer is
// returned as *opengl.IncompleteFramebufferError and leaves the renderer
// uninitialized.
func (r *Renderer) Initialize() error {
	if r.targets != nil {
		return nil
	}
	t, err := newTargets(r.api, r.cfg.Samples)
	if err != nil {
		t.destroy()
		return errors.Wrap(err, "initialize depth peeling targets")
	}

	blend := opengl.NewBlendQuad(r.api, r.shaders, r.uniforms, &t.backTemp)
	final := opengl.NewFinalQuad(r.api, r.shaders, r.uniforms, &t.frontBlend, t.backBlend)
	debug := opengl.NewDebugQuad(r.api, r.shaders, r.uniforms)
	for _, q := range []interface{ Init() error }{blend, final, debug} {
		if err := q.Init(); err != nil {
			blend.Destroy()
			final.Destroy()
			debug.Destroy()
			t.destroy()
			return errors.Wrap(err, "initialize full-screen quads")
		}
	}

	r.targets = t
	r.blendQuad, r.finalQuad, r.debugQuad = blend, final, debug
	r.viewport = core.NewViewport(1, 1)
	r.threshold = occlusionThreshold(r.cfg.OcclusionRatio, 1, 1)
	r.pick.discard()
	r.log.Info("depth peeling initialized",
		zap.Int("max_peels", r.cfg.MaxPeels),
		zap.Float64("occlusion_ratio", r.cfg.OcclusionRatio),
		zap.Int("samples", r.cfg.Samples),
	)
	return nil
}

// Resize reallocates every texture for viewport and recomputes the occlusion
// threshold. Picking buffers are invalidated.
func (r *Renderer) Resize(viewport core.Viewport) error {
	if r.targets == nil {
		return errors.WithStack(ErrNotInitialized)
	}
	if !viewport.Valid() {
		return errors.Wrapf(opengl.ErrInvalidSize, "resize to %s", viewport)
	}
	if err := r.targets.resize(viewport.Width, viewport.Height); err != nil {
		return errors.Wrapf(err, "resize to %s", viewport)
	}
	r.bindDefaultFramebuffer(opengl.FRAMEBUFFER)

	r.viewport = viewport
	r.threshold = occlusionThreshold(r.cfg.OcclusionRatio, viewport.Width, viewport.Height)
	r.pick.discard()
	r.log.Debug("depth peeling resized",
		zap.Stringer("viewport", viewport),
		zap.Float64("occlusion_threshold", r.threshold),
	)
	return nil
}

// bindDefaultFramebuffer refreshes the cached default framebuffer from its
// source and binds it to target.
func (r *Renderer) bindDefaultFramebuffer(target uint32) {
	r.defaultFBO = 0
	if r.defaultFBOSource != nil {
		r.defaultFBO = r.defaultFBOSource.DefaultFramebuffer()
	}
	r.api.BindFramebuffer(target, r.defaultFBO)
}

// Update forwards scene time, viewport, camera and frame to the scene and
// overlay roots.
func (r *Renderer) Update(camera *scene.Camera, frame scene.CoordinateFrame) {
	t := r.now().Sub(r.start).Seconds()
	for _, src := range []SceneRootSource{r.sceneRoot, r.overlayRoot} {
		if src == nil {
			continue
		}
		if root := src.Root(); root != nil {
			root.Update(t, r.viewport, camera, frame, scene.RootRenderingData())
		}
	}
}

// Teardown releases every GPU resource. The renderer can be initialized
// again afterwards.
func (r *Renderer) Teardown() {
	if r.targets == nil {
		return
	}
	r.blendQuad.Destroy()
	r.finalQuad.Destroy()
	r.debugQuad.Destroy()
	r.targets.destroy()
	r.targets = nil
	r.pick.discard()
}

// ── Configuration ─────────────────────────────────────────────────────────────

// SetMaxNumberOfPeels sets the peel ceiling. Values below 1 are ignored.
func (r *Renderer) SetMaxNumberOfPeels(n int) {
	if n < 1 {
		return
	}
	r.cfg.MaxPeels = n
}

// SetOcclusionRatio sets the adaptive termination ratio. Values outside
// [0, 1] are ignored; 1 disables occlusion queries.
func (r *Renderer) SetOcclusionRatio(ratio float64) {
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return
	}
	r.cfg.OcclusionRatio = ratio
	r.threshold = occlusionThreshold(ratio, r.viewport.Width, r.viewport.Height)
}

func (r *Renderer) SetEnablePointPicking(enable bool) {
	if enable != r.cfg.PointPicking {
		r.pick.discard()
	}
	r.cfg.PointPicking = enable
}

func (r *Renderer) SetDebugView(v DebugView) {
	if v < DebugNone || v > DebugBackBlender {
		return
	}
	r.cfg.Debug = v
}

func (r *Renderer) Config() Config              { return r.cfg }
func (r *Renderer) Viewport() core.Viewport     { return r.viewport }
func (r *Renderer) OcclusionThreshold() float64 { return r.threshold }
func (r *Renderer) Stats() FrameStats           { return r.stats }
