package peel

import (
	"time"

	"go.uber.org/zap"

	"histo-viewer/core"
	"histo-viewer/internal/opengl"
	"histo-viewer/scene"
)

// DebugView selects an intermediate target drawn over the composed image.
type DebugView int

const (
	DebugNone DebugView = iota
	DebugObjectID
	DebugObjectDepth
	DebugFrontBlender
	DebugBackBlender
)

func (v DebugView) String() string {
	switch v {
	case DebugNone:
		return "none"
	case DebugObjectID:
		return "object-id"
	case DebugObjectDepth:
		return "object-depth"
	case DebugFrontBlender:
		return "front-blender"
	case DebugBackBlender:
		return "back-blender"
	}
	return "unknown"
}

// ParseDebugView is the inverse of DebugView.String.
func ParseDebugView(s string) (DebugView, bool) {
	for v := DebugNone; v <= DebugBackBlender; v++ {
		if v.String() == s {
			return v, true
		}
	}
	return DebugNone, false
}

// Config holds the tunables of the peeling engine.
type Config struct {
	// MaxPeels bounds the number of peel iterations per frame. Always >= 1.
	MaxPeels int
	// OcclusionRatio enables adaptive termination when below 1. The loop
	// stops once a blend pass touches no more than
	// OcclusionRatio × viewport area samples.
	OcclusionRatio float64
	// PointPicking runs the object-ID pass every frame.
	PointPicking bool
	// Samples is the multisample count of the opaque target.
	Samples int
	// Background is the clear colour of the opaque pass.
	Background core.Color
	Debug      DebugView
}

const (
	DefaultMaxPeels       = 4
	DefaultOcclusionRatio = 1.0
	DefaultSamples        = 4
)

func DefaultConfig() Config {
	return Config{
		MaxPeels:       DefaultMaxPeels,
		OcclusionRatio: DefaultOcclusionRatio,
		PointPicking:   true,
		Samples:        DefaultSamples,
		Background:     core.ColorBlack,
	}
}

// UseOcclusionQueries reports whether adaptive termination is active.
func (c Config) UseOcclusionQueries() bool {
	return c.OcclusionRatio < 1
}

// SceneRootSource supplies a root drawable each frame. A nil root skips that
// root for the frame.
type SceneRootSource interface {
	Root() scene.Drawable
}

// SceneRootFunc adapts a function to SceneRootSource.
type SceneRootFunc func() scene.Drawable

func (f SceneRootFunc) Root() scene.Drawable { return f() }

// DefaultFramebufferSource reports the framebuffer owned by the presentation
// layer. It is queried at the start of every Render.
type DefaultFramebufferSource interface {
	DefaultFramebuffer() uint32
}

// Option configures a Renderer.
type Option func(*Renderer)

func WithConfig(cfg Config) Option {
	return func(r *Renderer) {
		r.SetMaxNumberOfPeels(cfg.MaxPeels)
		r.SetOcclusionRatio(cfg.OcclusionRatio)
		r.SetEnablePointPicking(cfg.PointPicking)
		r.SetDebugView(cfg.Debug)
		if cfg.Samples >= 1 {
			r.cfg.Samples = cfg.Samples
		}
		r.cfg.Background = cfg.Background
	}
}

func WithShaderActivator(a opengl.ShaderActivator) Option {
	return func(r *Renderer) { r.shaders = a }
}

func WithUniformsSource(s opengl.UniformsSource) Option {
	return func(r *Renderer) { r.uniforms = s }
}

func WithSceneRoot(s SceneRootSource) Option {
	return func(r *Renderer) { r.sceneRoot = s }
}

func WithOverlayRoot(s SceneRootSource) Option {
	return func(r *Renderer) { r.overlayRoot = s }
}

func WithDefaultFramebuffer(s DefaultFramebufferSource) Option {
	return func(r *Renderer) { r.defaultFBOSource = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock replaces time.Now for the scene time passed to Update.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}
