package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"histo-viewer/core"
)

// RenderStage tells a drawable which pass of the depth-peeling pipeline is
// running, so it can pick the matching shader variant.
type RenderStage int

const (
	StageOpaque RenderStage = iota
	StageInitialize
	StageDepthPeel
	StageQuadResolve
	StageOverlay
)

func (s RenderStage) String() string {
	switch s {
	case StageOpaque:
		return "Opaque"
	case StageInitialize:
		return "Initialize"
	case StageDepthPeel:
		return "DepthPeel"
	case StageQuadResolve:
		return "QuadResolve"
	case StageOverlay:
		return "Overlay"
	}
	return "Unknown"
}

// ObjectsToRender filters the drawables visited by a pass.
type ObjectsToRender int

const (
	RenderAll ObjectsToRender = iota
	RenderOpaque
	RenderTranslucent
	RenderPickable
)

func (o ObjectsToRender) String() string {
	switch o {
	case RenderAll:
		return "All"
	case RenderOpaque:
		return "Opaque"
	case RenderTranslucent:
		return "Translucent"
	case RenderPickable:
		return "Pickable"
	}
	return "Unknown"
}

// Matches reports whether an object with the given properties passes the
// filter. Pickable selects pickable opaque objects only.
func (o ObjectsToRender) Matches(opaque, pickable bool) bool {
	switch o {
	case RenderAll:
		return true
	case RenderOpaque:
		return opaque
	case RenderTranslucent:
		return !opaque
	case RenderPickable:
		return opaque && pickable
	}
	return false
}

// AccumulatedRenderingData is carried down the scene graph during Update.
type AccumulatedRenderingData struct {
	ModelTransform mgl32.Mat4
	Opacity        float32
	Pickable       bool
}

// RootRenderingData is the identity value handed to a scene root.
func RootRenderingData() AccumulatedRenderingData {
	return AccumulatedRenderingData{
		ModelTransform: mgl32.Ident4(),
		Opacity:        1,
		Pickable:       true,
	}
}

// PickablePolicy decides how a node's pickability combines with its parent's.
type PickablePolicy int

const (
	// PickableInherit AND-reduces the node flag with the inherited one.
	PickableInherit PickablePolicy = iota
	// PickableOverride replaces the inherited flag with the node flag.
	PickableOverride
)

// Compose combines inherited data with a node's local contribution:
// transforms by matrix product, opacity by multiplication and pickability
// according to policy.
func (a AccumulatedRenderingData) Compose(local AccumulatedRenderingData, policy PickablePolicy) AccumulatedRenderingData {
	out := AccumulatedRenderingData{
		ModelTransform: a.ModelTransform.Mul4(local.ModelTransform),
		Opacity:        a.Opacity * local.Opacity,
	}
	if policy == PickableOverride {
		out.Pickable = local.Pickable
	} else {
		out.Pickable = a.Pickable && local.Pickable
	}
	return out
}

// CoordinateFrame maps a frame (for example a slide's physical space) into
// world space.
type CoordinateFrame struct {
	WorldFromFrame mgl32.Mat4
}

func IdentityFrame() CoordinateFrame {
	return CoordinateFrame{WorldFromFrame: mgl32.Ident4()}
}

// Drawable is implemented by everything the renderer traverses.
type Drawable interface {
	Render(stage RenderStage, filter ObjectsToRender) error
	Update(time float64, viewport core.Viewport, camera *Camera, frame CoordinateFrame, data AccumulatedRenderingData)
}
