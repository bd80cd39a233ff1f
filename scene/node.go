package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"histo-viewer/core"
)

// Group is an interior scene node. It composes its local rendering data with
// the inherited data and forwards Update and Render to its visible children.
type Group struct {
	Name     string
	Visible  bool
	Local    AccumulatedRenderingData
	Policy   PickablePolicy
	Children []Drawable

	accumulated AccumulatedRenderingData
}

func NewGroup(name string) *Group {
	return &Group{
		Name:     name,
		Visible:  true,
		Local:    RootRenderingData(),
		Children: make([]Drawable, 0),
	}
}

func (g *Group) AddChild(child Drawable) {
	g.Children = append(g.Children, child)
}

func (g *Group) RemoveChild(child Drawable) {
	for i, c := range g.Children {
		if c == child {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			return
		}
	}
}

func (g *Group) SetTransform(m mgl32.Mat4) { g.Local.ModelTransform = m }
func (g *Group) SetOpacity(o float32)      { g.Local.Opacity = o }
func (g *Group) SetPickable(p bool)        { g.Local.Pickable = p }

// Accumulated returns the data computed by the last Update.
func (g *Group) Accumulated() AccumulatedRenderingData { return g.accumulated }

func (g *Group) Update(time float64, viewport core.Viewport, camera *Camera, frame CoordinateFrame, data AccumulatedRenderingData) {
	g.accumulated = data.Compose(g.Local, g.Policy)
	if !g.Visible {
		return
	}
	for _, child := range g.Children {
		child.Update(time, viewport, camera, frame, g.accumulated)
	}
}

func (g *Group) Render(stage RenderStage, filter ObjectsToRender) error {
	if !g.Visible {
		return nil
	}
	for _, child := range g.Children {
		if err := child.Render(stage, filter); err != nil {
			return errors.Wrapf(err, "group %q", g.Name)
		}
	}
	return nil
}
