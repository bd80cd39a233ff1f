package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"histo-viewer/core"
	"histo-viewer/internal/config"
	"histo-viewer/internal/drawable"
	"histo-viewer/internal/logger"
	"histo-viewer/internal/opengl"
	"histo-viewer/scene"
)

// viewerScene is the drawable content of the viewer: a stack of slide planes,
// translucent label surfaces between them and an annotation overlay.
type viewerScene struct {
	root    *scene.Group
	labels  *scene.Group
	overlay *scene.Group
	grid    *drawable.Mesh
	meshes  []*drawable.Mesh
	names   map[uint32]string
}

// slideColors tint the demo slides like H&E, IHC and a second H&E section.
var slideColors = []core.Color{
	{R: 0.93, G: 0.76, B: 0.86, A: 1},
	{R: 0.82, G: 0.70, B: 0.52, A: 1},
	{R: 0.90, G: 0.72, B: 0.84, A: 1},
}

const slideSpacing = 0.35

func buildScene(api opengl.API, programs drawable.Programs, cfg config.Scene) (*viewerScene, error) {
	s := &viewerScene{
		root:    scene.NewGroup("root"),
		labels:  scene.NewGroup("labels"),
		overlay: scene.NewGroup("overlay"),
		names:   map[uint32]string{},
	}
	nextID := cfg.FirstObjectID
	if nextID == 0 {
		nextID = 1
	}

	// ── Slides ────────────────────────────────────────────────────────────────
	stack := scene.NewGroup("slides")
	for i, c := range slideColors {
		z := float32(i-len(slideColors)/2) * slideSpacing
		m := drawable.NewMesh(api, programs, fmt.Sprintf("slide_%d", i),
			drawable.QuadGeometry(cfg.SlideWidth, cfg.SlideHeight).Transformed(mgl32.Translate3D(0, 0, z)))
		m.Color = c
		s.add(m, nextID)
		nextID++
		stack.AddChild(m)
	}
	s.root.AddChild(stack)

	// ── Labels ────────────────────────────────────────────────────────────────
	s.labels.SetOpacity(cfg.LabelOpacity)
	if cfg.LabelsPath != "" {
		res, err := drawable.LoadGLTF(api, programs, cfg.LabelsPath, drawable.GLTFOptions{
			FirstObjectID: nextID,
			Pickable:      true,
		})
		if err != nil {
			return nil, errors.Wrap(err, "labels")
		}
		for _, m := range res.Meshes {
			s.add(m, m.ObjectID)
		}
		s.labels.AddChild(res.Root)
	} else {
		for i, l := range demoLabels {
			m := drawable.NewMesh(api, programs, l.name,
				drawable.BoxGeometry(l.size[0], l.size[1], l.size[2]).Transformed(mgl32.Translate3D(l.pos[0], l.pos[1], l.pos[2])))
			m.Color = l.color
			m.Opaque = false
			s.add(m, nextID+uint32(i))
			s.labels.AddChild(m)
		}
	}
	s.root.AddChild(s.labels)

	// ── Overlay ───────────────────────────────────────────────────────────────
	w, h := cfg.SlideWidth/2, cfg.SlideHeight/2
	border := drawable.NewMesh(api, programs, "slide_border", drawable.OutlineGeometry([]mgl32.Vec2{
		{-w, -h}, {w, -h}, {w, h}, {-w, h},
	}))
	border.Overlay = true
	border.Pickable = false
	border.Color = core.Color{R: 0.2, G: 0.9, B: 0.3, A: 1}
	s.add(border, 0)
	s.overlay.AddChild(border)

	s.grid = drawable.NewMesh(api, programs, "grid", drawable.GridGeometry(cfg.SlideWidth, cfg.SlideHeight, 8))
	s.grid.Overlay = true
	s.grid.Pickable = false
	s.grid.Visible = false
	s.grid.Color = core.Color{R: 1, G: 1, B: 1, A: 0.25}
	s.add(s.grid, 0)
	s.overlay.AddChild(s.grid)

	for _, m := range s.meshes {
		if err := m.Upload(); err != nil {
			s.destroy()
			return nil, err
		}
	}
	logger.Log.Info("scene built", zap.Int("meshes", len(s.meshes)), zap.Int("pickable", len(s.names)))
	return s, nil
}

type demoLabel struct {
	name  string
	pos   [3]float32
	size  [3]float32
	color core.Color
}

var demoLabels = []demoLabel{
	{"tumour", [3]float32{-0.6, 0.2, 0}, [3]float32{1.2, 0.9, 0.6}, core.Color{R: 0.9, G: 0.15, B: 0.15, A: 1}},
	{"stroma", [3]float32{0.7, -0.3, 0}, [3]float32{0.8, 1.1, 0.5}, core.Color{R: 0.15, G: 0.4, B: 0.95, A: 1}},
}

func (s *viewerScene) add(m *drawable.Mesh, id uint32) {
	m.ObjectID = id
	if id != 0 {
		s.names[id] = m.Name
	}
	s.meshes = append(s.meshes, m)
}

// describe names the object under a pick result.
func (s *viewerScene) describe(id uint32) string {
	if name, ok := s.names[id]; ok {
		return name
	}
	return fmt.Sprintf("object %d", id)
}

func (s *viewerScene) destroy() {
	for _, m := range s.meshes {
		m.Destroy()
	}
}
