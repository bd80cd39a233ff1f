package drawable

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"histo-viewer/core"
	"histo-viewer/internal/opengl"
	"histo-viewer/internal/opengl/gltest"
	"histo-viewer/internal/shaders"
	"histo-viewer/scene"
)

type recordingProgram struct {
	name string
	sets []opengl.UniformSet
}

func (p *recordingProgram) ApplyUniforms(u opengl.UniformSet) error {
	p.sets = append(p.sets, u.Clone())
	return nil
}

type recordingPrograms struct {
	activated []string
	last      *recordingProgram
}

func (r *recordingPrograms) Activate(name string) (opengl.Program, error) {
	r.activated = append(r.activated, name)
	r.last = &recordingProgram{name: name}
	return r.last, nil
}

func (r *recordingPrograms) Uniforms(name string) opengl.UniformSet {
	return opengl.UniformSet{shaders.UniformClipPlane: mgl32.Vec4{0, 0, 0, 1}}
}

func TestGeometryHelpers(t *testing.T) {
	q := QuadGeometry(4, 2)
	assert.Equal(t, 6, q.Count())
	lo, hi := q.Bounds()
	assert.Equal(t, mgl32.Vec3{-2, -1, 0}, lo)
	assert.Equal(t, mgl32.Vec3{2, 1, 0}, hi)

	moved := q.Transformed(mgl32.Translate3D(1, 0, 5))
	lo, _ = moved.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, 5}, lo)
	assert.Equal(t, q.Indices, moved.Indices)

	box := BoxGeometry(1, 1, 1)
	assert.Len(t, box.Indices, 36)

	outline := OutlineGeometry([]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}})
	assert.True(t, outline.Lines)
	assert.Equal(t, []uint32{0, 1, 1, 2, 2, 0}, outline.Indices)
	assert.Zero(t, OutlineGeometry(nil).Count())

	grid := GridGeometry(2, 2, 4)
	assert.True(t, grid.Lines)
	assert.Len(t, grid.Positions, 2*2*5)
	lo, hi = grid.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, 0}, lo)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, hi)
}

func TestMeshUploadAndDestroy(t *testing.T) {
	fake := gltest.New()
	m := NewMesh(fake, &recordingPrograms{}, "slide", QuadGeometry(1, 1))
	require.NoError(t, m.Upload())

	assert.Len(t, fake.VertexArrays, 1)
	require.Len(t, fake.Buffers, 2)
	assert.Len(t, fake.Buffers[m.vbo], 4*12)
	assert.Len(t, fake.Buffers[m.ebo], 6*4)

	m.Destroy()
	assert.Empty(t, fake.VertexArrays)
	assert.Empty(t, fake.Buffers)
}

func TestMeshSelectsProgramPerStage(t *testing.T) {
	tests := []struct {
		stage   scene.RenderStage
		filter  scene.ObjectsToRender
		program string
	}{
		{scene.StageOpaque, scene.RenderOpaque, shaders.ProgramOpaque},
		{scene.StageOpaque, scene.RenderPickable, shaders.ProgramObjectID},
		{scene.StageInitialize, scene.RenderTranslucent, shaders.ProgramInit},
		{scene.StageDepthPeel, scene.RenderTranslucent, shaders.ProgramPeel},
		{scene.StageOverlay, scene.RenderAll, shaders.ProgramOverlay},
	}
	for _, tt := range tests {
		name, ok := programFor(tt.stage, tt.filter)
		assert.True(t, ok)
		assert.Equal(t, tt.program, name, "%v/%v", tt.stage, tt.filter)
	}
	_, ok := programFor(scene.StageQuadResolve, scene.RenderAll)
	assert.False(t, ok)
}

func TestMeshFiltering(t *testing.T) {
	fake := gltest.New()
	progs := &recordingPrograms{}
	m := NewMesh(fake, progs, "label", QuadGeometry(1, 1))
	require.NoError(t, m.Upload())
	m.Color = core.Color{R: 1, G: 0, B: 0, A: 0.5}
	m.ObjectID = 12
	m.Update(0, core.NewViewport(1, 1), nil, scene.IdentityFrame(), scene.RootRenderingData())

	assert.False(t, m.IsOpaque(), "alpha below one peels")
	require.NoError(t, m.Render(scene.StageOpaque, scene.RenderOpaque))
	require.NoError(t, m.Render(scene.StageOpaque, scene.RenderPickable))
	assert.Empty(t, progs.activated)

	require.NoError(t, m.Render(scene.StageDepthPeel, scene.RenderTranslucent))
	assert.Equal(t, []string{shaders.ProgramPeel}, progs.activated)
	assert.Equal(t, 1, fake.DrawCalls)

	u := progs.last.sets[0]
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 0.5}, u[shaders.UniformColor])
	assert.Equal(t, uint32(12), u[shaders.UniformObjectID])
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, u[shaders.UniformClipPlane])

	// Overlay stage ignores non-overlay meshes.
	require.NoError(t, m.Render(scene.StageOverlay, scene.RenderAll))
	assert.Equal(t, 1, fake.DrawCalls)
}

func TestMeshAccumulatedData(t *testing.T) {
	fake := gltest.New()
	progs := &recordingPrograms{}
	m := NewMesh(fake, progs, "slide", QuadGeometry(1, 1))
	require.NoError(t, m.Upload())

	parent := scene.NewGroup("stack")
	parent.SetOpacity(0.5)
	parent.SetTransform(mgl32.Translate3D(0, 0, 2))
	parent.AddChild(m)
	parent.Update(0, core.NewViewport(1, 1), nil, scene.IdentityFrame(), scene.RootRenderingData())

	assert.False(t, m.IsOpaque(), "inherited opacity makes the mesh translucent")
	require.NoError(t, parent.Render(scene.StageDepthPeel, scene.RenderTranslucent))
	u := progs.last.sets[0]
	assert.Equal(t, float32(0.5), u[shaders.UniformColor].(mgl32.Vec4).W())
	assert.Equal(t, mgl32.Translate3D(0, 0, 2), u[shaders.UniformModel])

	parent.SetPickable(false)
	parent.SetOpacity(1)
	parent.Update(0, core.NewViewport(1, 1), nil, scene.IdentityFrame(), scene.RootRenderingData())
	assert.True(t, m.IsOpaque())
	assert.False(t, m.IsPickable())
}

func TestBuildGLTF(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Materials = []*gltf.Material{{
		Name:      "tumour",
		AlphaMode: gltf.AlphaBlend,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 0, 0, 0.5},
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "label",
		Primitives: []*gltf.Primitive{
			{Attributes: map[string]int{gltf.POSITION: pos}, Indices: gltf.Index(idx), Material: gltf.Index(0)},
			{Attributes: map[string]int{gltf.POSITION: pos}},
			{Attributes: map[string]int{}}, // skipped: no positions
		},
	}}
	doc.Nodes = []*gltf.Node{{Name: "root", Mesh: gltf.Index(0), Translation: [3]float64{0, 0, 3}}}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)

	res, err := BuildGLTF(gltest.New(), &recordingPrograms{}, doc, "labels", GLTFOptions{FirstObjectID: 100, Pickable: true})
	require.NoError(t, err)
	require.Len(t, res.Meshes, 2)

	tumour := res.Meshes[0]
	assert.Equal(t, "label_p0", tumour.Name)
	assert.Equal(t, uint32(100), tumour.ObjectID)
	assert.False(t, tumour.Opaque)
	assert.Equal(t, []uint32{0, 1, 2}, tumour.Geometry.Indices)
	assert.Equal(t, core.Color{R: 1, A: 0.5}, tumour.Color)

	plain := res.Meshes[1]
	assert.Equal(t, uint32(101), plain.ObjectID)
	assert.True(t, plain.Opaque)
	assert.Equal(t, 3, plain.Geometry.Count())

	require.Len(t, res.Root.Children, 1)
	node := res.Root.Children[0].(*scene.Group)
	assert.Equal(t, mgl32.Translate3D(0, 0, 3), node.Local.ModelTransform)
	assert.Len(t, node.Children, 2)
}

func TestBuildGLTFWithoutPrimitives(t *testing.T) {
	_, err := BuildGLTF(gltest.New(), &recordingPrograms{}, gltf.NewDocument(), "empty", GLTFOptions{})
	assert.ErrorContains(t, err, "no drawable primitives")
}

func triangleDoc() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{
		Name:       "tri",
		Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: pos}}},
	}}
	return doc
}

func TestBuildGLTFSharedMeshPerNode(t *testing.T) {
	doc := triangleDoc()
	doc.Nodes = []*gltf.Node{
		{Name: "left", Mesh: gltf.Index(0), Translation: [3]float64{-5, 0, 0}},
		{Name: "right", Mesh: gltf.Index(0), Translation: [3]float64{5, 0, 0}},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0, 1}}}
	doc.Scene = gltf.Index(0)

	fake := gltest.New()
	res, err := BuildGLTF(fake, &recordingPrograms{}, doc, "labels", GLTFOptions{FirstObjectID: 10, Pickable: true})
	require.NoError(t, err)
	require.Len(t, res.Meshes, 2)
	left, right := res.Meshes[0], res.Meshes[1]
	assert.NotSame(t, left, right)
	assert.Equal(t, "tri_p0", left.Name)
	assert.Equal(t, "tri_p0_right", right.Name)
	assert.Equal(t, uint32(10), left.ObjectID)
	assert.Equal(t, uint32(11), right.ObjectID)
	assert.Equal(t, left.Geometry.Positions, right.Geometry.Positions)

	for _, m := range res.Meshes {
		require.NoError(t, m.Upload())
	}
	res.Root.Update(0, core.NewViewport(1, 1), nil, scene.IdentityFrame(), scene.RootRenderingData())
	assert.InDelta(t, -5, left.model.Col(3).X(), 1e-6)
	assert.InDelta(t, 5, right.model.Col(3).X(), 1e-6)

	require.NoError(t, res.Root.Render(scene.StageOpaque, scene.RenderOpaque))
	assert.Equal(t, 2, fake.DrawCalls)
}

func TestBuildGLTFIgnoresCyclicAndSharedChildren(t *testing.T) {
	doc := triangleDoc()
	doc.Nodes = []*gltf.Node{
		{Name: "a", Mesh: gltf.Index(0), Children: []int{1}},
		{Name: "b", Children: []int{0}},
		{Name: "c", Children: []int{1}},
	}

	res, err := BuildGLTF(gltest.New(), &recordingPrograms{}, doc, "labels", GLTFOptions{})
	require.NoError(t, err)
	require.Len(t, res.Root.Children, 2, "a and c are roots")
	a := res.Root.Children[0].(*scene.Group)
	c := res.Root.Children[1].(*scene.Group)
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "c", c.Name)
	assert.Empty(t, c.Children, "b already has a parent")

	b := a.Children[1].(*scene.Group)
	assert.Empty(t, b.Children, "b -> a would close a cycle")

	// Terminates.
	res.Root.Update(0, core.NewViewport(1, 1), nil, scene.IdentityFrame(), scene.RootRenderingData())
}

func TestMeshFrustumCulling(t *testing.T) {
	fake := gltest.New()
	progs := &recordingPrograms{}
	m := NewMesh(fake, progs, "far", BoxGeometry(1, 1, 1).Transformed(mgl32.Translate3D(100, 0, 0)))
	require.NoError(t, m.Upload())

	cam := scene.NewCamera(45, 1, 0.1, 100)
	m.Update(0, core.NewViewport(1, 1), cam, scene.IdentityFrame(), scene.RootRenderingData())
	assert.True(t, m.Culled())
	require.NoError(t, m.Render(scene.StageOpaque, scene.RenderOpaque))
	assert.Zero(t, fake.DrawCalls)

	m.Geometry = BoxGeometry(1, 1, 1)
	m.Destroy()
	require.NoError(t, m.Upload())
	m.Update(0, core.NewViewport(1, 1), cam, scene.IdentityFrame(), scene.RootRenderingData())
	assert.False(t, m.Culled())
	require.NoError(t, m.Render(scene.StageOpaque, scene.RenderOpaque))
	assert.Equal(t, 1, fake.DrawCalls)
}
