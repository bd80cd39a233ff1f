package drawable

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"histo-viewer/core"
	"histo-viewer/internal/logger"
	"histo-viewer/internal/opengl"
	"histo-viewer/scene"
)

// GLTFOptions controls how a glTF label mesh becomes drawables.
type GLTFOptions struct {
	// FirstObjectID is assigned to the first primitive; later primitives
	// count up from it. Zero leaves every object id at 0 (not pickable by
	// id).
	FirstObjectID uint32
	Pickable      bool
	// Opacity multiplies every material alpha. Zero means 1.
	Opacity float32
}

// GLTFResult is the scene built from one glTF document.
type GLTFResult struct {
	Root   *scene.Group
	Meshes []*Mesh // one per node primitive, in node order; not yet uploaded
}

// LoadGLTF opens a .glb or .gltf file and builds its node hierarchy. Call
// Upload on every mesh once a GL context is current.
func LoadGLTF(api opengl.API, programs Programs, path string, opts GLTFOptions) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "gltf open %q", path)
	}
	return BuildGLTF(api, programs, doc, path, opts)
}

// BuildGLTF converts an already decoded document. Every node that references
// a mesh gets its own Mesh per primitive, so a mesh shared by several nodes
// draws once per node with that node's transform. Object ids count up in node
// order.
func BuildGLTF(api opengl.API, programs Programs, doc *gltf.Document, name string, opts GLTFOptions) (*GLTFResult, error) {
	if opts.Opacity == 0 {
		opts.Opacity = 1
	}
	result := &GLTFResult{Root: scene.NewGroup(name)}
	nextID := opts.FirstObjectID

	// ── 1. Mesh primitives ────────────────────────────────────────────────────
	meshPrims := make([][]primitiveTemplate, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			geom, err := primitiveGeometry(doc, prim)
			if err != nil {
				logger.Log.Warn("gltf primitive skipped",
					zap.String("file", name), zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			tmpl := primitiveTemplate{
				name:  fmt.Sprintf("%s_p%d", gm.Name, pi),
				geom:  geom,
				color: materialColor(doc, prim.Material),
			}
			if gm.Name == "" {
				tmpl.name = fmt.Sprintf("mesh%d_p%d", mi, pi)
			}
			tmpl.color.A *= opts.Opacity
			tmpl.opaque = tmpl.color.A >= 1 && !blended(doc, prim.Material)
			meshPrims[mi] = append(meshPrims[mi], tmpl)
		}
	}

	// ── 2. Nodes ──────────────────────────────────────────────────────────────
	instances := make([]int, len(doc.Meshes))
	nodes := make([]*scene.Group, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		nodeName := gn.Name
		if nodeName == "" {
			nodeName = fmt.Sprintf("node_%d", i)
		}
		g := scene.NewGroup(nodeName)
		g.SetTransform(nodeTransform(gn))
		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			mi := *gn.Mesh
			for _, tmpl := range meshPrims[mi] {
				meshName := tmpl.name
				if instances[mi] > 0 {
					meshName = fmt.Sprintf("%s_%s", tmpl.name, nodeName)
				}
				m := NewMesh(api, programs, meshName, tmpl.geom)
				m.Color = tmpl.color
				m.Opaque = tmpl.opaque
				m.Pickable = opts.Pickable
				if opts.FirstObjectID != 0 {
					m.ObjectID = nextID
					nextID++
				}
				g.AddChild(m)
				result.Meshes = append(result.Meshes, m)
			}
			instances[mi]++
		}
		nodes[i] = g
	}

	// A node keeps its first parent only, and a link that would close a cycle
	// is dropped.
	parent := make([]int, len(nodes))
	for i := range parent {
		parent[i] = -1
	}
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < 0 || c >= len(nodes) {
				continue
			}
			if parent[c] >= 0 || isAncestor(parent, c, i) {
				logger.Log.Warn("gltf node link ignored",
					zap.String("file", name), zap.Int("parent", i), zap.Int("child", c))
				continue
			}
			nodes[i].AddChild(nodes[c])
			parent[c] = i
		}
	}

	// ── 3. Roots ──────────────────────────────────────────────────────────────
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, idx := range doc.Scenes[*doc.Scene].Nodes {
			if idx >= 0 && idx < len(nodes) && parent[idx] < 0 {
				result.Root.AddChild(nodes[idx])
			}
		}
	} else {
		for i, n := range nodes {
			if parent[i] < 0 {
				result.Root.AddChild(n)
			}
		}
	}
	if len(result.Meshes) == 0 {
		return result, errors.Errorf("gltf %q: no drawable primitives", name)
	}
	return result, nil
}

// primitiveTemplate is a decoded primitive shared by every node instancing
// its mesh.
type primitiveTemplate struct {
	name   string
	geom   Geometry
	color  core.Color
	opaque bool
}

// isAncestor reports whether a is n or one of n's ancestors.
func isAncestor(parent []int, a, n int) bool {
	for ; n >= 0; n = parent[n] {
		if n == a {
			return true
		}
	}
	return false
}

func primitiveGeometry(doc *gltf.Document, prim *gltf.Primitive) (Geometry, error) {
	var geom Geometry
	switch prim.Mode {
	case gltf.PrimitiveTriangles:
	case gltf.PrimitiveLines:
		geom.Lines = true
	default:
		return geom, errors.Errorf("unsupported primitive mode %v", prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok || posIdx >= len(doc.Accessors) {
		return geom, errors.New("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return geom, errors.Wrap(err, "positions")
	}
	geom.Positions = positions

	if prim.Indices != nil && *prim.Indices < len(doc.Accessors) {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return geom, errors.Wrap(err, "indices")
		}
		geom.Indices = indices
	}
	return geom, nil
}

func materialColor(doc *gltf.Document, idx *int) core.Color {
	if idx == nil || *idx >= len(doc.Materials) {
		return core.ColorWhite
	}
	pbr := doc.Materials[*idx].PBRMetallicRoughness
	if pbr == nil {
		return core.ColorWhite
	}
	cf := pbr.BaseColorFactorOrDefault()
	return core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
}

func blended(doc *gltf.Document, idx *int) bool {
	return idx != nil && *idx < len(doc.Materials) && doc.Materials[*idx].AlphaMode == gltf.AlphaBlend
}

// nodeTransform is matrix × T × R × S; glTF allows only one of the two forms
// per node, so the other is the identity.
func nodeTransform(n *gltf.Node) mgl32.Mat4 {
	var m mgl32.Mat4
	for i, v := range n.MatrixOrDefault() {
		m[i] = float32(v)
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault() // [x, y, z, w]
	s := n.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	trs := mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
	return m.Mul4(trs)
}
