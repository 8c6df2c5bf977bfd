package lod_tree

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/data"
	"github.com/ecopia-map/pcstream/internal/octree"
)

// Handle of a node in the tree arena
type NodeID int32

const NoNode NodeID = -1

// Kind of a node, fixed when the node is materialized
type NodeKind int

const (
	KindInternal NodeKind = iota
	KindLeafWithFile
)

func (k NodeKind) String() string {
	if k == KindLeafWithFile {
		return "LEAF_WITH_FILE"
	}
	return "INTERNAL"
}

// Maps decoded point positions into world space: world = Origin + p * Scale
type Placement struct {
	Origin r3.Vec
	Scale  r3.Vec
}

var IdentityPlacement = Placement{Scale: r3.Vec{X: 1, Y: 1, Z: 1}}

func (p Placement) Apply(v data.Vec3) r3.Vec {
	return r3.Vec{
		X: p.Origin.X + float64(v.X)*p.Scale.X,
		Y: p.Origin.Y + float64(v.Y)*p.Scale.Y,
		Z: p.Origin.Z + float64(v.Z)*p.Scale.Z,
	}
}

// Parsed description of a node in world space. Children are only
// materialized as live nodes when the node is expanded.
type NodeDescriptor struct {
	Name      string
	Bounds    r3.Box
	Spacing   float64
	File      string
	Points    int
	Placement Placement
	Children  []*NodeDescriptor
}

// LodNode is a live node of the tree
type LodNode struct {
	id       NodeID
	parent   NodeID
	desc     *NodeDescriptor
	kind     NodeKind
	children []NodeID
	alive    bool

	geometry octree.GeometryState
	lod      octree.LodState
	buffer   *data.PointBuffer

	inside      bool
	minDistance float64
	maxDistance float64
	needsDetail bool
	render      octree.RenderType
}

func (n *LodNode) ID() NodeID {
	return n.id
}

func (n *LodNode) Parent() NodeID {
	return n.parent
}

func (n *LodNode) Children() []NodeID {
	return n.children
}

func (n *LodNode) Kind() NodeKind {
	return n.kind
}

func (n *LodNode) Descriptor() *NodeDescriptor {
	return n.desc
}

func (n *LodNode) Name() string {
	return n.desc.Name
}

func (n *LodNode) Bounds() r3.Box {
	return n.desc.Bounds
}

func (n *LodNode) Spacing() float64 {
	return n.desc.Spacing
}

func (n *LodNode) HasFile() bool {
	return n.kind == KindLeafWithFile
}

func (n *LodNode) GeometryState() octree.GeometryState {
	return n.geometry
}

func (n *LodNode) LodState() octree.LodState {
	return n.lod
}

func (n *LodNode) RenderType() octree.RenderType {
	return n.render
}

func (n *LodNode) Buffer() *data.PointBuffer {
	return n.buffer
}

func (n *LodNode) MinDistance() float64 {
	return n.minDistance
}

func (n *LodNode) MaxDistance() float64 {
	return n.maxDistance
}

func (n *LodNode) NeedsDetail() bool {
	return n.needsDetail
}

// Recomputes the distances from p to the node bounds
func (n *LodNode) updateDistances(p r3.Vec) {
	b := n.desc.Bounds
	n.inside = insideBox(b, p)
	n.minDistance = minDistance(b, p)
	n.maxDistance = maxDistance(b, p)
}

func (n *LodNode) updateNeedsDetail(lodFactor float64) {
	n.needsDetail = n.inside || n.desc.Spacing*lodFactor > n.minDistance
}

func insideBox(b r3.Box, p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Distance from p to the closest point of b, 0 when p is inside
func minDistance(b r3.Box, p r3.Vec) float64 {
	d := r3.Vec{
		X: math.Max(0, math.Max(b.Min.X-p.X, p.X-b.Max.X)),
		Y: math.Max(0, math.Max(b.Min.Y-p.Y, p.Y-b.Max.Y)),
		Z: math.Max(0, math.Max(b.Min.Z-p.Z, p.Z-b.Max.Z)),
	}
	return r3.Norm(d)
}

// Distance from p to the farthest corner of b
func maxDistance(b r3.Box, p r3.Vec) float64 {
	d := r3.Vec{
		X: math.Max(math.Abs(p.X-b.Min.X), math.Abs(p.X-b.Max.X)),
		Y: math.Max(math.Abs(p.Y-b.Min.Y), math.Abs(p.Y-b.Max.Y)),
		Z: math.Max(math.Abs(p.Z-b.Min.Z), math.Abs(p.Z-b.Max.Z)),
	}
	return r3.Norm(d)
}
