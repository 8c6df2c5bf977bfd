package octree

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/data"
)

// Position the tree is evaluated from, in viewer space
type Viewpoint struct {
	Position r3.Vec
	FarPlane float64
}

type ViewpointProvider interface {
	Viewpoint() Viewpoint
}

// MeshLoader is the asynchronous geometry source used by the tree. It is only
// called from the goroutine evaluating the tree.
type MeshLoader interface {
	// Returns the decoded buffer once ready, nil while loading or when
	// resources are exhausted
	RequestLoad(path string, priority float64) *data.PointBuffer
	Release(buf *data.PointBuffer) error
	// Drops interest in a path whose load may still be in flight
	Abandon(path string)
	// Reclaims resources held by abandoned loads that have completed
	Sweep()
}

type ITree interface {
	Evaluate(vp Viewpoint)
	Visit(fn func(node INode) bool)
	Stats() TreeStats
	Close()
}

type INode interface {
	Name() string
	Bounds() r3.Box
	Spacing() float64
	HasFile() bool
	GeometryState() GeometryState
	LodState() LodState
	RenderType() RenderType
	Buffer() *data.PointBuffer
	MinDistance() float64
	MaxDistance() float64
	NeedsDetail() bool
}

// Counters describing the live part of a tree
type TreeStats struct {
	LiveNodes      int
	Resolved       int
	Fetching       int
	Expanded       int
	Near           int
	Far            int
	Mixed          int
	ResidentPoints int
}
