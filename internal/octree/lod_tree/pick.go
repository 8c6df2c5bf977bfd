package lod_tree

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/data"
	"github.com/ecopia-map/pcstream/internal/octree"
)

type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// ScreenProjector projects world positions on the screen. Depth is the
// distance from the camera along its view direction, not positive for points
// behind the camera.
type ScreenProjector interface {
	WorldToScreen(p r3.Vec) (screen [2]float64, depth float64)
}

type PickResult struct {
	Node           NodeID
	Index          int
	Position       r3.Vec
	Point          data.Point
	Depth          float64
	ScreenDistance float64
}

// Finds the point nearest to the camera among the resolved points projected
// within maxScreenDistance of screenPos. Only nodes whose bounds contain the
// ray origin or are crossed by the ray are scanned. The class of the picked
// point is recovered from its color through lookup.
func (t *LodTree) PickClosestPoint(ray Ray, screenPos [2]float64, maxScreenDistance float64, proj ScreenProjector, lookup data.ClassColorLookup) (PickResult, bool) {
	best := PickResult{Node: NoNode, Depth: math.Inf(1)}
	maxSqr := maxScreenDistance * maxScreenDistance

	t.VisitNodes(func(n *LodNode) bool {
		if n.geometry != octree.Resolved || n.buffer == nil || n.buffer.Count == 0 {
			return true
		}
		b := n.desc.Bounds
		if !insideBox(b, ray.Origin) && !rayIntersectsBox(ray, b) {
			return true
		}

		for i := 0; i < n.buffer.Count; i++ {
			world := n.desc.Placement.Apply(n.buffer.Positions[i])
			screen, depth := proj.WorldToScreen(world)
			if depth <= 0 || depth >= best.Depth {
				continue
			}
			dx, dy := screen[0]-screenPos[0], screen[1]-screenPos[1]
			sqr := dx*dx + dy*dy
			if sqr >= maxSqr {
				continue
			}
			best = PickResult{
				Node:           n.id,
				Index:          i,
				Position:       world,
				Point:          n.buffer.At(i, lookup),
				Depth:          depth,
				ScreenDistance: math.Sqrt(sqr),
			}
		}
		return true
	})

	return best, best.Node != NoNode
}

// Slab test of a ray against an axis aligned box, only forward hits count
func rayIntersectsBox(ray Ray, b r3.Box) bool {
	tMin, tMax := 0.0, math.Inf(1)
	origin := [3]float64{ray.Origin.X, ray.Origin.Y, ray.Origin.Z}
	dir := [3]float64{ray.Direction.X, ray.Direction.Y, ray.Direction.Z}
	min := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	max := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < min[axis] || origin[axis] > max[axis] {
				return false
			}
			continue
		}
		inv := 1 / dir[axis]
		t0 := (min[axis] - origin[axis]) * inv
		t1 := (max[axis] - origin[axis]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math.Max(tMin, t0)
		tMax = math.Min(tMax, t1)
		if tMin > tMax {
			return false
		}
	}
	return true
}
