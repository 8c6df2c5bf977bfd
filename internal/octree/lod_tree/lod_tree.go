package lod_tree

import (
	"github.com/golang/glog"

	"github.com/ecopia-map/pcstream/internal/octree"
)

const (
	DefaultLodFactor         = 1.0
	DefaultDistanceThreshold = 500.0
)

type Options struct {
	LodFactor         float64 // multiplier of the node spacing compared with the viewpoint distance
	DistanceThreshold float64 // distance separating near from far rendering
}

// LodTree keeps the live part of a point cloud hierarchy in an arena and
// decides, once per tick, which nodes are expanded and which geometry is
// requested. It must be driven from a single goroutine.
type LodTree struct {
	loader octree.MeshLoader
	opts   Options

	nodes []LodNode
	free  []NodeID
	roots []NodeID
	ticks uint64
}

func New(loader octree.MeshLoader, opts Options) *LodTree {
	if opts.LodFactor <= 0 {
		opts.LodFactor = DefaultLodFactor
	}
	if opts.DistanceThreshold <= 0 {
		opts.DistanceThreshold = DefaultDistanceThreshold
	}
	return &LodTree{
		loader: loader,
		opts:   opts,
	}
}

// Materializes a top level node
func (t *LodTree) AddRoot(desc *NodeDescriptor) NodeID {
	id := t.alloc(desc, NoNode)
	t.roots = append(t.roots, id)
	return id
}

func (t *LodTree) Roots() []NodeID {
	return t.roots
}

// Returns the live node with the given handle, nil if the handle is stale
func (t *LodTree) Node(id NodeID) *LodNode {
	if id < 0 || int(id) >= len(t.nodes) || !t.nodes[id].alive {
		return nil
	}
	return &t.nodes[id]
}

func (t *LodTree) Ticks() uint64 {
	return t.ticks
}

// Runs one LOD pass from the given viewpoint
func (t *LodTree) Evaluate(vp octree.Viewpoint) {
	t.ticks++
	for _, id := range t.roots {
		t.evaluateNode(id, vp)
	}
	t.loader.Sweep()

	if glog.V(2) {
		s := t.Stats()
		glog.Infof("tick %d: %d live, %d resolved, %d fetching, %d expanded", t.ticks, s.LiveNodes, s.Resolved, s.Fetching, s.Expanded)
	}
}

func (t *LodTree) evaluateNode(id NodeID, vp octree.Viewpoint) {
	n := &t.nodes[id]
	n.updateDistances(vp.Position)
	n.updateNeedsDetail(t.opts.LodFactor)

	if n.needsDetail && n.lod == octree.Collapsed && len(n.desc.Children) > 0 {
		t.expand(id)
	} else if !n.needsDetail && n.lod == octree.Expanded {
		t.collapse(id)
	}

	// expand may have grown the arena
	n = &t.nodes[id]
	t.updateGeometry(n, vp)

	if n.geometry == octree.Resolved {
		n.render = octree.ClassifyRender(n.needsDetail, n.minDistance, n.maxDistance, t.opts.DistanceThreshold)
	} else {
		n.render = octree.RenderNone
	}

	if n.geometry != octree.Resolved || n.lod != octree.Expanded {
		return
	}
	children := n.children
	for _, child := range children {
		t.evaluateNode(child, vp)
	}
}

func (t *LodTree) updateGeometry(n *LodNode, vp octree.Viewpoint) {
	if n.geometry != octree.Ready && n.geometry != octree.Fetching {
		return
	}
	if n.kind == KindInternal {
		n.geometry = octree.Resolved
		return
	}

	buf := t.loader.RequestLoad(n.desc.File, vp.FarPlane-n.minDistance)
	if buf == nil {
		n.geometry = octree.Fetching
		return
	}
	n.buffer = buf
	n.geometry = octree.Resolved
}

// Materializes the children of a node
func (t *LodTree) expand(id NodeID) {
	descs := t.nodes[id].desc.Children
	children := make([]NodeID, 0, len(descs))
	for _, desc := range descs {
		if desc == nil {
			continue
		}
		children = append(children, t.alloc(desc, id))
	}

	n := &t.nodes[id]
	n.children = children
	n.lod = octree.Expanded
}

// Tears down every descendant of a node
func (t *LodTree) collapse(id NodeID) {
	children := t.nodes[id].children
	for _, child := range children {
		t.teardown(child)
	}

	n := &t.nodes[id]
	n.children = nil
	n.lod = octree.Collapsed
}

// Releases the geometry of a subtree and frees its slots
func (t *LodTree) teardown(id NodeID) {
	n := &t.nodes[id]
	for _, child := range n.children {
		t.teardown(child)
	}

	switch {
	case n.buffer != nil:
		if err := t.loader.Release(n.buffer); err != nil {
			glog.Errorf("releasing geometry of %s: %v", n.desc.Name, err)
		}
	case n.geometry == octree.Fetching:
		t.loader.Abandon(n.desc.File)
	}

	t.nodes[id] = LodNode{id: id, parent: NoNode}
	t.free = append(t.free, id)
}

func (t *LodTree) alloc(desc *NodeDescriptor, parent NodeID) NodeID {
	kind := KindInternal
	if desc.File != "" {
		kind = KindLeafWithFile
	}

	node := LodNode{
		parent:   parent,
		desc:     desc,
		kind:     kind,
		alive:    true,
		geometry: octree.Ready,
		lod:      octree.Collapsed,
	}

	var id NodeID
	if last := len(t.free) - 1; last >= 0 {
		id = t.free[last]
		t.free = t.free[:last]
		node.id = id
		t.nodes[id] = node
	} else {
		id = NodeID(len(t.nodes))
		node.id = id
		t.nodes = append(t.nodes, node)
	}
	return id
}

// Visits the live nodes depth first until fn returns false
func (t *LodTree) Visit(fn func(node octree.INode) bool) {
	t.VisitNodes(func(n *LodNode) bool {
		return fn(n)
	})
}

func (t *LodTree) VisitNodes(fn func(n *LodNode) bool) {
	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		n := &t.nodes[id]
		if !fn(n) {
			return false
		}
		for _, child := range n.children {
			if !visit(child) {
				return false
			}
		}
		return true
	}
	for _, root := range t.roots {
		if !visit(root) {
			return
		}
	}
}

func (t *LodTree) Stats() octree.TreeStats {
	var s octree.TreeStats
	t.VisitNodes(func(n *LodNode) bool {
		s.LiveNodes++
		switch n.geometry {
		case octree.Resolved:
			s.Resolved++
		case octree.Fetching:
			s.Fetching++
		}
		if n.lod == octree.Expanded {
			s.Expanded++
		}
		switch n.render {
		case octree.RenderNear:
			s.Near++
		case octree.RenderFar:
			s.Far++
		case octree.RenderMixed:
			s.Mixed++
		}
		if n.buffer != nil {
			s.ResidentPoints += n.buffer.Count
		}
		return true
	})
	return s
}

// Tears down every node, releasing all geometry
func (t *LodTree) Close() {
	for _, root := range t.roots {
		t.teardown(root)
	}
	t.roots = nil
	t.loader.Sweep()
}
