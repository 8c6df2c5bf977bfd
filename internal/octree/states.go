package octree

type GeometryState int

const (
	Uninitialized GeometryState = iota
	Ready
	Fetching
	Resolved
)

func (s GeometryState) String() string {
	switch s {
	case Uninitialized:
		return "UNINITIALIZED"
	case Ready:
		return "READY"
	case Fetching:
		return "FETCHING"
	case Resolved:
		return "RESOLVED"
	}
	return ""
}

type LodState int

const (
	Collapsed LodState = iota
	Expanded
)

func (s LodState) String() string {
	if s == Collapsed {
		return "COLLAPSED"
	} else if s == Expanded {
		return "EXPANDED"
	}
	return ""
}

// Material set a node should be drawn with
type RenderType int

const (
	RenderNone RenderType = iota
	RenderNear
	RenderFar
	RenderMixed
)

func (r RenderType) String() string {
	switch r {
	case RenderNear:
		return "NEAR"
	case RenderFar:
		return "FAR"
	case RenderMixed:
		return "MIXED"
	}
	return "NONE"
}

// Chooses the render type of a node. Detail requests always render mixed so
// that far geometry stays visible while children stream in.
func ClassifyRender(needsDetail bool, minDistance, maxDistance, threshold float64) RenderType {
	if needsDetail {
		return RenderMixed
	}
	if minDistance > threshold {
		return RenderFar
	}
	if maxDistance < threshold {
		return RenderNear
	}
	return RenderMixed
}
