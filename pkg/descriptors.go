package pkg

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/converters"
	"github.com/ecopia-map/pcstream/internal/model"
	"github.com/ecopia-map/pcstream/internal/octree/lod_tree"
)

// Converts the node hierarchy of a cell into viewer space descriptors. Point
// files store positions normalized to the cell extent, so every node of the
// cell shares the same placement. Returns nil when the cell has no hierarchy.
func BuildCellDescriptor(cell *model.CellData, transform converters.WorldTransform) *lod_tree.NodeDescriptor {
	if cell.Root == nil {
		return nil
	}

	size := cell.Extent().Size()
	placement := lod_tree.Placement{
		Origin: transform.ToWorld(cell.ExtentMin.Vec()),
		Scale: r3.Vec{
			X: transform.ToWorldLength(size.X),
			Y: transform.ToWorldLength(size.Z),
			Z: transform.ToWorldLength(size.Y),
		},
	}

	return buildNodeDescriptor(cell, cell.Root, transform, placement)
}

func buildNodeDescriptor(cell *model.CellData, n *model.NodeData, transform converters.WorldTransform, placement lod_tree.Placement) *lod_tree.NodeDescriptor {
	desc := &lod_tree.NodeDescriptor{
		Name:      cell.Directory + "/" + n.Name(),
		Bounds:    transform.ToWorldBox(cell.NodeBounds(n)),
		Spacing:   transform.ToWorldLength(cell.NodeSpacing(n)),
		File:      cell.NodeFilePath(n),
		Points:    n.NPoints,
		Placement: placement,
	}

	for _, child := range n.Children {
		if child == nil {
			continue
		}
		desc.Children = append(desc.Children, buildNodeDescriptor(cell, child, transform, placement))
	}
	return desc
}
