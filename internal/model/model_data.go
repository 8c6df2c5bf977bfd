package model

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/data"
)

const (
	ModelDescriptorFile = "pc_model.json"
	CellDescriptorFile  = "cell.json"

	TileMapServiceGridType = "TileMapServiceGG"
)

// Three coordinates in dataset axes (x east, y north, z up)
type Vec3Data [3]float64

func (v Vec3Data) Vec() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Contents of pc_model.json
type ModelData struct {
	Directory          string         `json:"-"`
	Name               string         `json:"model_name"`
	Version            string         `json:"model_version"`
	GlobalGrid         GlobalGridData `json:"global_grid"`
	MaxNodePoints      int            `json:"max_node_points"`
	ParentSampling     bool           `json:"parent_sampling"`
	PartitioningMethod string         `json:"partitioning_method"`
	Epsg               int            `json:"epsg"`
	Classes            []ClassData    `json:"classes"`
	Cells              []*CellData    `json:"cells"`
}

type GlobalGridData struct {
	Type           string  `json:"type"`
	Level          int     `json:"level"`
	SideNTiles     int     `json:"side_n_tiles"`
	TileSizeMeters float64 `json:"tile_size_meters"`
}

// Display color of a point class, components in the 0..1 range
type ClassData struct {
	Class float64   `json:"class"`
	Color []float64 `json:"color"`
}

// One cell of the global grid and its node hierarchy
type CellData struct {
	Directory   string   `json:"directory"`
	Index       *[2]int  `json:"cell_index"`
	ExtentMin   Vec3Data `json:"cell_extent_min"`
	ExtentMax   Vec3Data `json:"cell_extent_max"`
	PCBoundsMin Vec3Data `json:"pc_bounds_min"`
	PCBoundsMax Vec3Data `json:"pc_bounds_max"`

	Root *NodeData `json:"-"`
}

// Contents of a cell.json node. Min and Max are normalized to the cell extent.
type NodeData struct {
	Filename         string         `json:"filename"`
	NPoints          int            `json:"n_points"`
	AvgDistance      float64        `json:"avg_distance"`
	Min              Vec3Data       `json:"min"`
	Max              Vec3Data       `json:"max"`
	Indices          []int          `json:"indices"`
	SortedClassCount map[string]int `json:"sorted_class_count"`
	Children         []*NodeData    `json:"children"`
}

// Builds the class lookup used to color decoded points
func (m *ModelData) ClassColors() *data.ClassColorTable {
	table := data.NewClassColorTable()
	for _, c := range m.Classes {
		if len(c.Color) < 3 {
			continue
		}
		table.SetUnit(int(c.Class), c.Color[0], c.Color[1], c.Color[2])
	}
	return table
}

// Returns the global grid when it is a TMS grid
func (m *ModelData) Grid() (TileMapServiceGrid, bool) {
	if m.GlobalGrid.Type != TileMapServiceGridType {
		return TileMapServiceGrid{}, false
	}
	return TileMapServiceGrid{Level: m.GlobalGrid.Level}, true
}

// Union of the point bounds of every cell, in dataset axes
func (m *ModelData) Bounds() r3.Box {
	var bounds r3.Box
	for i, cell := range m.Cells {
		b := cell.PCBounds()
		if i == 0 {
			bounds = b
			continue
		}
		bounds = bounds.Union(b)
	}
	return bounds
}

// Counts nodes, nodes owning a point file and stored points over all cells
func (m *ModelData) CountNodes() (nodes int, files int, points int) {
	for _, cell := range m.Cells {
		if cell.Root == nil {
			continue
		}
		cell.Root.Walk(func(n *NodeData) bool {
			nodes++
			if n.HasFile() {
				files++
				points += n.NPoints
			}
			return true
		})
	}
	return nodes, files, points
}

func (m *ModelData) validate() error {
	if m.GlobalGrid.Type != "" && m.GlobalGrid.Type != TileMapServiceGridType {
		return fmt.Errorf("unsupported global grid type %q", m.GlobalGrid.Type)
	}
	if len(m.Cells) == 0 {
		return fmt.Errorf("model %q has no cells", m.Name)
	}
	for i, cell := range m.Cells {
		if cell == nil {
			return fmt.Errorf("cell %d is null", i)
		}
		if cell.Directory == "" {
			return fmt.Errorf("cell %d has no directory", i)
		}
		for axis := 0; axis < 3; axis++ {
			if cell.ExtentMin[axis] > cell.ExtentMax[axis] {
				return fmt.Errorf("cell %s has an inverted extent on axis %d", cell.Directory, axis)
			}
		}
	}
	return nil
}

// Cell extent in dataset axes
func (c *CellData) Extent() r3.Box {
	return r3.Box{Min: c.ExtentMin.Vec(), Max: c.ExtentMax.Vec()}
}

func (c *CellData) PCBounds() r3.Box {
	return r3.Box{Min: c.PCBoundsMin.Vec(), Max: c.PCBoundsMax.Vec()}
}

// Denormalizes the bounds of a node of this cell into dataset axes
func (c *CellData) NodeBounds(n *NodeData) r3.Box {
	extent := c.Extent()
	size := extent.Size()
	return r3.Box{
		Min: r3.Add(extent.Min, mulElem(n.Min.Vec(), size)),
		Max: r3.Add(extent.Min, mulElem(n.Max.Vec(), size)),
	}.Canon()
}

// Average point spacing of a node in dataset units. The stored value is
// normalized like the node bounds, so it is scaled by the horizontal cell size.
func (c *CellData) NodeSpacing(n *NodeData) float64 {
	size := c.Extent().Size()
	return n.AvgDistance * math.Max(size.X, size.Y)
}

// Returns the node name, "Node" followed by its indices
func (n *NodeData) Name() string {
	name := "Node"
	for _, i := range n.Indices {
		name += "_" + strconv.Itoa(i)
	}
	return name
}

func (n *NodeData) HasFile() bool {
	return n.Filename != ""
}

func (n *NodeData) Level() int {
	if len(n.Indices) == 0 {
		return 0
	}
	return len(n.Indices) - 1
}

// Visits the node and its descendants depth first until fn returns false
func (n *NodeData) Walk(fn func(n *NodeData) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

func mulElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}
