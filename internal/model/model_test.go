package model

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModelJSON = `{
  "model_name": "harbour",
  "model_version": "2.0",
  "global_grid": {"type": "TileMapServiceGG", "level": 2, "side_n_tiles": 4, "tile_size_meters": 10018754.1696},
  "max_node_points": 65000,
  "parent_sampling": true,
  "classes": [
    {"class": 2, "color": [1.0, 0.0, 0.0]},
    {"class": 6, "color": [0.0, 0.0, 1.0]}
  ],
  "cells": [
    {
      "directory": "Cell_1_2",
      "cell_index": [1, 2],
      "cell_extent_min": [100, 200, 0],
      "cell_extent_max": [200, 300, 100],
      "pc_bounds_min": [110, 210, 5],
      "pc_bounds_max": [190, 290, 40]
    },
    {
      "directory": "Cell_2_2",
      "cell_extent_min": [200, 200, 0],
      "cell_extent_max": [300, 300, 100],
      "pc_bounds_min": [200, 220, 2],
      "pc_bounds_max": [250, 260, 60]
    }
  ]
}`

const testCellJSON = `{
  "filename": "Node_0.bin",
  "n_points": 100,
  "avg_distance": 0.01,
  "min": [0, 0, 0],
  "max": [1, 1, 0.5],
  "indices": [0],
  "sorted_class_count": {"2": 60, "6": 40},
  "children": [
    {
      "n_points": 0,
      "avg_distance": 0.005,
      "min": [0, 0, 0],
      "max": [0.5, 0.5, 0.5],
      "indices": [0, 0],
      "children": [
        {
          "filename": "Node_0_0_3.bin",
          "n_points": 50,
          "avg_distance": 0.002,
          "min": [0.25, 0.25, 0],
          "max": [0.5, 0.5, 0.25],
          "indices": [0, 0, 3],
          "children": []
        }
      ]
    }
  ]
}`

func writeTestModel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ModelDescriptorFile), []byte(testModelJSON), 0o644))
	for _, cell := range []string{"Cell_1_2", "Cell_2_2"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, cell), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, cell, CellDescriptorFile), []byte(testCellJSON), 0o644))
	}
	return dir
}

func TestLoadModel(t *testing.T) {
	dir := writeTestModel(t)

	m, err := LoadModel(dir)
	require.NoError(t, err)

	assert.Equal(t, "harbour", m.Name)
	assert.Equal(t, dir, m.Directory)
	assert.Equal(t, 65000, m.MaxNodePoints)
	assert.True(t, m.ParentSampling)
	require.Len(t, m.Cells, 2)
	require.NotNil(t, m.Cells[0].Index)
	assert.Equal(t, [2]int{1, 2}, *m.Cells[0].Index)
	assert.Nil(t, m.Cells[1].Index)

	nodes, files, points := m.CountNodes()
	assert.Equal(t, 6, nodes)
	assert.Equal(t, 4, files)
	assert.Equal(t, 300, points)

	bounds := m.Bounds()
	assert.Equal(t, 110.0, bounds.Min.X)
	assert.Equal(t, 250.0, bounds.Max.X)
	assert.Equal(t, 60.0, bounds.Max.Z)
}

func TestNodeGeometry(t *testing.T) {
	m, err := LoadModel(writeTestModel(t))
	require.NoError(t, err)

	cell := m.Cells[0]
	root := cell.Root
	assert.Equal(t, "Node_0", root.Name())
	assert.Equal(t, 0, root.Level())
	assert.True(t, root.HasFile())
	assert.Equal(t, filepath.Join("Cell_1_2", "Node_0.bin"), cell.NodeFilePath(root))
	assert.Equal(t, 60, root.SortedClassCount["2"])

	internal := root.Children[0]
	assert.False(t, internal.HasFile())
	assert.Equal(t, "", cell.NodeFilePath(internal))

	leaf := internal.Children[0]
	assert.Equal(t, "Node_0_0_3", leaf.Name())
	assert.Equal(t, 2, leaf.Level())

	b := cell.NodeBounds(leaf)
	assert.InDelta(t, 125, b.Min.X, 1e-9)
	assert.InDelta(t, 225, b.Min.Y, 1e-9)
	assert.InDelta(t, 0, b.Min.Z, 1e-9)
	assert.InDelta(t, 150, b.Max.X, 1e-9)
	assert.InDelta(t, 25, b.Max.Z, 1e-9)

	assert.InDelta(t, 1.0, cell.NodeSpacing(root), 1e-9)
}

func TestClassColors(t *testing.T) {
	m, err := LoadModel(writeTestModel(t))
	require.NoError(t, err)

	colors := m.ClassColors()
	assert.Equal(t, color.RGBA{R: 255, A: 255}, colors.ColorForClass(2))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, colors.ColorForClass(6))
	assert.Equal(t, []int{2, 6}, colors.Classes())
}

func TestWalkStops(t *testing.T) {
	m, err := LoadModel(writeTestModel(t))
	require.NoError(t, err)

	visited := 0
	complete := m.Cells[0].Root.Walk(func(n *NodeData) bool {
		visited++
		return visited < 2
	})
	assert.False(t, complete)
	assert.Equal(t, 2, visited)
}

func TestLoadModelErrors(t *testing.T) {
	t.Run("missing descriptor", func(t *testing.T) {
		_, err := LoadModel(t.TempDir())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("missing cell descriptor", func(t *testing.T) {
		dir := writeTestModel(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "Cell_2_2", CellDescriptorFile)))
		_, err := LoadModel(dir)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed descriptor", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ModelDescriptorFile), []byte(`{"cells": [`), 0o644))
		_, err := LoadModel(dir)
		assert.Error(t, err)
	})

	t.Run("no cells", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ModelDescriptorFile), []byte(`{"model_name": "empty", "cells": []}`), 0o644))
		_, err := LoadModel(dir)
		assert.ErrorContains(t, err, "no cells")
	})

	t.Run("null cell", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ModelDescriptorFile), []byte(`{"model_name": "m", "cells": [null]}`), 0o644))
		_, err := LoadModel(dir)
		assert.ErrorContains(t, err, "cell 0 is null")
	})

	t.Run("unsupported grid", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ModelDescriptorFile), []byte(`{"global_grid": {"type": "LatLonGG"}, "cells": [{"directory": "c"}]}`), 0o644))
		_, err := LoadModel(dir)
		assert.ErrorContains(t, err, "LatLonGG")
	})
}

func TestTileMapServiceGrid(t *testing.T) {
	g := TileMapServiceGrid{Level: 2}
	assert.Equal(t, 4, g.SideTiles())
	assert.InDelta(t, MapSideLengthMeters/4, g.TileSizeMeters(), 1e-6)

	assert.Equal(t, [2]int{1, 3}, g.GoogleMapsIndex([2]int{1, 0}))
	assert.Equal(t, "https://b.tile.openstreetmap.org/2/1/3.png", g.OSMTileURL([2]int{1, 0}))
	assert.Equal(t,
		"https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/2/3/1.png",
		g.ArcGISWorldImageryTileURL([2]int{1, 0}))

	assert.Equal(t, [2]int{2, 2}, g.TileIndexForMercator(0, 0))
	assert.Equal(t, [2]int{0, 0}, g.TileIndexForMercator(-MapSideLengthMeters, -MapSideLengthMeters))
	assert.Equal(t, [2]int{3, 3}, g.TileIndexForMercator(MapSideLengthMeters, MapSideLengthMeters))

	assert.Equal(t, [2]int{0, 0}, g.TileIndexForLonLat(-179.9, -89))
	assert.Equal(t, [2]int{3, 3}, g.TileIndexForLonLat(179.9, 89))
	assert.Equal(t, [2]int{2, 2}, g.TileIndexForLonLat(1, 1))
}

func TestModelGrid(t *testing.T) {
	m := &ModelData{GlobalGrid: GlobalGridData{Type: TileMapServiceGridType, Level: 5}}
	g, ok := m.Grid()
	require.True(t, ok)
	assert.Equal(t, 5, g.Level)

	m.GlobalGrid.Type = ""
	_, ok = m.Grid()
	assert.False(t, ok)
}
