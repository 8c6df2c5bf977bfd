package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pcstream/internal/codec"
)

const fixtureModelJSON = `{
  "model_name": "quay",
  "model_version": "2.0",
  "global_grid": {"type": "TileMapServiceGG", "level": 2},
  "max_node_points": 16,
  "epsg": 3857,
  "classes": [
    {"class": 2, "color": [1.0, 0.0, 0.0]},
    {"class": 6, "color": [0.0, 0.0, 1.0]}
  ],
  "cells": [
    {
      "directory": "Cell_0_0",
      "cell_extent_min": [1000, 2000, 0],
      "cell_extent_max": [1100, 2100, 100],
      "pc_bounds_min": [1000, 2000, 0],
      "pc_bounds_max": [1100, 2100, 100]
    }
  ]
}`

const fixtureCellJSON = `{
  "filename": "Node_0.bin",
  "n_points": 4,
  "avg_distance": 0.1,
  "min": [0, 0, 0],
  "max": [1, 1, 1],
  "indices": [0],
  "children": [
    {
      "filename": "Node_0_0.bin",
      "n_points": 3,
      "avg_distance": 0.05,
      "min": [0, 0, 0],
      "max": [0.5, 0.5, 0.5],
      "indices": [0, 0],
      "children": []
    }
  ]
}`

var fixtureRootPoints = [][]float32{
	{0.5, 0.5, 0.5, 2},
	{0.1, 0.1, 0.1, 6},
	{0.9, 0.9, 0.9, 2},
	{0.2, 0.8, 0.3, 6},
}

var fixtureChildPoints = [][]float32{
	{0.25, 0.25, 0.25, 6},
	{0.1, 0.4, 0.2, 2},
	{0.4, 0.1, 0.4, 2},
}

// Writes a one cell model whose extent maps to the (0,0,0)-(100,100,100)
// viewer box
func writeFixtureModel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cellDir := filepath.Join(dir, "Cell_0_0")
	require.NoError(t, os.MkdirAll(cellDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pc_model.json"), []byte(fixtureModelJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cellDir, "cell.json"), []byte(fixtureCellJSON), 0o644))
	writePointFile(t, filepath.Join(cellDir, "Node_0.bin"), fixtureRootPoints)
	writePointFile(t, filepath.Join(cellDir, "Node_0_0.bin"), fixtureChildPoints)

	return dir
}

func writePointFile(t *testing.T, path string, rows [][]float32) {
	t.Helper()
	b, err := codec.Encode(rows)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))
}
