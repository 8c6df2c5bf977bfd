package model

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/golang/glog"
	"github.com/segmentio/encoding/json"
	"golang.org/x/sync/errgroup"
)

// Reads pc_model.json from dir and the cell.json of every cell. Cells are
// loaded concurrently.
func LoadModel(dir string) (*ModelData, error) {
	var m ModelData
	if err := readJSON(filepath.Join(dir, ModelDescriptorFile), &m); err != nil {
		return nil, err
	}
	m.Directory = dir

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model descriptor in %s: %w", dir, err)
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, cell := range m.Cells {
		cell := cell
		g.Go(func() error {
			return LoadCell(dir, cell)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	nodes, files, points := m.CountNodes()
	glog.Infof("loaded model %q: %d cells, %d nodes, %d point files, %d points", m.Name, len(m.Cells), nodes, files, points)

	return &m, nil
}

// Reads the node hierarchy of a cell from its cell.json
func LoadCell(modelDir string, cell *CellData) error {
	var root NodeData
	if err := readJSON(filepath.Join(modelDir, cell.Directory, CellDescriptorFile), &root); err != nil {
		return err
	}

	var fileErr error
	root.Walk(func(n *NodeData) bool {
		if n.NPoints < 0 {
			fileErr = fmt.Errorf("cell %s: node %s has a negative point count", cell.Directory, n.Name())
			return false
		}
		if n.HasFile() && filepath.IsAbs(n.Filename) {
			fileErr = fmt.Errorf("cell %s: node %s has an absolute file name", cell.Directory, n.Name())
			return false
		}
		return true
	})
	if fileErr != nil {
		return fileErr
	}

	cell.Root = &root
	return nil
}

// Relative path of a node point file from the model directory
func (c *CellData) NodeFilePath(n *NodeData) string {
	if !n.HasFile() {
		return ""
	}
	return filepath.Join(c.Directory, n.Filename)
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return nil
}
