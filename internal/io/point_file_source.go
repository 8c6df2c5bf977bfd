package io

import (
	"os"
	"path/filepath"
)

// PointFileSource reads the raw bytes of a node's point file
type PointFileSource interface {
	ReadPointFile(path string) ([]byte, error)
}

// Reads point files from the local file system, resolving relative paths
// against a root folder
type StandardPointFileSource struct {
	root string
}

func NewStandardPointFileSource(root string) PointFileSource {
	return &StandardPointFileSource{
		root: root,
	}
}

func (s *StandardPointFileSource) ReadPointFile(path string) ([]byte, error) {
	return os.ReadFile(s.Resolve(path))
}

// Returns the file system path the given point file path refers to
func (s *StandardPointFileSource) Resolve(path string) string {
	if filepath.IsAbs(path) || s.root == "" {
		return path
	}
	return filepath.Join(s.root, path)
}
