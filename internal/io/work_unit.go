package io

import (
	"github.com/ecopia-map/pcstream/internal/model"
)

// Point file of one node, checked by a single consumer
type WorkUnit struct {
	Cell *model.CellData
	Node *model.NodeData
	Path string // relative to the model directory
}
