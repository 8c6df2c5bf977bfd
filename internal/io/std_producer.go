package io

import (
	"sync"

	"github.com/ecopia-map/pcstream/internal/model"
)

type StandardProducer struct{}

func NewStandardProducer() *StandardProducer {
	return &StandardProducer{}
}

// Walks every cell of the model and submits a WorkUnit per node owning a
// point file. Closes the channel when all work is submitted.
func (p *StandardProducer) Produce(work chan *WorkUnit, wg *sync.WaitGroup, m *model.ModelData) {
	for _, cell := range m.Cells {
		if cell.Root == nil {
			continue
		}
		p.produce(cell, cell.Root, work)
	}
	close(work)
	wg.Done()
}

func (p *StandardProducer) produce(cell *model.CellData, node *model.NodeData, work chan *WorkUnit) {
	if node.HasFile() {
		work <- &WorkUnit{
			Cell: cell,
			Node: node,
			Path: cell.NodeFilePath(node),
		}
	}

	for _, child := range node.Children {
		if child != nil {
			p.produce(cell, child, work)
		}
	}
}
