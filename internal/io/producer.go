package io

import (
	"sync"

	"github.com/ecopia-map/pcstream/internal/model"
)

type Producer interface {
	Produce(work chan *WorkUnit, wg *sync.WaitGroup, m *model.ModelData)
}

type Consumer interface {
	Consume(workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup)
}
