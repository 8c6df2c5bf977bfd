package io

import (
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/ecopia-map/pcstream/internal/codec"
	"github.com/ecopia-map/pcstream/internal/data"
)

// PointFileError reports a point file that failed verification
type PointFileError struct {
	Path string
	Err  error
}

func (e *PointFileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *PointFileError) Unwrap() error {
	return e.Err
}

type StandardConsumer struct {
	source PointFileSource
	lookup data.ClassColorLookup
}

func NewStandardConsumer(source PointFileSource, lookup data.ClassColorLookup) *StandardConsumer {
	return &StandardConsumer{
		source: source,
		lookup: lookup,
	}
}

// Continually consumes WorkUnits submitted to a work channel, decoding each
// point file and checking it against its node descriptor. Every failure is
// submitted to the error channel and consumption goes on until the work
// channel is closed.
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	for work := range workchan {
		if err := c.doWork(work); err != nil {
			glog.V(1).Infof("verification failed: %v", err)
			errchan <- err
		}
	}
}

func (c *StandardConsumer) doWork(workUnit *WorkUnit) error {
	b, err := c.source.ReadPointFile(workUnit.Path)
	if err != nil {
		return &PointFileError{Path: workUnit.Path, Err: err}
	}

	_, _, rows, err := codec.Decode(b, c.lookup)
	if err != nil {
		return &PointFileError{Path: workUnit.Path, Err: err}
	}

	if rows != workUnit.Node.NPoints {
		return &PointFileError{
			Path: workUnit.Path,
			Err:  fmt.Errorf("holds %d points, node %s declares %d", rows, workUnit.Node.Name(), workUnit.Node.NPoints),
		}
	}
	return nil
}
