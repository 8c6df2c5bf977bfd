package mesh_manager

import (
	"image/color"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/ecopia-map/pcstream/internal/codec"
	"github.com/ecopia-map/pcstream/internal/data"
	"github.com/ecopia-map/pcstream/internal/io"
)

// DecodeJob reads and decodes the point file of one node on the scheduler
// worker. Its output is only read after IsDone reports true.
type DecodeJob struct {
	path   string
	source io.PointFileSource
	lookup data.ClassColorLookup

	positions []data.Vec3
	colors    []color.RGBA
	count     int
	readErr   error
	decodeErr error

	// owned by the goroutine driving the MeshManager
	orphaned bool

	done atomic.Bool
}

func newDecodeJob(source io.PointFileSource, lookup data.ClassColorLookup) *DecodeJob {
	return &DecodeJob{
		source: source,
		lookup: lookup,
	}
}

// Prepares a pooled job for a new path
func (j *DecodeJob) reset(path string) {
	j.path = path
	j.positions = nil
	j.colors = nil
	j.count = 0
	j.readErr = nil
	j.decodeErr = nil
	j.orphaned = false
	j.done.Store(false)
}

// Reads and decodes the file. A file that fails to decode completes the job
// with an empty output. The done flag is published after every write.
func (j *DecodeJob) Execute() {
	b, err := j.source.ReadPointFile(j.path)
	if err != nil {
		j.readErr = err
		j.done.Store(true)
		return
	}

	positions, colors, count, err := codec.Decode(b, j.lookup)
	if err != nil {
		glog.Warningf("point file %s: %v", j.path, err)
		j.decodeErr = err
		j.done.Store(true)
		return
	}

	j.positions = positions
	j.colors = colors
	j.count = count
	j.done.Store(true)
}

// Completes the job with an empty output
func (j *DecodeJob) Abort(reason error) {
	j.positions = nil
	j.colors = nil
	j.count = 0
	j.decodeErr = reason
	j.done.Store(true)
}

func (j *DecodeJob) IsDone() bool {
	return j.done.Load()
}

func (j *DecodeJob) Path() string {
	return j.path
}

func (j *DecodeJob) Count() int {
	return j.count
}

// Returns the read or decode failure of a completed job, if any
func (j *DecodeJob) Err() error {
	if j.readErr != nil {
		return j.readErr
	}
	return j.decodeErr
}
