package mesh_manager

import (
	"errors"
	"io/fs"

	"github.com/golang/glog"

	"github.com/ecopia-map/pcstream/internal/data"
	"github.com/ecopia-map/pcstream/internal/io"
	"github.com/ecopia-map/pcstream/internal/pool"
	"github.com/ecopia-map/pcstream/internal/scheduler"
)

const (
	DefaultMeshes = 400
	DefaultJobs   = 20
)

type Options struct {
	Name       string                // prefix of the pool and scheduler metric labels, suffixed when already in use
	Meshes     int                   // number of pooled point buffers
	Jobs       int                   // number of pooled decode jobs
	PointsHint int                   // initial capacity of each pooled buffer
	Source     io.PointFileSource    // where point files are read from
	Colors     data.ClassColorLookup // class code to color mapping used when decoding
}

// MeshManager coalesces geometry requests by path, runs the decoding on a
// priority scheduler and hands out pooled buffers once a decode completes.
// It is not safe for concurrent use; only the decode jobs run elsewhere.
type MeshManager struct {
	meshes    *pool.Pool[*data.PointBuffer]
	jobs      *pool.Pool[*DecodeJob]
	scheduler *scheduler.Scheduler

	inFlight map[string]*DecodeJob
	failed   map[string]error
	closed   bool
}

func New(opts Options) *MeshManager {
	if opts.Meshes <= 0 {
		opts.Meshes = DefaultMeshes
	}
	if opts.Jobs <= 0 {
		opts.Jobs = DefaultJobs
	}
	if opts.Name == "" {
		opts.Name = "mesh_manager"
	}
	if opts.Colors == nil {
		opts.Colors = data.NewClassColorTable()
	}

	return &MeshManager{
		meshes: pool.New(opts.Name+"_meshes", opts.Meshes, func() *data.PointBuffer {
			return data.NewPointBuffer(opts.PointsHint)
		}),
		jobs: pool.New(opts.Name+"_jobs", opts.Jobs, func() *DecodeJob {
			return newDecodeJob(opts.Source, opts.Colors)
		}),
		scheduler: scheduler.New(opts.Name),
		inFlight:  make(map[string]*DecodeJob),
		failed:    make(map[string]error),
	}
}

// Requests the geometry of path. Returns the decoded buffer once the load
// has completed, nil while it is loading, when a pool is exhausted or when
// the file could not be read. Repeated requests for a pending path update its
// priority instead of starting a second load.
func (m *MeshManager) RequestLoad(path string, priority float64) *data.PointBuffer {
	if m.closed {
		return nil
	}
	if _, failed := m.failed[path]; failed {
		return nil
	}

	job, ok := m.inFlight[path]
	if !ok {
		m.startLoad(path, priority)
		return nil
	}
	job.orphaned = false

	if !job.IsDone() {
		m.scheduler.Reprioritize(job, priority)
		return nil
	}

	if job.readErr != nil {
		m.fail(path, job)
		return nil
	}

	buf, ok := m.meshes.Acquire()
	if !ok {
		return nil
	}
	if err := job.Err(); err != nil {
		glog.V(1).Infof("%s resolved without points: %v", path, err)
	}
	buf.CopyFrom(job.positions, job.colors)
	m.finish(path, job)

	return buf
}

// Returns a buffer obtained from RequestLoad to the pool
func (m *MeshManager) Release(buf *data.PointBuffer) error {
	if buf == nil {
		return nil
	}
	buf.Reset()
	return m.meshes.Release(buf)
}

// Drops the load of a path nobody is waiting for anymore. A pending load is
// cancelled right away, a running or completed one is reclaimed by Sweep.
func (m *MeshManager) Abandon(path string) {
	job, ok := m.inFlight[path]
	if !ok {
		return
	}
	if m.scheduler.Cancel(job) {
		m.finish(path, job)
		return
	}
	job.orphaned = true
}

// Releases abandoned jobs that have completed
func (m *MeshManager) Sweep() {
	for path, job := range m.inFlight {
		if job.orphaned && job.IsDone() {
			m.finish(path, job)
		}
	}
}

// Stops the worker after its current job and reclaims every job
func (m *MeshManager) Shutdown() {
	if m.closed {
		return
	}
	m.closed = true
	m.scheduler.Stop()

	for path, job := range m.inFlight {
		m.finish(path, job)
	}
	glog.V(1).Infof("mesh manager stopped, %d meshes still checked out", m.meshes.InUse())
	m.meshes.Close()
	m.jobs.Close()
}

// Reports whether path failed to load and will not be retried
func (m *MeshManager) Failed(path string) bool {
	_, failed := m.failed[path]
	return failed
}

func (m *MeshManager) AvailableMeshes() int {
	return m.meshes.Remaining()
}

func (m *MeshManager) AvailableJobs() int {
	return m.jobs.Remaining()
}

func (m *MeshManager) InFlight() int {
	return len(m.inFlight)
}

func (m *MeshManager) Pending() int {
	return m.scheduler.Pending()
}

func (m *MeshManager) startLoad(path string, priority float64) {
	job, ok := m.jobs.Acquire()
	if !ok {
		return
	}
	job.reset(path)

	if err := m.scheduler.Submit(job, priority); err != nil {
		glog.Errorf("cannot schedule %s: %v", path, err)
		_ = m.jobs.Release(job)
		return
	}
	m.inFlight[path] = job
}

func (m *MeshManager) fail(path string, job *DecodeJob) {
	if errors.Is(job.readErr, fs.ErrNotExist) {
		glog.Warningf("point file %s not found, node will not be loaded", path)
	} else {
		glog.Warningf("cannot read point file %s: %v", path, job.readErr)
	}
	m.failed[path] = job.readErr
	m.finish(path, job)
}

func (m *MeshManager) finish(path string, job *DecodeJob) {
	delete(m.inFlight, path)
	job.reset("")
	if err := m.jobs.Release(job); err != nil {
		glog.Errorf("releasing job for %s: %v", path, err)
	}
}
