package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
)

var (
	ErrStopped        = errors.New("scheduler stopped")
	ErrAlreadyPending = errors.New("job already pending")
	ErrJobPanicked    = errors.New("job panicked")
)

// Job is a unit of background work. Execute runs on the worker goroutine;
// Abort is called instead of a normal completion when Execute panics.
type Job interface {
	Execute()
	Abort(reason error)
}

type pendingJob struct {
	job      Job
	priority float64
}

// Scheduler runs jobs one at a time on a single worker goroutine, always
// picking the pending job with the highest priority. The worker is started by
// the first Submit and exits on Stop.
type Scheduler struct {
	name     string
	pending  []pendingJob
	current  Job
	started  bool
	stopping bool
	done     chan struct{}

	mu   sync.Mutex
	cond *sync.Cond
}

func New(name string) *Scheduler {
	s := &Scheduler{
		name: name,
		done: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Adds a job to the pending set, starting the worker on first use
func (s *Scheduler) Submit(job Job, priority float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		return ErrStopped
	}
	if s.indexOf(job) >= 0 {
		return ErrAlreadyPending
	}

	s.pending = append(s.pending, pendingJob{job: job, priority: priority})
	instrumentPending(s.name, len(s.pending))

	if !s.started {
		s.started = true
		go s.run()
	}
	s.cond.Signal()

	return nil
}

// Updates the priority of a job that has not been dequeued yet. Returns false
// if the job is executing, finished or unknown.
func (s *Scheduler) Reprioritize(job Job, priority float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(job)
	if i < 0 {
		return false
	}
	s.pending[i].priority = priority
	return true
}

// Removes a job that has not been dequeued yet
func (s *Scheduler) Cancel(job Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(job)
	if i < 0 {
		return false
	}
	s.removeAt(i)
	return true
}

// Reports whether the job is currently being executed by the worker
func (s *Scheduler) IsExecuting(job Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == job
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Reports whether the worker goroutine has been started and not stopped
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.stopping
}

// Signals the worker to exit once the job it is executing returns and waits
// for it. Pending jobs are dropped without being executed.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopping {
		s.stopping = true
		if dropped := len(s.pending); dropped > 0 {
			glog.V(1).Infof("scheduler %s: dropping %d pending jobs", s.name, dropped)
		}
		s.pending = nil
		instrumentPending(s.name, 0)
		s.cond.Broadcast()
	}
	started := s.started
	s.mu.Unlock()

	if started {
		<-s.done
	}
}

func (s *Scheduler) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.stopping {
			s.cond.Wait()
		}
		if s.stopping {
			s.mu.Unlock()
			return
		}
		job := s.dequeue()
		s.current = job
		s.mu.Unlock()

		s.execute(job)

		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
	}
}

func (s *Scheduler) execute(job Job) {
	start := time.Now()
	outcome := outcomeDone

	defer func() {
		if r := recover(); r != nil {
			outcome = outcomePanic
			glog.Errorf("scheduler %s: job panicked: %v", s.name, r)
			s.abort(job, fmt.Errorf("%w: %v", ErrJobPanicked, r))
		}
		instrumentJob(s.name, outcome, time.Since(start))
	}()

	job.Execute()
}

func (s *Scheduler) abort(job Job, reason error) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("scheduler %s: aborting job panicked: %v", s.name, r)
		}
	}()
	job.Abort(reason)
}

// Removes and returns the pending job with the highest priority. Must be
// called with the lock held and a non empty pending set.
func (s *Scheduler) dequeue() Job {
	best := 0
	for i := 1; i < len(s.pending); i++ {
		if s.pending[i].priority > s.pending[best].priority {
			best = i
		}
	}
	job := s.pending[best].job
	s.removeAt(best)
	return job
}

func (s *Scheduler) removeAt(i int) {
	last := len(s.pending) - 1
	s.pending[i] = s.pending[last]
	s.pending[last] = pendingJob{}
	s.pending = s.pending[:last]
	instrumentPending(s.name, len(s.pending))
}

func (s *Scheduler) indexOf(job Job) int {
	for i := range s.pending {
		if s.pending[i].job == job {
			return i
		}
	}
	return -1
}
