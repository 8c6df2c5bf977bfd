package pool

import (
	"errors"
	"sync"

	"github.com/golang/glog"
)

var ErrNotCheckedOut = errors.New("instance is not checked out from this pool")

// Pool is a fixed capacity set of reusable instances. Acquire never blocks:
// an exhausted pool is reported to the caller, who is expected to retry on a
// later tick.
type Pool[T comparable] struct {
	name      string
	instances []T
	available []bool
	free      int
	closed    bool

	mu sync.Mutex
}

// Instantiates a pool with capacity instances built up front by newFn. The
// name labels the pool metrics; see Name.
func New[T comparable](name string, capacity int, newFn func() T) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	p := &Pool[T]{
		name:      reserveLabel(name),
		instances: make([]T, capacity),
		available: make([]bool, capacity),
		free:      capacity,
	}
	for i := range p.instances {
		p.instances[i] = newFn()
		p.available[i] = true
	}
	instrumentAvailable(p.name, capacity)

	return p
}

// Checks out a free instance. The second return value is false when the pool
// is exhausted.
func (p *Pool[T]) Acquire() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, ok := range p.available {
		if ok {
			p.available[i] = false
			p.free--
			if !p.closed {
				instrumentAvailable(p.name, p.free)
			}
			return p.instances[i], true
		}
	}

	if !p.closed {
		instrumentExhausted(p.name)
	}
	var zero T
	return zero, false
}

// Returns a checked out instance to the pool
func (p *Pool[T]) Release(instance T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, candidate := range p.instances {
		if candidate != instance {
			continue
		}
		if p.available[i] {
			glog.Errorf("pool %s: double release of instance %d", p.name, i)
			return ErrNotCheckedOut
		}
		p.available[i] = true
		p.free++
		if !p.closed {
			instrumentAvailable(p.name, p.free)
		}
		return nil
	}

	glog.Errorf("pool %s: release of an instance it does not own", p.name)
	return ErrNotCheckedOut
}

// Number of instances that can currently be acquired
func (p *Pool[T]) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.free
}

func (p *Pool[T]) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.instances) - p.free
}

func (p *Pool[T]) Capacity() int {
	return len(p.instances)
}

// Metric label of the pool, unique among open pools
func (p *Pool[T]) Name() string {
	return p.name
}

// Drops the pool metrics and frees its name. The instances stay usable.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	releaseLabel(p.name)
}
