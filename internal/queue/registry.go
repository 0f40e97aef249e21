// Package queue provides a registry of named slot queues used to throttle
// calls to external backends. The registry is passed explicitly to whatever
// composes the services — there is no package-level singleton.
package queue

import (
	"context"
	"sync"
)

// Queue is a capacity-bounded slot queue. Holding a slot grants the right
// to issue one in-flight call against the backend the queue is named for.
type Queue struct {
	slots chan struct{}
}

func newQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{slots: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is free or the context is done.
func (q *Queue) Acquire(ctx context.Context) error {
	select {
	case q.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a previously acquired slot.
func (q *Queue) Release() {
	select {
	case <-q.slots:
	default:
		// Release without Acquire is a caller bug; don't block on it.
	}
}

// Capacity returns the maximum number of concurrently held slots.
func (q *Queue) Capacity() int {
	return cap(q.slots)
}

// InFlight returns the number of currently held slots.
func (q *Queue) InFlight() int {
	return len(q.slots)
}

// Registry owns the queues for a set of named services.
type Registry struct {
	mu     sync.Mutex
	queues map[string]*Queue
}

func NewRegistry() *Registry {
	return &Registry{queues: make(map[string]*Queue)}
}

// GetOrCreate returns the queue for a service, creating it with the given
// capacity if it does not exist. Repeated calls return the same queue; the
// capacity argument is ignored once the queue exists.
func (r *Registry) GetOrCreate(service string, capacity int) *Queue {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queues[service]; ok {
		return q
	}
	q := newQueue(capacity)
	r.queues[service] = q
	return q
}

// Lookup returns the queue for a service, or nil if it was never created.
func (r *Registry) Lookup(service string) *Queue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queues[service]
}

// Remove deletes the queue for a service. Removing a queue that does not
// exist is not an error, so repeated calls are fine.
func (r *Registry) Remove(service string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.queues, service)
}
