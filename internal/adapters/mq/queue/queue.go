// Package queue provides the bounded in-memory job queue feeding the
// garment scoring workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/swatch/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1_000
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue[T any] interface {
	// Enqueue adds a job to the queue.
	// Returns false if the queue is full or closed and the job was not enqueued.
	Enqueue(ctx context.Context, job T) bool

	// Dequeue returns the channel jobs arrive on.
	// The channel is closed when the queue is closed and drained.
	Dequeue() <-chan T

	// Len returns the current number of queued jobs.
	Len() int

	// Close stops accepting jobs. Jobs already queued are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue[T any] struct {
	jobs     chan T
	capacity int
	metrics  *metrics.Manager

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue[T any](opts ...Option) *InMemoryQueue[T] {
	cfg := options{
		capacity: defaultQueueCapacity,
		metrics:  metrics.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	q := &InMemoryQueue[T]{
		jobs:     make(chan T, cfg.capacity),
		capacity: cfg.capacity,
		metrics:  cfg.metrics,
	}
	q.observe()
	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue[T]) Enqueue(ctx context.Context, job T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject("closed")
		return false
	}
	if ctx.Err() != nil {
		q.reject("context_canceled")
		return false
	}

	select {
	case q.jobs <- job:
		q.observe()
		return true
	default:
		q.reject("full")
		return false
	}
}

// Dequeue returns the channel jobs arrive on.
func (q *InMemoryQueue[T]) Dequeue() <-chan T {
	return q.jobs
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue[T]) Len() int {
	q.observe()
	return len(q.jobs)
}

// Capacity returns the maximum number of queued jobs.
func (q *InMemoryQueue[T]) Capacity() int {
	return q.capacity
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue[T]) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue[T]) observe() {
	if q.metrics != nil {
		q.metrics.UpdateQueueDepth(len(q.jobs))
	}
}

func (q *InMemoryQueue[T]) reject(reason string) {
	if q.metrics != nil {
		q.metrics.RecordQueueRejected(reason)
	}
}
