package queue

import "github.com/okian/swatch/pkg/metrics"

type options struct {
	capacity int
	metrics  *metrics.Manager
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*options)

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// WithMetrics records queue depth and rejections on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(o *options) {
		o.metrics = m
	}
}
