// Package worker runs batch garment scoring on a bounded pool of workers.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/swatch/internal/adapters/mq/queue"
	"github.com/okian/swatch/internal/domain/garment"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/pkg/logger"
	"github.com/okian/swatch/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// ErrScorePanic is returned for a batch in which scoring a garment panicked.
var ErrScorePanic = errors.New("garment scoring panicked")

// Scorer rates one garment color.
type Scorer interface {
	Score(req garment.Request) model.GarmentColorScore
}

// batch collects the results of one ScoreBatch call.
type batch struct {
	ctx     context.Context //nolint:containedctx // jobs outlive the enqueue call
	results []model.GarmentColorScore
	wg      sync.WaitGroup

	mu  sync.Mutex
	err error
}

// fail keeps the first job error of the batch.
func (b *batch) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
}

func (b *batch) failure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Job is one garment of a batch. Index is its position in the batch.
type Job struct {
	Index   int
	Request garment.Request
	batch   *batch
}

// InMemoryWorker scores jobs from the queue.
type InMemoryWorker struct {
	queue   queue.Queue[Job]
	scorer  Scorer
	name    string
	metrics *metrics.Manager

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q queue.Queue[Job], scorer Scorer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		scorer:  scorer,
		name:    "worker",
		metrics: metrics.Default(),
		done:    make(chan struct{}),
		logger:  logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes jobs until the queue is closed and drained. ctx only scopes
// the start and stop log entries; workers outlive it so batches accepted
// during shutdown still complete.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	w.logger.Debug(ctx, "worker started")
	for job := range w.queue.Dequeue() {
		w.process(job)
	}
	w.logger.Debug(context.WithoutCancel(ctx), "worker stopped")
}

// Done is closed once Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// process scores one job. Jobs whose batch was abandoned are skipped.
func (w *InMemoryWorker) process(job Job) {
	defer job.batch.wg.Done()
	if job.batch.ctx.Err() != nil {
		return
	}

	start := time.Now()
	if w.metrics != nil {
		w.metrics.WorkerStarted()
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(job.batch.ctx, "garment scoring panicked",
				logger.Int("index", job.Index),
				logger.Any("panic", r))
			job.batch.fail(fmt.Errorf("%w: garment %d: %v", ErrScorePanic, job.Index, r))
		}
		if w.metrics != nil {
			w.metrics.WorkerFinished(time.Since(start))
		}
	}()
	job.batch.results[job.Index] = w.scorer.Score(job.Request)
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   queue.Queue[Job]
	scorer  Scorer
	metrics *metrics.Manager

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q queue.Queue[Job], scorer Scorer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		scorer:  scorer,
		metrics: metrics.Default(),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, scorer,
			append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)...)
	}
	if len(pool.workers) > 0 {
		pool.metrics = pool.workers[0].metrics
	}
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// ScoreBatch scores reqs and returns results in request order. Jobs the
// queue refuses are scored on the calling goroutine.
func (p *Pool) ScoreBatch(ctx context.Context, reqs []garment.Request) ([]model.GarmentColorScore, error) {
	b := &batch{ctx: ctx, results: make([]model.GarmentColorScore, len(reqs))}
	if p.metrics != nil {
		p.metrics.RecordGarmentBatch(len(reqs))
	}

	inline := 0
	for i, req := range reqs {
		b.wg.Add(1)
		job := Job{Index: i, Request: req, batch: b}
		if p.queue.Enqueue(ctx, job) {
			continue
		}
		if err := ctx.Err(); err != nil {
			b.wg.Done()
			return nil, err
		}
		inline++
		b.results[i] = p.scorer.Score(req)
		b.wg.Done()
	}
	if inline > 0 {
		p.logger.Debug(ctx, "queue refused jobs, scored inline", logger.Int("count", inline))
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		if err := b.failure(); err != nil {
			return nil, err
		}
		return b.results, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("batch abandoned: %w", ctx.Err())
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}
	return nil
}
