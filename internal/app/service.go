// Package service wires the classification pipeline, garment scorer, result
// cache and worker pool into the operations the HTTP API exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/swatch/internal/adapters/cache"
	"github.com/okian/swatch/internal/adapters/mq/queue"
	"github.com/okian/swatch/internal/adapters/mq/worker"
	"github.com/okian/swatch/internal/domain/analysis"
	"github.com/okian/swatch/internal/domain/calibration"
	"github.com/okian/swatch/internal/domain/garment"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/pkg/logger"
	"github.com/okian/swatch/pkg/metrics"
)

// ErrBatchTooLarge is returned when a batch exceeds the configured maximum.
// It wraps analysis.ErrBadRequest.
var ErrBatchTooLarge = fmt.Errorf("%w: too many garments in batch", analysis.ErrBadRequest)

// ErrUnknownSeason is returned by Palette for an unrecognized season name.
var ErrUnknownSeason = errors.New("unknown season")

// Service implements the API dependencies for color analysis.
type Service struct {
	mu sync.RWMutex

	// Core components
	analyzer *analysis.Analyzer
	scorer   *garment.Scorer
	cache    cache.Cache
	fetcher  analysis.Fetcher
	jobs     *queue.InMemoryQueue[worker.Job]
	pool     *worker.Pool

	// Configuration
	cal         calibration.Set
	workerCount int
	queueSize   int
	maxBatch    int

	// State
	started    bool
	classified atomic.Int64
	failed     atomic.Int64
	cacheHits  atomic.Int64
	garments   atomic.Int64

	metrics *metrics.Manager
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCalibration replaces the default threshold set.
func WithCalibration(cal calibration.Set) Option {
	return func(s *Service) {
		s.cal = cal
	}
}

// WithFetcher enables image-by-URL requests.
func WithFetcher(f analysis.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithCache sets the classification result cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithWorkerCount sets the number of garment scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the garment job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxBatch caps garments per batch request.
func WithMaxBatch(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. It fails when the calibration is invalid.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		cal:         calibration.Default(),
		cache:       cache.NewNop(),
		workerCount: runtime.NumCPU() * 2,
		queueSize:   1_000,
		maxBatch:    200,
		metrics:     metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	var aopts []analysis.Option
	if s.fetcher != nil {
		aopts = append(aopts, analysis.WithFetcher(s.fetcher))
	}
	a, err := analysis.New(s.cal, aopts...)
	if err != nil {
		return nil, err
	}
	s.analyzer = a
	s.scorer = garment.New(s.cal.Garment, s.cal.Attributes)
	return s, nil
}

// Start creates the job queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.jobs = queue.NewInMemoryQueue[worker.Job](
		queue.WithCapacity(s.queueSize),
		queue.WithMetrics(s.metrics),
	)
	s.pool = worker.NewPool(s.workerCount, s.jobs, s.scorer,
		worker.WithMetrics(s.metrics),
		worker.WithLogger(s.logger.Named("worker")),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "swatch service started",
		logger.String("calibration", s.cal.Version),
		logger.String("cache", s.cache.Backend()),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("fetch", s.fetcher != nil),
	)
	return nil
}

// Stop drains the worker pool.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping swatch service...")
	err := s.pool.Shutdown(ctx)
	s.started = false
	s.logger.Info(ctx, "swatch service stopped")
	return err
}

// Calibration returns the threshold set in use.
func (s *Service) Calibration() calibration.Set {
	return s.cal
}

// Classify runs the pipeline for one photo, answering from the cache when
// the same request was classified under the same calibration.
func (s *Service) Classify(ctx context.Context, req analysis.Request) (analysis.Classification, error) {
	start := time.Now()
	key := cache.Key(req, s.cal.Version)
	if c, ok := s.cache.Get(ctx, key); ok {
		s.cacheHits.Add(1)
		s.logger.Debug(ctx, "classification served from cache", logger.String("season", string(c.Season)))
		return c, nil
	}

	c, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		code := analysis.CodeOf(err)
		s.failed.Add(1)
		s.metrics.RecordClassificationError(string(code))
		if code == analysis.CodeInternal {
			s.logger.Error(ctx, "classification failed", logger.Error(err))
		} else {
			s.logger.Info(ctx, "classification rejected",
				logger.String("code", string(code)),
				logger.Error(err))
		}
		return analysis.Classification{}, err
	}

	s.classified.Add(1)
	s.metrics.RecordClassification(string(c.Season), c.Branch, c.Confidence, c.Diagnostics.SampleCount,
		c.NeedsConfirmation, c.Diagnostics.Gains.Clamped, c.Diagnostics.Noisy, time.Since(start))
	s.logger.Info(ctx, "classified",
		logger.String("season", string(c.Season)),
		logger.Float64("confidence", c.Confidence),
		logger.Bool("needsConfirmation", c.NeedsConfirmation),
		logger.String("branch", c.Branch),
		logger.Int("samples", c.Diagnostics.SampleCount),
		logger.Duration("took", time.Since(start)),
	)
	s.cache.Set(ctx, key, c)
	return c, nil
}

// ScoreGarment rates one garment color.
func (s *Service) ScoreGarment(_ context.Context, req garment.Request) model.GarmentColorScore {
	sc := s.scorer.Score(req).Rounded()
	s.record(sc, req.NearFace)
	return sc
}

// ScoreBatch rates garments in request order. Once started, the batch is
// spread over the worker pool.
func (s *Service) ScoreBatch(ctx context.Context, reqs []garment.Request) ([]model.GarmentColorScore, error) {
	if len(reqs) > s.maxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(reqs), s.maxBatch)
	}

	s.mu.RLock()
	pool := s.pool
	if !s.started {
		pool = nil
	}
	s.mu.RUnlock()

	var out []model.GarmentColorScore
	if pool != nil {
		res, err := pool.ScoreBatch(ctx, reqs)
		if err != nil {
			return nil, err
		}
		out = res
	} else {
		out = make([]model.GarmentColorScore, len(reqs))
		for i, r := range reqs {
			out[i] = s.scorer.Score(r)
		}
	}

	for i := range out {
		out[i] = out[i].Rounded()
		s.record(out[i], reqs[i].NearFace)
	}
	return out, nil
}

func (s *Service) record(sc model.GarmentColorScore, nearFace bool) {
	s.garments.Add(1)
	s.metrics.RecordGarmentRating(string(sc.Rating), nearFace)
}

// Palette returns the reference palette of a season by name.
func (s *Service) Palette(name string) (garment.Palette, error) {
	season, err := model.ParseSeason(name)
	if err != nil {
		return garment.Palette{}, fmt.Errorf("%w: %q", ErrUnknownSeason, name)
	}
	p, ok := garment.PaletteFor(season)
	if !ok {
		return garment.Palette{}, fmt.Errorf("%w: %q", ErrUnknownSeason, name)
	}
	return p, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":            s.started,
		"calibrationVersion": s.cal.Version,
		"cacheBackend":       s.cache.Backend(),
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"maxBatch":           s.maxBatch,
		"fetchEnabled":       s.fetcher != nil,
		"classified":         s.classified.Load(),
		"failed":             s.failed.Load(),
		"cacheHits":          s.cacheHits.Load(),
		"garmentsScored":     s.garments.Load(),
	}
	if m, ok := s.cache.(interface{ Len() int64 }); ok {
		stats["cacheEntries"] = m.Len()
	}
	if s.started {
		stats["queueLength"] = s.jobs.Len()
	}
	return stats
}
