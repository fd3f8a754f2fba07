package worker_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/swatch/internal/adapters/mq/queue"
	"github.com/okian/swatch/internal/adapters/mq/worker"
	"github.com/okian/swatch/internal/domain/garment"
	"github.com/okian/swatch/internal/domain/model"
	logging "github.com/okian/swatch/pkg/logger"
	"github.com/okian/swatch/pkg/metrics"
)

// mockScorer echoes the garment red channel as ΔE so results can be matched to requests.
type mockScorer struct {
	calls atomic.Int64
	delay time.Duration
	block chan struct{}
}

func (m *mockScorer) Score(req garment.Request) model.GarmentColorScore {
	m.calls.Add(1)
	if m.block != nil {
		<-m.block
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return model.GarmentColorScore{Rating: model.RatingOK, DeltaE: float64(req.Color.R)}
}

func requests(n int) []garment.Request {
	reqs := make([]garment.Request, n)
	for i := range reqs {
		reqs[i] = garment.Request{Color: &model.PixelSample{R: uint8(i)}, Season: model.Winter}
	}
	return reqs
}

func newPool(workers, capacity int, s worker.Scorer) *worker.Pool {
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	q := queue.NewInMemoryQueue[worker.Job](queue.WithCapacity(capacity), queue.WithMetrics(m))
	return worker.NewPool(workers, q, s, worker.WithMetrics(m))
}

func TestPool(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	convey.Convey("Given a started worker pool", t, func() {
		scorer := &mockScorer{delay: time.Millisecond}
		pool := newPool(4, 64, scorer)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When a batch is scored", func() {
			res, err := pool.ScoreBatch(context.Background(), requests(40))

			convey.Convey("Then results keep request order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res, convey.ShouldHaveLength, 40)
				for i, r := range res {
					convey.So(r.DeltaE, convey.ShouldEqual, float64(i))
				}
				convey.So(scorer.calls.Load(), convey.ShouldEqual, 40)
			})
		})

		convey.Convey("When the batch is empty", func() {
			res, err := pool.ScoreBatch(context.Background(), nil)

			convey.Convey("Then it returns immediately", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When batches run concurrently", func() {
			var wg sync.WaitGroup
			errs := make([]error, 8)
			for b := 0; b < 8; b++ {
				b := b
				wg.Add(1)
				go func() {
					defer wg.Done()
					res, err := pool.ScoreBatch(context.Background(), requests(20))
					if err == nil {
						for i, r := range res {
							if r.DeltaE != float64(i) {
								err = fmt.Errorf("batch %d: slot %d holds %v", b, i, r.DeltaE)
								break
							}
						}
					}
					errs[b] = err
				}()
			}
			wg.Wait()

			convey.Convey("Then no batch sees another's results", func() {
				for _, err := range errs {
					convey.So(err, convey.ShouldBeNil)
				}
			})
		})

		convey.Convey("When the pool shuts down", func() {
			err := pool.Shutdown(context.Background())

			convey.Convey("Then later batches are scored inline", func() {
				convey.So(err, convey.ShouldBeNil)
				res, err := pool.ScoreBatch(context.Background(), requests(3))
				convey.So(err, convey.ShouldBeNil)
				convey.So(res[2].DeltaE, convey.ShouldEqual, 2)
			})
		})
	})
}

func TestPoolBackpressure(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	convey.Convey("Given a pool whose queue is smaller than the batch", t, func() {
		scorer := &mockScorer{}
		pool := newPool(1, 1, scorer)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		res, err := pool.ScoreBatch(context.Background(), requests(30))

		convey.Convey("Then overflow is scored inline and every slot is filled", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(res, convey.ShouldHaveLength, 30)
			for i, r := range res {
				convey.So(r.DeltaE, convey.ShouldEqual, float64(i))
			}
			convey.So(pool.Size(), convey.ShouldEqual, 1)
		})
	})
}

func TestPoolCanceledBatch(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	convey.Convey("Given workers stuck on a slow garment", t, func() {
		scorer := &mockScorer{block: make(chan struct{})}
		pool := newPool(1, 8, scorer)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		reqCtx, reqCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer reqCancel()
		_, err := pool.ScoreBatch(reqCtx, requests(3))
		close(scorer.block)

		convey.Convey("Then the caller gets the context error", func() {
			convey.So(err, convey.ShouldWrap, context.DeadlineExceeded)
		})
	})
}

// panicScorer panics on the garment whose red channel matches bad.
type panicScorer struct {
	bad uint8
}

func (p panicScorer) Score(req garment.Request) model.GarmentColorScore {
	if req.Color.R == p.bad {
		panic("bad garment")
	}
	return model.GarmentColorScore{Rating: model.RatingOK, DeltaE: float64(req.Color.R)}
}

func TestPoolOutlivesStartContext(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	convey.Convey("Given a pool whose start context is canceled", t, func() {
		scorer := &mockScorer{}
		pool := newPool(2, 16, scorer)
		ctx, cancel := context.WithCancel(context.Background())
		pool.Start(ctx)
		cancel()
		time.Sleep(10 * time.Millisecond)

		convey.Convey("When a batch is scored before shutdown", func() {
			reqCtx, reqCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer reqCancel()
			res, err := pool.ScoreBatch(reqCtx, requests(5))

			convey.Convey("Then the workers still complete it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res, convey.ShouldHaveLength, 5)
				convey.So(res[4].DeltaE, convey.ShouldEqual, 4)
			})

			convey.Convey("And shutdown drains and stops the workers", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestPoolPanickingScorer(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	convey.Convey("Given a scorer that panics on one garment", t, func() {
		pool := newPool(2, 16, panicScorer{bad: 3})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)
		defer func() { _ = pool.Shutdown(context.Background()) }()

		res, err := pool.ScoreBatch(context.Background(), requests(6))

		convey.Convey("Then the batch fails instead of returning an empty slot", func() {
			convey.So(err, convey.ShouldWrap, worker.ErrScorePanic)
			convey.So(res, convey.ShouldBeNil)
		})

		convey.Convey("And the workers keep serving later batches", func() {
			res, err := pool.ScoreBatch(context.Background(), requests(3))
			convey.So(err, convey.ShouldBeNil)
			convey.So(res, convey.ShouldHaveLength, 3)
		})
	})
}
