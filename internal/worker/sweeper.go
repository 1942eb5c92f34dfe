package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
)

// IncompleteSource lists orders whose status may not have reached the peer.
type IncompleteSource interface {
	Incomplete(ctx context.Context, after repository.IncompleteCursor, limit int) ([]model.Order, error)
}

// Deliverer pushes one order status to the peer synchronously.
type Deliverer interface {
	Deliver(ctx context.Context, order model.Order) error
}

// Sweeper periodically republishes incomplete orders through a worker pool.
// Each tick sends the next page after the previous one and wraps to the oldest
// order once the end is reached. It reads the store but never writes to it.
type Sweeper struct {
	source    IncompleteSource
	deliverer Deliverer
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger

	// cursor is owned by the loop goroutine.
	cursor repository.IncompleteCursor
	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSweeper constructs the sweeper. A non-positive interval disables it.
func NewSweeper(source IncompleteSource, deliverer Deliverer, interval time.Duration, batchSize, workers int, logger *slog.Logger) *Sweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Sweeper{
		source:    source,
		deliverer: deliverer,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
	}
}

// Enabled reports whether Start launches anything.
func (s *Sweeper) Enabled() bool {
	return s.interval > 0
}

// Start launches the ticker loop and workers. The loop outlives ctx
// cancellation and only ends on Stop.
func (s *Sweeper) Start(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.jobs = make(chan model.Order, s.batchSize)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx, s.jobs)
	}

	s.wg.Add(1)
	go s.loop(runCtx, s.jobs)
	s.logger.Info("sweeper started", slog.Duration("interval", s.interval), slog.Int("workers", s.workers))
}

// Stop cancels the loop and waits for in-flight deliveries.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context, jobs chan<- model.Order) {
	defer s.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx, jobs)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context, jobs chan<- model.Order) {
	orders, err := s.source.Incomplete(ctx, s.cursor, s.batchSize)
	if err != nil {
		s.logger.Error("list incomplete orders failed", slog.String("error", err.Error()))
		return
	}
	if len(orders) < s.batchSize {
		s.cursor = repository.IncompleteCursor{}
	} else {
		s.cursor = repository.CursorAfter(orders[len(orders)-1])
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case jobs <- order:
		}
	}
}

func (s *Sweeper) worker(ctx context.Context, jobs <-chan model.Order) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-jobs:
			if !ok {
				return
			}
			if err := s.deliverer.Deliver(ctx, order); err != nil {
				s.logger.Warn("sweep delivery failed", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
			}
		}
	}
}
