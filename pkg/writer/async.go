// Package writer seeds a cache.Store in the background through a bounded
// queue and a worker pool.
package writer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bank-admin/pkg/cache"
	"bank-admin/pkg/logging"
	"bank-admin/pkg/metrics"

	"go.uber.org/zap"
)

// AsyncWriter provides non-blocking store writes using a worker pool and
// bounded queue. Writes that do not fit in the queue within MaxWaitTime
// are dropped.
type AsyncWriter struct {
	store      cache.Store
	queue      chan writeOp
	workers    int
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	config     AsyncWriterConfig
	metrics    metrics.MetricsCollector
	logger     *logging.Logger

	// Statistics (accessed atomically)
	droppedWrites int64
	totalWrites   int64
	failedWrites  int64
	skippedWrites int64
	pending       int64

	// Metrics ticker for periodic queue depth reporting
	metricsTicker *time.Ticker
	metricsStop   chan struct{}
}

// writeOp represents a pending write operation.
type writeOp struct {
	key   string
	value []byte
	ttl   time.Duration
	// valid, when set, is checked right before the write; false skips it
	valid func() bool
}

// AsyncWriterConfig configures the async writer behavior.
type AsyncWriterConfig struct {
	// QueueSize is the bounded queue size (default: 1000)
	QueueSize int `toml:"queue_size" validate:"min=0"`

	// Workers is the number of concurrent workers (default: 2)
	Workers int `toml:"workers" validate:"min=0"`

	// MaxWaitTime is the max time to wait if queue is full (default: 10ms)
	MaxWaitTime time.Duration `toml:"max_wait" validate:"min=0"`

	// WriteTimeout bounds a single store write (default: 1s)
	WriteTimeout time.Duration `toml:"write_timeout" validate:"min=0"`
}

// NewAsyncWriter creates a new async writer with bounded queue and worker pool.
// The writer starts processing immediately and must be closed with Close().
func NewAsyncWriter(store cache.Store, config AsyncWriterConfig) *AsyncWriter {
	return NewAsyncWriterWithMetrics(store, config, metrics.NoOpCollector{})
}

// NewAsyncWriterWithMetrics creates a new async writer with custom metrics collector.
func NewAsyncWriterWithMetrics(store cache.Store, config AsyncWriterConfig, metricsCollector metrics.MetricsCollector) *AsyncWriter {
	if config.QueueSize <= 0 {
		config.QueueSize = 1000
	}
	if config.Workers <= 0 {
		config.Workers = 2
	}
	if config.MaxWaitTime == 0 {
		config.MaxWaitTime = 10 * time.Millisecond
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = time.Second
	}
	if metricsCollector == nil {
		metricsCollector = metrics.NoOpCollector{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &AsyncWriter{
		store:         store,
		queue:         make(chan writeOp, config.QueueSize),
		workers:       config.Workers,
		ctx:           ctx,
		cancelFunc:    cancel,
		config:        config,
		metrics:       metricsCollector,
		logger:        logging.Global().Named("writer").With(zap.String("store", store.Name())),
		metricsTicker: time.NewTicker(5 * time.Second), // Report queue depth every 5s
		metricsStop:   make(chan struct{}),
	}

	for i := 0; i < config.Workers; i++ {
		w.wg.Add(1)
		go w.worker()
	}

	go w.reportMetrics()

	return w
}

// Write enqueues a write operation non-blockingly.
// If the queue is full, it waits up to MaxWaitTime before dropping the write.
// Returns ErrQueueFull if the write was dropped due to backpressure.
func (w *AsyncWriter) Write(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return w.WriteIf(ctx, key, value, ttl, nil)
}

// WriteIf is Write with a condition evaluated by the worker before and
// after storing. False before skips the write; false after deletes the
// key again.
func (w *AsyncWriter) WriteIf(ctx context.Context, key string, value []byte, ttl time.Duration, valid func() bool) error {
	select {
	case <-w.ctx.Done():
		return ErrWriterClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	op := writeOp{
		key:   key,
		value: value,
		ttl:   ttl,
		valid: valid,
	}

	timer := time.NewTimer(w.config.MaxWaitTime)
	defer timer.Stop()

	atomic.AddInt64(&w.pending, 1)
	select {
	case w.queue <- op:
		atomic.AddInt64(&w.totalWrites, 1)
		return nil
	case <-timer.C:
		atomic.AddInt64(&w.pending, -1)
		atomic.AddInt64(&w.droppedWrites, 1)
		w.metrics.RecordWarmDropped()
		return ErrQueueFull
	case <-ctx.Done():
		atomic.AddInt64(&w.pending, -1)
		return ctx.Err()
	case <-w.ctx.Done():
		atomic.AddInt64(&w.pending, -1)
		return ErrWriterClosed
	}
}

// worker processes write operations from the queue.
func (w *AsyncWriter) worker() {
	defer w.wg.Done()

	for {
		select {
		case op := <-w.queue:
			w.process(op)
		case <-w.ctx.Done():
			// Drain remaining items in queue before exiting
			for {
				select {
				case op := <-w.queue:
					w.process(op)
				default:
					return
				}
			}
		}
	}
}

func (w *AsyncWriter) process(op writeOp) {
	defer atomic.AddInt64(&w.pending, -1)

	if op.valid != nil && !op.valid() {
		atomic.AddInt64(&w.skippedWrites, 1)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := w.store.Set(ctx, op.key, op.value, op.ttl)
	duration := time.Since(start)

	w.metrics.RecordWarmWrite(err == nil, duration)

	if err != nil {
		atomic.AddInt64(&w.failedWrites, 1)
		w.logger.Warn("warm write failed",
			zap.String("key", op.key),
			zap.String("error_type", cache.ClassifyError(err)),
			zap.Error(err),
		)
		return
	}

	// The condition may have flipped while Set was in flight.
	if op.valid != nil && !op.valid() {
		atomic.AddInt64(&w.skippedWrites, 1)
		if err := w.store.Delete(ctx, op.key); err != nil {
			w.logger.Warn("retracting stale warm write failed", zap.String("key", op.key), zap.Error(err))
		}
	}
}

// Flush waits for all pending writes to complete or until timeout.
// Returns an error if timeout is exceeded.
func (w *AsyncWriter) Flush(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		if atomic.LoadInt64(&w.pending) == 0 {
			return nil
		}

		if time.Now().After(deadline) {
			return ErrFlushTimeout
		}

		time.Sleep(5 * time.Millisecond)
	}
}

// Close stops accepting new writes and waits for workers to complete.
// Any writes in the queue will be processed before shutdown.
func (w *AsyncWriter) Close() error {
	w.closeOnce.Do(func() {
		close(w.metricsStop)
		w.metricsTicker.Stop()

		w.cancelFunc()
		w.wg.Wait()
	})
	return nil
}

// reportMetrics periodically reports queue depth.
func (w *AsyncWriter) reportMetrics() {
	for {
		select {
		case <-w.metricsTicker.C:
			w.metrics.RecordQueueDepth(len(w.queue))
		case <-w.metricsStop:
			return
		}
	}
}

// Stats returns current statistics about the async writer.
func (w *AsyncWriter) Stats() AsyncWriterStats {
	return AsyncWriterStats{
		QueueDepth:    len(w.queue),
		DroppedWrites: atomic.LoadInt64(&w.droppedWrites),
		TotalWrites:   atomic.LoadInt64(&w.totalWrites),
		FailedWrites:  atomic.LoadInt64(&w.failedWrites),
		SkippedWrites: atomic.LoadInt64(&w.skippedWrites),
	}
}
