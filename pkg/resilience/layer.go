package resilience

import (
	"context"
	"errors"
	"time"

	"bank-admin/pkg/account"
	"bank-admin/pkg/client"
	"bank-admin/pkg/logging"
	"bank-admin/pkg/metrics"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ResilientAPI wraps an AccountsAPI with resilience features including
// circuit breaker and timeout protection.
type ResilientAPI struct {
	api     client.AccountsAPI
	cb      *gobreaker.CircuitBreaker
	name    string
	timeout time.Duration
	metrics metrics.MetricsCollector
	logger  *logging.Logger
}

var _ client.AccountsAPI = (*ResilientAPI)(nil)

// NewResilientAPI creates a new resilient wrapper around the given API.
// It adds circuit breaker protection and timeout enforcement to all operations.
func NewResilientAPI(api client.AccountsAPI, config ResilientConfig) *ResilientAPI {
	return NewResilientAPIWithMetrics(api, config, metrics.NoOpCollector{})
}

// NewResilientAPIWithMetrics creates a new resilient wrapper with custom metrics collector.
func NewResilientAPIWithMetrics(api client.AccountsAPI, config ResilientConfig, metricsCollector metrics.MetricsCollector) *ResilientAPI {
	name := config.Name
	if name == "" {
		name = DefaultResilientConfig().Name
	}
	if metricsCollector == nil {
		metricsCollector = metrics.NoOpCollector{}
	}
	logger := logging.Global().Named("resilience").Named(name)

	ra := &ResilientAPI{
		api:     api,
		name:    name,
		timeout: config.Timeout,
		metrics: metricsCollector,
		logger:  logger,
	}

	cbConfig := config.CircuitBreakerConfig
	logger.Info("resilient api initialized",
		zap.Duration("timeout", config.Timeout),
		zap.Uint32("max_requests", cbConfig.MaxRequests),
		zap.Duration("circuit_interval", cbConfig.Interval),
		zap.Duration("circuit_timeout", cbConfig.Timeout),
	)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cbConfig.MaxRequests,
		Interval:    cbConfig.Interval,
		Timeout:     cbConfig.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cbConfig.readyToTrip(Counts{
				Requests:             counts.Requests,
				TotalSuccesses:       counts.TotalSuccesses,
				TotalFailures:        counts.TotalFailures,
				ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
				ConsecutiveFailures:  counts.ConsecutiveFailures,
			})
		},
		// 4xx answers and decode errors mean the backend is up
		IsSuccessful: func(err error) bool {
			return !client.IsBackendFailure(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			ra.metrics.RecordCircuitState(name, circuitState(to))
		},
	}

	ra.cb = gobreaker.NewCircuitBreaker(settings)
	metricsCollector.RecordCircuitState(name, metrics.CircuitClosed)

	return ra
}

// Name returns the breaker name.
func (ra *ResilientAPI) Name() string {
	return ra.name
}

// State returns the current circuit breaker state.
func (ra *ResilientAPI) State() metrics.CircuitState {
	return circuitState(ra.cb.State())
}

func circuitState(s gobreaker.State) metrics.CircuitState {
	switch s {
	case gobreaker.StateHalfOpen:
		return metrics.CircuitHalfOpen
	case gobreaker.StateOpen:
		return metrics.CircuitOpen
	default:
		return metrics.CircuitClosed
	}
}

// execute runs fn through the breaker with the per-call timeout applied.
func (ra *ResilientAPI) execute(ctx context.Context, op string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	start := time.Now()

	// Apply timeout if configured
	if ra.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ra.timeout)
		defer cancel()
	}

	result, err := ra.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err == nil {
		return result, nil
	}

	duration := time.Since(start)

	// Convert gobreaker rejections to our error type
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		ra.logger.Warn("circuit breaker open - request rejected",
			zap.String("operation", op),
		)
		ra.metrics.RecordRequest(op, client.ClassifyError(client.ErrCircuitOpen), duration)
		return nil, client.ErrCircuitOpen
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, client.ErrTimeout) {
		ra.logger.Warn("operation timeout",
			zap.String("operation", op),
			zap.Duration("timeout", ra.timeout),
			zap.Duration("elapsed", duration),
		)
		return nil, client.ErrTimeout
	}

	if client.IsBackendFailure(err) {
		ra.logger.Error("accounts api call failed",
			zap.String("operation", op),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	}
	return nil, err
}

// Ping checks reachability. While the breaker is open it reports
// ErrCircuitOpen without touching the network.
func (ra *ResilientAPI) Ping(ctx context.Context) error {
	_, err := ra.execute(ctx, client.OpPing, func(ctx context.Context) (interface{}, error) {
		return nil, ra.api.Ping(ctx)
	})
	return err
}

// List fetches all accounts with timeout and circuit breaker protection.
func (ra *ResilientAPI) List(ctx context.Context) ([]account.Account, error) {
	result, err := ra.execute(ctx, client.OpList, func(ctx context.Context) (interface{}, error) {
		return ra.api.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]account.Account), nil
}

// Get fetches one account with timeout and circuit breaker protection.
func (ra *ResilientAPI) Get(ctx context.Context, id int64) (*account.Account, error) {
	result, err := ra.execute(ctx, client.OpGet, func(ctx context.Context) (interface{}, error) {
		return ra.api.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*account.Account), nil
}

// Create creates an account with timeout and circuit breaker protection.
func (ra *ResilientAPI) Create(ctx context.Context, req account.CreateRequest) (*account.Account, error) {
	result, err := ra.execute(ctx, client.OpCreate, func(ctx context.Context) (interface{}, error) {
		return ra.api.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*account.Account), nil
}

// Update updates an account with timeout and circuit breaker protection.
func (ra *ResilientAPI) Update(ctx context.Context, id int64, req account.UpdateRequest) (*account.Account, error) {
	result, err := ra.execute(ctx, client.OpUpdate, func(ctx context.Context) (interface{}, error) {
		return ra.api.Update(ctx, id, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*account.Account), nil
}

// Delete removes an account with timeout and circuit breaker protection.
func (ra *ResilientAPI) Delete(ctx context.Context, id int64) error {
	_, err := ra.execute(ctx, client.OpDelete, func(ctx context.Context) (interface{}, error) {
		return nil, ra.api.Delete(ctx, id)
	})
	return err
}
