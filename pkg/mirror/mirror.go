// Package mirror is an optional read-through cache of accounts API
// responses. It wraps any AccountsAPI and is invalidated by every
// mutation that passes through it.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"bank-admin/pkg/account"
	"bank-admin/pkg/cache"
	"bank-admin/pkg/client"
	"bank-admin/pkg/logging"
	"bank-admin/pkg/metrics"
	"bank-admin/pkg/writer"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Lookup kinds reported to metrics.
const (
	kindList    = "list"
	kindAccount = "account"
)

// Mirror serves List and Get from a store when it has a fresh copy and
// falls through to the wrapped API otherwise. Store failures never
// surface to callers.
type Mirror struct {
	api      client.AccountsAPI
	store    cache.Store
	keys     cache.AccountKeys
	negative *cache.NegativeCache
	warmer   *writer.AsyncWriter
	sf       singleflight.Group
	config   Config
	metrics  metrics.MetricsCollector
	logger   *logging.Logger

	// generation increments on every invalidation. Fills started under an
	// older generation are not stored.
	generation uint64
}

var _ client.AccountsAPI = (*Mirror)(nil)

// New wraps api with a mirror on store.
func New(api client.AccountsAPI, store cache.Store, config Config) (*Mirror, error) {
	return NewWithMetrics(api, store, config, metrics.NoOpCollector{})
}

// NewWithMetrics wraps api with a mirror on store and a custom metrics collector.
func NewWithMetrics(api client.AccountsAPI, store cache.Store, config Config, metricsCollector metrics.MetricsCollector) (*Mirror, error) {
	if api == nil {
		return nil, errors.New("mirror: api required")
	}
	if store == nil {
		return nil, errors.New("mirror: store required")
	}
	if metricsCollector == nil {
		metricsCollector = metrics.NoOpCollector{}
	}

	defaults := DefaultConfig()
	if config.ListTTL <= 0 {
		config.ListTTL = defaults.ListTTL
	}
	if config.AccountTTL <= 0 {
		config.AccountTTL = defaults.AccountTTL
	}
	if config.NotFoundTTL <= 0 {
		config.NotFoundTTL = defaults.NotFoundTTL
	}

	m := &Mirror{
		api:      api,
		store:    store,
		keys:     cache.NewAccountKeys(config.Namespace),
		negative: cache.NewNegativeCache(config.NotFoundTTL),
		config:   config,
		metrics:  metricsCollector,
		logger:   logging.Global().Named("mirror").With(zap.String("store", store.Name())),
	}
	if config.Warm {
		m.warmer = writer.NewAsyncWriterWithMetrics(store, config.Writer, metricsCollector)
	}

	m.logger.Info("account mirror enabled",
		zap.Duration("list_ttl", config.ListTTL),
		zap.Duration("account_ttl", config.AccountTTL),
		zap.Duration("not_found_ttl", config.NotFoundTTL),
		zap.Bool("warm", config.Warm),
	)

	return m, nil
}

// StoreName returns the name of the backing store.
func (m *Mirror) StoreName() string {
	return m.store.Name()
}

// Ping is never cached.
func (m *Mirror) Ping(ctx context.Context) error {
	return m.api.Ping(ctx)
}

// List returns the listing from the store or the API. Concurrent misses
// share one API call.
func (m *Mirror) List(ctx context.Context) ([]account.Account, error) {
	key := m.keys.List()

	var cached []account.Account
	if m.load(ctx, key, &cached) {
		m.metrics.RecordCacheLookup(kindList, true)
		return cached, nil
	}
	m.metrics.RecordCacheLookup(kindList, false)

	gen := atomic.LoadUint64(&m.generation)
	result, err, shared := m.sf.Do(key, func() (interface{}, error) {
		accounts, err := m.api.List(ctx)
		if err != nil {
			return nil, err
		}
		m.fillList(ctx, gen, accounts)
		return accounts, nil
	})
	if err != nil {
		return nil, err
	}

	accounts := result.([]account.Account)
	if shared {
		// Each caller gets its own slice
		accounts = append([]account.Account(nil), accounts...)
	}
	return accounts, nil
}

// Get returns one account from the store or the API. A 404 is
// remembered for NotFoundTTL.
func (m *Mirror) Get(ctx context.Context, id int64) (*account.Account, error) {
	key := m.keys.Account(id)

	if m.negative.Has(key) {
		m.metrics.RecordCacheLookup(kindAccount, true)
		return nil, notFound()
	}

	var cached account.Account
	if m.load(ctx, key, &cached) {
		m.metrics.RecordCacheLookup(kindAccount, true)
		return &cached, nil
	}
	m.metrics.RecordCacheLookup(kindAccount, false)

	gen := atomic.LoadUint64(&m.generation)
	result, err, _ := m.sf.Do(key, func() (interface{}, error) {
		a, err := m.api.Get(ctx, id)
		if err != nil {
			if client.IsNotFound(err) && m.current(gen) {
				m.negative.Add(key)
				if !m.current(gen) {
					m.negative.Remove(key)
				}
			}
			return nil, err
		}
		m.fill(ctx, gen, key, a, m.config.AccountTTL)
		return a, nil
	})
	if err != nil {
		return nil, err
	}

	a := *result.(*account.Account)
	return &a, nil
}

// Create passes through and invalidates the listing.
func (m *Mirror) Create(ctx context.Context, req account.CreateRequest) (*account.Account, error) {
	a, err := m.api.Create(ctx, req)
	if a != nil {
		m.invalidate(ctx, client.OpCreate, a.ID)
	} else {
		m.invalidate(ctx, client.OpCreate)
	}
	return a, err
}

// Update passes through and invalidates the listing and the account.
func (m *Mirror) Update(ctx context.Context, id int64, req account.UpdateRequest) (*account.Account, error) {
	a, err := m.api.Update(ctx, id, req)
	m.invalidate(ctx, client.OpUpdate, id)
	return a, err
}

// Delete passes through and invalidates the listing and the account.
func (m *Mirror) Delete(ctx context.Context, id int64) error {
	err := m.api.Delete(ctx, id)
	m.invalidate(ctx, client.OpDelete, id)
	return err
}

// Invalidate drops every mirrored entry reachable from the listing key
// and the given ids.
func (m *Mirror) Invalidate(ctx context.Context, ids ...int64) {
	m.invalidate(ctx, "manual", ids...)
}

// Flush waits for background warm writes. It is a no-op without a warmer.
func (m *Mirror) Flush(timeout time.Duration) error {
	if m.warmer == nil {
		return nil
	}
	return m.warmer.Flush(timeout)
}

// Close stops the warmer and closes the store.
func (m *Mirror) Close() error {
	if m.warmer != nil {
		m.warmer.Close()
	}
	m.negative.Close()
	return m.store.Close()
}

// invalidate runs after the API answered, whatever the outcome, so the
// re-fetch that follows a mutation always reaches the server.
func (m *Mirror) invalidate(ctx context.Context, op string, ids ...int64) {
	atomic.AddUint64(&m.generation, 1)

	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, m.keys.List())
	for _, id := range ids {
		keys = append(keys, m.keys.Account(id))
	}

	m.negative.Remove(keys...)
	for _, key := range keys {
		m.sf.Forget(key)
	}

	if err := m.store.Delete(detach(ctx), keys...); err != nil {
		m.logger.Warn("mirror invalidation failed",
			zap.String("operation", op),
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
	m.metrics.RecordCacheInvalidation(op)
}

func (m *Mirror) current(gen uint64) bool {
	return atomic.LoadUint64(&m.generation) == gen
}

// load decodes key into v. Misses and store errors both report false.
func (m *Mirror) load(ctx context.Context, key string, v interface{}) bool {
	data, err := m.store.Get(ctx, key)
	if err != nil {
		if !cache.IsNotFound(err) {
			m.logger.Debug("mirror read failed, using api",
				zap.String("key", key),
				zap.String("error_type", cache.ClassifyError(err)),
				zap.Error(err),
			)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		m.logger.Warn("discarding undecodable mirror entry", zap.String("key", key), zap.Error(err))
		_ = m.store.Delete(ctx, key)
		return false
	}
	return true
}

// fill stores v under key unless an invalidation happened since gen. A
// Set that raced an invalidation is deleted again.
func (m *Mirror) fill(ctx context.Context, gen uint64, key string, v interface{}, ttl time.Duration) {
	if !m.current(gen) {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		m.logger.Warn("cannot encode mirror entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := m.store.Set(detach(ctx), key, data, ttl); err != nil {
		m.logger.Debug("mirror write failed", zap.String("key", key), zap.Error(err))
		return
	}
	// invalidate bumps the generation before deleting, so either it ran
	// after this Set or the bump is visible here.
	if !m.current(gen) {
		if err := m.store.Delete(detach(ctx), key); err != nil {
			m.logger.Warn("retracting stale mirror entry failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// fillList stores the listing and queues per-id entries on the warmer.
func (m *Mirror) fillList(ctx context.Context, gen uint64, accounts []account.Account) {
	m.fill(ctx, gen, m.keys.List(), accounts, m.config.ListTTL)
	if m.warmer == nil || !m.current(gen) {
		return
	}

	stillCurrent := func() bool { return m.current(gen) }
	for i := range accounts {
		data, err := json.Marshal(accounts[i])
		if err != nil {
			continue
		}
		key := m.keys.Account(accounts[i].ID)
		if err := m.warmer.WriteIf(detach(ctx), key, data, m.config.AccountTTL, stillCurrent); err != nil {
			m.logger.Debug("warm write not queued", zap.String("key", key), zap.Error(err))
			if errors.Is(err, writer.ErrWriterClosed) {
				return
			}
		}
	}
}

// notFound builds the error for a remembered 404.
func notFound() error {
	return &client.APIError{
		Op:         client.OpGet,
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Message:    "Account not found",
		Decoded:    true,
	}
}

// detach keeps ctx values but drops its cancellation so cache
// maintenance finishes after the caller has its answer.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
