package main

import (
	"fmt"
	"time"

	"bank-admin/pkg/admin"
	"bank-admin/pkg/client"
	"bank-admin/pkg/config"
	"bank-admin/pkg/metrics"
	"bank-admin/pkg/mirror"
	"bank-admin/pkg/resilience"
)

// stack is the assembled accounts pipeline:
// admin -> mirror (optional) -> resilience -> client.
type stack struct {
	client  *client.Client
	breaker *resilience.ResilientAPI
	mirror  *mirror.Mirror
	service *admin.Service
}

func buildStack(cfg *config.Config, collector metrics.MetricsCollector) (*stack, error) {
	c, err := client.NewWithMetrics(cfg.API, collector)
	if err != nil {
		return nil, fmt.Errorf("error creating accounts client: %w", err)
	}

	st := &stack{client: c}
	st.breaker = resilience.NewResilientAPIWithMetrics(c, cfg.Resilience, collector)

	var api client.AccountsAPI = st.breaker
	store, err := mirror.NewStore(cfg.Mirror)
	if err != nil {
		return nil, fmt.Errorf("error creating mirror store: %w", err)
	}
	if store != nil {
		st.mirror, err = mirror.NewWithMetrics(st.breaker, store, cfg.Mirror, collector)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("error creating mirror: %w", err)
		}
		api = st.mirror
	}

	st.service = admin.NewService(api, c.BaseURL(), collector)
	return st, nil
}

func (st *stack) mirrorBackend() string {
	if st.mirror == nil {
		return mirror.BackendNone
	}
	return st.mirror.StoreName()
}

// close flushes pending warm writes and releases the store.
func (st *stack) close() error {
	if st.mirror == nil {
		return nil
	}
	_ = st.mirror.Flush(2 * time.Second)
	return st.mirror.Close()
}
