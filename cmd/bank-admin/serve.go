package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"bank-admin/pkg/api"
	"bank-admin/pkg/config"
	"bank-admin/pkg/console"
	"bank-admin/pkg/logging"
	"bank-admin/pkg/metrics"
	"bank-admin/pkg/metrics/memory"
	promcollector "bank-admin/pkg/metrics/prometheus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// servers are the listeners run by the serve command.
type servers struct {
	stack   *stack
	console *http.Server
	ops     *api.Server
}

func newServers(cfg *config.Config) (*servers, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pc := promcollector.NewPrometheusCollector(cfg.Ops.Namespace)
	if err := pc.Register(registry); err != nil {
		return nil, fmt.Errorf("error registering metrics: %w", err)
	}
	mem := memory.NewMemoryCollector()

	st, err := buildStack(cfg, metrics.Multi(mem, pc))
	if err != nil {
		return nil, err
	}

	ui, err := console.NewWithRegistry(console.Options{
		Service:  st.service,
		Currency: cfg.Currency,
	}, registry, cfg.Ops.Namespace)
	if err != nil {
		st.close()
		return nil, fmt.Errorf("error creating console: %w", err)
	}

	s := &servers{
		stack: st,
		console: &http.Server{
			Addr:         cfg.Console.Addr,
			Handler:      ui,
			ReadTimeout:  cfg.Console.ReadTimeout,
			WriteTimeout: cfg.Console.WriteTimeout,
		},
	}

	if cfg.Ops.Enabled {
		opsConfig := api.DefaultServerConfig()
		opsConfig.Address = cfg.Ops.Addr
		s.ops = api.NewServer(api.Deps{
			Checker:       st.service,
			Breaker:       st.breaker,
			MirrorBackend: st.mirrorBackend(),
			Gatherer:      registry,
			Memory:        mem,
		}, opsConfig)
	}
	return s, nil
}

// start binds both listeners before serving so address errors surface
// immediately.
func (s *servers) start() error {
	logger := logging.L()

	ln, err := net.Listen("tcp", s.console.Addr)
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", s.console.Addr, err)
	}
	if s.ops != nil {
		if err := s.ops.Start(); err != nil {
			ln.Close()
			return fmt.Errorf("error starting ops server: %w", err)
		}
	}

	logger.Info("console listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.console.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("console server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *servers) stop(ctx context.Context) error {
	var errs []error
	if err := s.console.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.ops != nil {
		if err := s.ops.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.stack.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *application) cmdServe(c *cli.Context) error {
	cfg, err := a.loadConfig(c, config.Overrides{
		ConsoleAddr: c.String(flagConsoleAddr),
		OpsAddr:     c.String(flagOpsAddr),
	})
	if err != nil {
		return err
	}
	if err := setupLogger(c, cfg, false); err != nil {
		return err
	}
	logger := logging.L()
	defer logger.Sync()

	s, err := newServers(cfg)
	if err != nil {
		return err
	}
	if err := s.start(); err != nil {
		s.stack.close()
		return err
	}

	check := s.stack.service.CheckBackend(context.Background())
	logger.Info("bank-admin started",
		zap.String("api_base", s.stack.client.BaseURL()),
		zap.String("backend", check.Status),
		zap.String("mirror", s.stack.mirrorBackend()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	timeout := cfg.Console.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.Default().Console.ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.stop(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
		return err
	}
	logger.Info("stopped gracefully")
	return nil
}
