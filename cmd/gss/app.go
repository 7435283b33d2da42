package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/gss"
	"github.com/aretw0/gss/internal/config"
	"github.com/aretw0/gss/pkg/adapters/file"
	"github.com/aretw0/gss/pkg/adapters/memory"
	"github.com/aretw0/gss/pkg/adapters/redis"
	"github.com/aretw0/gss/pkg/adapters/sqlite"
	"github.com/aretw0/gss/pkg/metrics"
	"github.com/aretw0/gss/pkg/persistence/middleware"
	"github.com/aretw0/gss/pkg/ports"
	"github.com/aretw0/gss/pkg/session"
)

// app carries what every command shares: configuration, logger and the resources that
// must be released on exit.
type app struct {
	cfgPath string
	debug   bool

	cfg     config.Config
	logger  *slog.Logger
	closers []func() error
}

func (a *app) load() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Logger(a.debug)
	return nil
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// history opens the configured backend.
func (a *app) history(ctx context.Context) (*session.Manager, error) {
	h := a.cfg.History
	opts := []session.Option{
		session.WithMaxEntries(h.MaxEntries),
		session.WithLockTTL(h.LockTTL),
		session.WithLogger(a.logger),
	}

	var store ports.HistoryStore
	switch h.Backend {
	case config.BackendMemory:
		store = memory.NewStore()
	case config.BackendFile:
		store = file.New(h.Dir)
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, h.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		store = s
	case config.BackendRedis:
		s := redis.New(h.Redis.Addr, h.Redis.Password, h.Redis.DB,
			redis.WithPrefix(h.Redis.Prefix),
			redis.WithTTL(h.Redis.TTL),
		)
		a.closers = append(a.closers, s.Close)
		if err := s.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", h.Redis.Addr, err)
		}
		if h.Redis.Lock {
			opts = append(opts, session.WithLocker(redis.NewLocker(s.Client(), s.Prefix())))
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown history backend %q", h.Backend)
	}

	mws, err := h.Middleware()
	if err != nil {
		return nil, err
	}
	store = middleware.Chain(store, mws...)

	a.logger.Debug("history backend ready", "backend", h.Backend, "middleware", len(mws))
	return session.NewManager(store, opts...), nil
}

// solver builds a Solver with history and, when collector is not nil, metrics.
func (a *app) solver(ctx context.Context, collector *metrics.Collector) (*gss.Solver, error) {
	history, err := a.history(ctx)
	if err != nil {
		return nil, err
	}
	opts := []gss.Option{
		gss.WithLogger(a.logger),
		gss.WithHistory(history),
		gss.WithMaxIterations(a.cfg.Solver.MaxIterations),
		gss.WithSamples(a.cfg.Solver.Samples),
		gss.WithMaxExpressionSize(a.cfg.Solver.MaxExpressionSize),
	}
	if collector != nil {
		opts = append(opts, gss.WithMetrics(collector))
	}
	return gss.New(opts...), nil
}
