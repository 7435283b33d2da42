package gss

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/expr"
	"github.com/aretw0/gss/pkg/metrics"
	"github.com/aretw0/gss/pkg/report"
	"github.com/aretw0/gss/pkg/search"
	"github.com/aretw0/gss/pkg/session"
)

// Solver is the high-level entry point: compile, validate, search, assemble, record.
// It is safe for concurrent use.
type Solver struct {
	history       *session.Manager
	hooks         domain.SearchHooks
	metrics       *metrics.Collector
	logger        *slog.Logger
	maxIterations int
	samples       int
	maxExprSize   int
}

// Option defines a functional option for configuring the Solver.
type Option func(*Solver)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

// WithHistory records every successful solve in the given session manager.
func WithHistory(m *session.Manager) Option {
	return func(s *Solver) {
		s.history = m
	}
}

// WithHooks registers observability hooks on every search.
func WithHooks(hooks domain.SearchHooks) Option {
	return func(s *Solver) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithMetrics feeds the Prometheus collectors.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Solver) {
		s.metrics = c
		s.hooks = s.hooks.Merge(c.Hooks())
	}
}

// WithMaxIterations sets the iteration cap (clamped to search.HardIterationCap).
func WithMaxIterations(n int) Option {
	return func(s *Solver) {
		s.maxIterations = n
	}
}

// WithSamples sets the number of plot samples.
func WithSamples(n int) Option {
	return func(s *Solver) {
		s.samples = n
	}
}

// WithMaxExpressionSize bounds the expression length in bytes.
func WithMaxExpressionSize(n int) Option {
	return func(s *Solver) {
		s.maxExprSize = n
	}
}

// New initializes a Solver.
func New(opts ...Option) *Solver {
	s := &Solver{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return s
}

// History returns the session manager, or nil when history is disabled.
func (s *Solver) History() *session.Manager {
	return s.history
}

// SolveError is returned when a search aborts after it started. It carries the partial
// result so that clients can still show the trace.
type SolveError struct {
	Err     error
	Partial *domain.SearchResult
}

func (e *SolveError) Error() string { return e.Err.Error() }
func (e *SolveError) Unwrap() error { return e.Err }

// NewErrorPayload classifies any error returned by Solve, including the partial trace of
// an aborted search.
func NewErrorPayload(err error) *report.ErrorPayload {
	var se *SolveError
	if errors.As(err, &se) {
		return report.NewErrorPayload(se.Err, se.Partial)
	}
	return report.NewErrorPayload(err, nil)
}

// Solve runs one request. sessionID may be empty, in which case nothing is recorded.
// A search that hits the iteration cap is not an error: the payload carries status
// not_converged and a warning.
func (s *Solver) Solve(ctx context.Context, sessionID string, in Input) (*report.Payload, error) {
	in = in.Normalize()
	logger := s.logger.With("session_id", sessionID)

	if sessionID != "" {
		if err := session.ValidateID(sessionID); err != nil {
			return nil, &domain.InvalidInputError{Field: "session_id", Reason: err.Error()}
		}
	}

	req, err := in.Request()
	if err != nil {
		return nil, err
	}

	f, err := expr.Compile(in.FuncStr, in.Variable, expr.WithMaxSize(s.maxExprSize))
	if err != nil {
		if s.metrics != nil {
			s.metrics.CompileError()
		}
		logger.Debug("expression rejected", "err", err)
		return nil, err
	}

	res, err := search.Search(f, req,
		search.WithMaxIterations(s.maxIterations),
		search.WithHooks(s.hooks),
		search.WithLogger(logger),
	)
	if err != nil {
		logger.Info("search failed", "func", f.String(), "kind", domain.KindOf(err), "err", err)
		if res != nil {
			return nil, &SolveError{Err: err, Partial: res}
		}
		return nil, err
	}

	payload := report.Assemble(f, req, res, report.WithSamples(s.samples))
	logger.Info("search finished",
		"func", f.String(),
		"mode", req.Mode,
		"status", res.Status,
		"iterations", res.IterationCount,
		"x", res.X,
	)

	if s.history != nil && sessionID != "" {
		if err := s.record(ctx, sessionID, in, req, payload); err != nil {
			// The result is still valid; history is best effort.
			logger.Warn("failed to record history", "err", err)
		}
	}
	return payload, nil
}

func (s *Solver) record(ctx context.Context, sessionID string, in Input, req domain.SearchRequest, payload *report.Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	_, err = s.history.Append(ctx, sessionID, domain.HistoryEntry{
		Function:  in.FuncStr,
		A:         req.A,
		B:         req.B,
		Tolerance: req.Tolerance,
		Mode:      req.Mode,
		Status:    payload.Status,
		Payload:   raw,
	})
	return err
}
