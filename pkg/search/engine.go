package search

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/aretw0/gss/pkg/domain"
)

// Function is the callable the engine optimises.
type Function interface {
	Eval(x float64) (float64, error)
}

// RangeChecker is implemented by functions that can prove they are defined on a whole
// interval. The engine uses it on the terminal bracket to catch singularities that fall
// between probes, such as the pole of 1/x.
type RangeChecker interface {
	CheckRange(lo, hi float64) error
}

// FunctionFunc adapts an ordinary function to Function.
type FunctionFunc func(x float64) (float64, error)

// Eval calls fn(x).
func (fn FunctionFunc) Eval(x float64) (float64, error) { return fn(x) }

// Search narrows [req.A, req.B] toward the extremum selected by req.Mode.
//
// Invalid requests fail before any evaluation with a *domain.InvalidBoundsError or
// *domain.InvalidInputError and a nil result. A failed evaluation yields a
// *domain.EvaluationError together with the partial result recorded so far.
func Search(f Function, req domain.SearchRequest, opts ...Option) (*domain.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)

	start := time.Now()
	if cfg.hooks.OnStart != nil {
		cfg.hooks.OnStart(&domain.SearchEvent{Timestamp: start, Request: req})
	}

	s := &searcher{f: f, req: req, cfg: cfg}
	res, err := s.run()

	if cfg.hooks.OnFinish != nil {
		cfg.hooks.OnFinish(&domain.SearchEvent{
			Timestamp: time.Now(),
			Request:   req,
			Result:    res,
			Err:       err,
			Duration:  time.Since(start),
		})
	}
	return res, err
}

type searcher struct {
	f   Function
	req domain.SearchRequest
	cfg config
	res domain.SearchResult
}

func (s *searcher) run() (*domain.SearchResult, error) {
	a, b := s.req.A, s.req.B
	tol := s.req.Tolerance
	s.res.Iterations = make([]domain.IterationRecord, 0, expectedIterations(b-a, tol, s.cfg.maxIterations))

	x1 := b - domain.Phi*(b-a)
	x2 := a + domain.Phi*(b-a)
	f1, err := s.eval(x1, 0)
	if err != nil {
		return s.fail(a, b, err)
	}
	f2, err := s.eval(x2, 0)
	if err != nil {
		return s.fail(a, b, err)
	}

	for k := 0; b-a >= tol && k < s.cfg.maxIterations; k++ {
		rec := domain.IterationRecord{Index: k, A: a, B: b, X1: x1, X2: x2, F1: f1, F2: f2, Width: b - a}
		s.res.Iterations = append(s.res.Iterations, rec)
		if s.cfg.hooks.OnIteration != nil {
			s.cfg.hooks.OnIteration(rec)
		}
		s.cfg.logger.Debug("gss step", "k", k, "a", a, "b", b, "x1", x1, "x2", x2, "f1", f1, "f2", f2)

		if s.req.Mode.Prefers(f1, f2) {
			// Keep [a, x2]; the old x1 becomes the new x2.
			b = x2
			x2, f2 = x1, f1
			x1 = b - domain.Phi*(b-a)
			f1, err = s.eval(x1, k+1)
		} else {
			// Keep [x1, b]; the old x2 becomes the new x1.
			a = x1
			x1, f1 = x2, f2
			x2 = a + domain.Phi*(b-a)
			f2, err = s.eval(x2, k+1)
		}
		if err != nil {
			return s.fail(a, b, err)
		}
	}

	s.res.IterationCount = len(s.res.Iterations)
	s.res.FinalA, s.res.FinalB = a, b
	s.res.Status = domain.StatusConverged
	if b-a >= tol {
		s.res.Status = domain.StatusNotConverged
		s.cfg.logger.Warn("iteration cap reached before tolerance",
			"max_iterations", s.cfg.maxIterations, "width", b-a, "tol", tol)
	}

	if rc, ok := s.f.(RangeChecker); ok {
		if err := checkOpen(rc, a, b); err != nil {
			return s.fail(a, b, err)
		}
	}

	mid := a + (b-a)/2
	fm, err := s.eval(mid, s.res.IterationCount)
	if err != nil {
		return s.fail(a, b, err)
	}
	s.res.X, s.res.F = mid, fm
	return &s.res, nil
}

func (s *searcher) eval(x float64, k int) (float64, error) {
	v, err := s.f.Eval(x)
	if err != nil {
		return 0, &domain.EvaluationError{X: x, Iteration: k, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		// Plain Function implementations may signal trouble with NaN or Inf.
		return 0, &domain.EvaluationError{
			X:         x,
			Iteration: k,
			Err:       &domain.DomainError{X: x, Reason: "result is not finite"},
		}
	}
	return v, nil
}

// fail records the bracket reached so far and returns the partial result. X and F of a
// failed result carry no meaning beyond the bracket midpoint.
func (s *searcher) fail(a, b float64, err error) (*domain.SearchResult, error) {
	s.res.IterationCount = len(s.res.Iterations)
	s.res.FinalA, s.res.FinalB = a, b
	s.res.X = a + (b-a)/2
	s.res.F = 0
	s.res.Status = domain.StatusNotConverged

	var ee *domain.EvaluationError
	if !errors.As(err, &ee) {
		var de *domain.DomainError
		if errors.As(err, &de) {
			err = &domain.EvaluationError{X: de.X, Iteration: s.res.IterationCount, Err: de}
		}
	}
	s.cfg.logger.Debug("gss evaluation failed", slog.Any("error", err), "iterations", s.res.IterationCount)
	return &s.res, err
}

// checkOpen checks (a, b) rather than [a, b], so a function undefined exactly at an
// original bound that was never probed is still accepted.
func checkOpen(rc RangeChecker, a, b float64) error {
	lo, hi := math.Nextafter(a, b), math.Nextafter(b, a)
	if lo > hi {
		lo, hi = a+(b-a)/2, a+(b-a)/2
	}
	return rc.CheckRange(lo, hi)
}

// expectedIterations predicts ceil(log(tol/width)/log(phi)), the number of steps needed
// to shrink width below tol.
func expectedIterations(width, tol float64, limit int) int {
	if width < tol {
		return 0
	}
	n := int(math.Ceil(math.Log(tol/width) / math.Log(domain.Phi)))
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}

// ExpectedIterations returns the step count Search needs for a bracket of the given
// width, ignoring the iteration cap and floating point drift.
func ExpectedIterations(width, tol float64) int {
	return expectedIterations(width, tol, math.MaxInt32)
}
