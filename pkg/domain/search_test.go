package domain_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequest_Validate(t *testing.T) {
	valid := domain.SearchRequest{A: -5, B: 5, Tolerance: 1e-4, Mode: domain.Minimize}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		mut   func(r *domain.SearchRequest)
		field string
		kind  domain.Kind
	}{
		{"a equals b", func(r *domain.SearchRequest) { r.A, r.B = 1, 1 }, "a", domain.KindInvalidBounds},
		{"a greater than b", func(r *domain.SearchRequest) { r.A, r.B = 2, 1 }, "a", domain.KindInvalidBounds},
		{"zero tolerance", func(r *domain.SearchRequest) { r.Tolerance = 0 }, "tol", domain.KindInvalidBounds},
		{"negative tolerance", func(r *domain.SearchRequest) { r.Tolerance = -1 }, "tol", domain.KindInvalidBounds},
		{"nan tolerance", func(r *domain.SearchRequest) { r.Tolerance = math.NaN() }, "tol", domain.KindInvalidBounds},
		{"infinite bound", func(r *domain.SearchRequest) { r.B = math.Inf(1) }, "b", domain.KindInvalidBounds},
		{"nan bound", func(r *domain.SearchRequest) { r.A = math.NaN() }, "a", domain.KindInvalidBounds},
		{"overflowing width", func(r *domain.SearchRequest) { r.A, r.B = -math.MaxFloat64, math.MaxFloat64 }, "b", domain.KindInvalidBounds},
		{"unknown mode", func(r *domain.SearchRequest) { r.Mode = "sideways" }, "mode", domain.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mut(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.kind, domain.KindOf(err))
			switch e := err.(type) {
			case *domain.InvalidBoundsError:
				assert.Equal(t, tt.field, e.Field)
			case *domain.InvalidInputError:
				assert.Equal(t, tt.field, e.Field)
			default:
				t.Fatalf("unexpected error type %T", err)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]domain.Mode{
		"":          domain.Minimize,
		"minimize":  domain.Minimize,
		" MAXIMIZE": domain.Maximize,
		"max":       domain.Maximize,
	} {
		got, err := domain.ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParseMode("upward")
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestMode_Prefers_TieGoesToLowerHalf(t *testing.T) {
	assert.True(t, domain.Minimize.Prefers(1, 1))
	assert.True(t, domain.Maximize.Prefers(1, 1))
	assert.True(t, domain.Minimize.Prefers(0, 1))
	assert.False(t, domain.Minimize.Prefers(2, 1))
	assert.True(t, domain.Maximize.Prefers(2, 1))
	assert.False(t, domain.Maximize.Prefers(0, 1))
}

func TestPhi(t *testing.T) {
	assert.InDelta(t, 0.6180339887498949, domain.Phi, 1e-15)
	assert.InDelta(t, 1.0, domain.Phi*domain.Phi+domain.Phi, 1e-15)
}

func TestKindOf(t *testing.T) {
	de := &domain.DomainError{X: 0, Op: "/", Reason: "division by zero"}
	ee := &domain.EvaluationError{X: 0, Iteration: 3, Err: de}
	wrapped := fmt.Errorf("solve: %w", ee)

	assert.Equal(t, domain.KindEvaluation, domain.KindOf(wrapped))
	assert.Equal(t, domain.KindDomain, domain.KindOf(de))
	assert.Equal(t, domain.KindInternal, domain.KindOf(fmt.Errorf("boom")))
	assert.Equal(t, domain.Kind(""), domain.KindOf(nil))

	var target *domain.DomainError
	assert.ErrorAs(t, wrapped, &target)

	x, ok := domain.OffendingX(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 0.0, x)

	assert.True(t, domain.IsUserError(wrapped))
	assert.False(t, domain.IsUserError(fmt.Errorf("disk full")))
}

func TestErrorMessages(t *testing.T) {
	err := &domain.InvalidExpressionError{Input: "x +", Pos: 3, Reason: "unexpected end of input"}
	assert.Equal(t, "invalid expression at position 3: unexpected end of input", err.Error())

	err = &domain.InvalidExpressionError{Input: "", Pos: -1, Reason: "expression is empty"}
	assert.Equal(t, "invalid expression: expression is empty", err.Error())

	de := &domain.DomainError{X: -1, Op: "log", Reason: "argument must be positive"}
	assert.Equal(t, "function undefined at x = -1: argument must be positive in log", de.Error())
}

func TestSearchHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.SearchHooks{OnIteration: func(domain.IterationRecord) { calls = append(calls, "a") }}
	b := domain.SearchHooks{
		OnIteration: func(domain.IterationRecord) { calls = append(calls, "b") },
		OnStart:     func(*domain.SearchEvent) { calls = append(calls, "start") },
	}

	merged := a.Merge(b)
	merged.OnStart(&domain.SearchEvent{})
	merged.OnIteration(domain.IterationRecord{})
	assert.Nil(t, merged.OnFinish)
	assert.Equal(t, []string{"start", "a", "b"}, calls)
}
