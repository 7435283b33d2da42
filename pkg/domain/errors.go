package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidSessionID is returned when a session identifier is empty or malformed.
var ErrInvalidSessionID = errors.New("invalid session id")

// Kind is the stable tag attached to every user-facing failure.
type Kind string

const (
	KindInvalidExpression Kind = "InvalidExpressionError"
	KindInvalidBounds     Kind = "InvalidBoundsError"
	KindInvalidInput      Kind = "InvalidInputError"
	KindDomain            Kind = "DomainError"
	KindEvaluation        Kind = "EvaluationError"
	KindNotConverged      Kind = "NotConverged"
	KindInternal          Kind = "InternalError"
)

// InvalidExpressionError reports text that is malformed or uses something outside the
// allowed operator and function set.
type InvalidExpressionError struct {
	Input  string // The offending expression text
	Pos    int    // Byte offset of the problem, -1 when not applicable
	Reason string // Human-readable reason for failure
}

func (e *InvalidExpressionError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("invalid expression: %s", e.Reason)
	}
	return fmt.Sprintf("invalid expression at position %d: %s", e.Pos, e.Reason)
}

func (e *InvalidExpressionError) Kind() Kind { return KindInvalidExpression }

// InvalidBoundsError reports a bracket or tolerance the engine cannot work with.
type InvalidBoundsError struct {
	Field  string
	Reason string
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("invalid bounds: %s", e.Reason)
}

func (e *InvalidBoundsError) Kind() Kind { return KindInvalidBounds }

// InvalidInputError reports a request field that is neither an expression nor a bound.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Kind() Kind { return KindInvalidInput }

// DomainError reports that the function is undefined at X.
type DomainError struct {
	X      float64
	Op     string // Operation that failed, e.g. "log" or "/"
	Reason string
}

func (e *DomainError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("function undefined at x = %s: %s", formatX(e.X), e.Reason)
	}
	return fmt.Sprintf("function undefined at x = %s: %s in %s", formatX(e.X), e.Reason, e.Op)
}

func (e *DomainError) Kind() Kind { return KindDomain }

// EvaluationError wraps a DomainError met during the search.
type EvaluationError struct {
	X         float64
	// Iteration is the number of narrowing steps completed before the failing evaluation:
	// 0 for the initial probes, k+1 for the new probe of step k, and the full count for
	// the terminal range check and the final midpoint.
	Iteration int
	Err       error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed during iteration %d at x = %s: %v", e.Iteration, formatX(e.X), e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

func (e *EvaluationError) Kind() Kind { return KindEvaluation }

type kinded interface {
	Kind() Kind
}

// KindOf returns the tag of the outermost tagged error in the chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// OffendingX extracts the x coordinate carried by domain or evaluation errors.
func OffendingX(err error) (float64, bool) {
	var ee *EvaluationError
	if errors.As(err, &ee) {
		return ee.X, true
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.X, true
	}
	return 0, false
}

// IsUserError reports whether err is caused by the request rather than the service.
func IsUserError(err error) bool {
	switch KindOf(err) {
	case KindInvalidExpression, KindInvalidBounds, KindInvalidInput, KindDomain, KindEvaluation:
		return true
	}
	return false
}

func formatX(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
