package report

import (
	"errors"

	"github.com/aretw0/gss/pkg/domain"
)

// ErrorPayload is the client-facing form of a failure. Messages never carry
// internal detail for errors outside the user-facing taxonomy.
type ErrorPayload struct {
	Kind     domain.Kind `json:"kind"`
	Message  string      `json:"message"`
	Field    string      `json:"field,omitempty"`
	Position *int        `json:"position,omitempty"`
	X        *float64    `json:"x,omitempty"`
	Partial  *Partial    `json:"partial,omitempty"`
}

// Partial is the trace recorded before a search aborted.
type Partial struct {
	Iterations    []domain.IterationRecord `json:"iterations"`
	NumIterations int                      `json:"num_iterations"`
	FinalInterval Interval                 `json:"final_interval"`
}

func (e *ErrorPayload) Error() string { return e.Message }

// NewErrorPayload classifies err. partial may be nil.
func NewErrorPayload(err error, partial *domain.SearchResult) *ErrorPayload {
	p := &ErrorPayload{Kind: domain.KindOf(err)}
	if !domain.IsUserError(err) {
		p.Message = "internal error while processing the request"
		return p
	}
	p.Message = err.Error()

	var inv *domain.InvalidExpressionError
	if errors.As(err, &inv) && inv.Pos >= 0 {
		pos := inv.Pos
		p.Position = &pos
	}
	var ib *domain.InvalidBoundsError
	if errors.As(err, &ib) {
		p.Field = ib.Field
	}
	var ii *domain.InvalidInputError
	if errors.As(err, &ii) {
		p.Field = ii.Field
	}
	if x, ok := domain.OffendingX(err); ok {
		p.X = &x
	}

	if partial != nil {
		iterations := partial.Iterations
		if iterations == nil {
			iterations = []domain.IterationRecord{}
		}
		p.Partial = &Partial{
			Iterations:    iterations,
			NumIterations: len(iterations),
			FinalInterval: Interval{A: partial.FinalA, B: partial.FinalB},
		}
	}
	return p
}
