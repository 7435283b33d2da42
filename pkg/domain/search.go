package domain

import (
	"math"
)

// SearchRequest describes one bracketed optimisation problem.
// The function itself is passed separately so that requests stay plain values.
type SearchRequest struct {
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Tolerance float64 `json:"tol"`
	Mode      Mode    `json:"mode"`
}

// Validate enforces A < B and a strictly positive, finite tolerance.
func (r SearchRequest) Validate() error {
	switch {
	case !isFinite(r.A):
		return &InvalidBoundsError{Field: "a", Reason: "left bound must be a finite number"}
	case !isFinite(r.B):
		return &InvalidBoundsError{Field: "b", Reason: "right bound must be a finite number"}
	case r.A >= r.B:
		return &InvalidBoundsError{Field: "a", Reason: "left bound 'a' must be less than right bound 'b'"}
	case !isFinite(r.B - r.A):
		return &InvalidBoundsError{Field: "b", Reason: "interval width overflows"}
	case math.IsNaN(r.Tolerance) || r.Tolerance <= 0:
		return &InvalidBoundsError{Field: "tol", Reason: "tolerance must be greater than zero"}
	case math.IsInf(r.Tolerance, 0):
		return &InvalidBoundsError{Field: "tol", Reason: "tolerance must be finite"}
	}
	if r.Mode != Minimize && r.Mode != Maximize {
		return &InvalidInputError{Field: "mode", Reason: "mode must be minimize or maximize"}
	}
	return nil
}

// IterationRecord is one narrowing step: the bracket before the step and both probes.
type IterationRecord struct {
	Index int     `json:"k"`
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	X1    float64 `json:"x1"`
	X2    float64 `json:"x2"`
	F1    float64 `json:"f1"`
	F2    float64 `json:"f2"`
	Width float64 `json:"interval"`
}

// Status reports whether the search met its tolerance.
type Status string

const (
	StatusConverged    Status = "converged"
	StatusNotConverged Status = "not_converged"
)

// SearchResult is produced once by the engine and never mutated afterwards.
type SearchResult struct {
	X              float64           `json:"x"`
	F              float64           `json:"f"`
	Iterations     []IterationRecord `json:"iterations"`
	IterationCount int               `json:"iteration_count"`
	FinalA         float64           `json:"final_a"`
	FinalB         float64           `json:"final_b"`
	Status         Status            `json:"status"`
}

// Width returns the terminal bracket width.
func (r *SearchResult) Width() float64 {
	return r.FinalB - r.FinalA
}

// Converged is shorthand for Status == StatusConverged.
func (r *SearchResult) Converged() bool {
	return r.Status == StatusConverged
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
