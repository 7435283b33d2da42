package gss

import (
	"github.com/aretw0/gss/pkg/domain"
)

// Input is a solve request as received from a client.
// Tolerance is a pointer so that an explicit zero is rejected instead of defaulted.
type Input struct {
	FuncStr   string   `json:"func_str" mapstructure:"func_str"`
	A         float64  `json:"a" mapstructure:"a"`
	B         float64  `json:"b" mapstructure:"b"`
	Tolerance *float64 `json:"tol,omitempty" mapstructure:"tol"`
	Mode      string   `json:"mode,omitempty" mapstructure:"mode"`
	Variable  string   `json:"variable,omitempty" mapstructure:"variable"`
}

// Normalize returns a copy with defaults applied: tolerance 1e-4, mode minimize and
// variable x.
func (in Input) Normalize() Input {
	if in.Tolerance == nil {
		tol := domain.DefaultTolerance
		in.Tolerance = &tol
	}
	if in.Mode == "" {
		in.Mode = string(domain.Minimize)
	}
	if in.Variable == "" {
		in.Variable = domain.DefaultVariable
	}
	return in
}

// Request converts a normalized input into a search request.
func (in Input) Request() (domain.SearchRequest, error) {
	mode, err := domain.ParseMode(in.Mode)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	tol := domain.DefaultTolerance
	if in.Tolerance != nil {
		tol = *in.Tolerance
	}
	return domain.SearchRequest{A: in.A, B: in.B, Tolerance: tol, Mode: mode}, nil
}

// Float returns a pointer to v, for building inputs with an explicit tolerance.
func Float(v float64) *float64 {
	return &v
}
