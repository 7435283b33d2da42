// Package report turns search results into the payloads served to clients.
package report

import (
	"fmt"
	"math"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/search"
)

const (
	// DefaultSamples is the number of plot points taken across the original bracket.
	DefaultSamples = 400
	MinSamples     = 2
	MaxSamples     = 10000
)

// Payload is the response of a successful (or not converged) search.
type Payload struct {
	XMin          float64                  `json:"x_min"`
	FMin          float64                  `json:"f_min"`
	Iterations    []domain.IterationRecord `json:"iterations"`
	NumIterations int                      `json:"num_iterations"`
	PlotData      PlotData                 `json:"plot_data"`
	Mode          domain.Mode              `json:"mode"`
	Status        domain.Status            `json:"status"`
	FinalInterval Interval                 `json:"final_interval"`
	Warning       *Warning                 `json:"warning,omitempty"`
}

// PlotData holds the sampled curve. X and Y always have the same length.
type PlotData struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Len returns the number of plotted points.
func (p PlotData) Len() int { return len(p.X) }

type Interval struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Warning flags a soft failure. The payload is still usable.
type Warning struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Option configures Assemble.
type Option func(*options)

type options struct {
	samples int
}

// WithSamples sets the plot sample count, clamped to [MinSamples, MaxSamples].
// Zero keeps the default.
func WithSamples(n int) Option {
	return func(o *options) {
		if n != 0 {
			o.samples = ClampSamples(n)
		}
	}
}

// ClampSamples forces n into [MinSamples, MaxSamples].
func ClampSamples(n int) int {
	switch {
	case n < MinSamples:
		return MinSamples
	case n > MaxSamples:
		return MaxSamples
	}
	return n
}

// Assemble builds the payload for res. The plot covers the original bracket of req.
func Assemble(f search.Function, req domain.SearchRequest, res *domain.SearchResult, opts ...Option) *Payload {
	o := options{samples: DefaultSamples}
	for _, opt := range opts {
		opt(&o)
	}

	iterations := res.Iterations
	if iterations == nil {
		iterations = []domain.IterationRecord{}
	}

	p := &Payload{
		XMin:          res.X,
		FMin:          res.F,
		Iterations:    iterations,
		NumIterations: len(iterations),
		PlotData:      Sample(f, req.A, req.B, o.samples),
		Mode:          req.Mode,
		Status:        res.Status,
		FinalInterval: Interval{A: res.FinalA, B: res.FinalB},
	}
	if res.Status == domain.StatusNotConverged {
		p.Warning = &Warning{
			Kind: domain.KindNotConverged,
			Message: fmt.Sprintf(
				"Maximum iteration limit (%d) reached before tolerance was met; the final interval is %g wide. Result may be less accurate.",
				len(iterations), res.Width()),
		}
	}
	return p
}

// Sample evaluates f at n evenly spaced points of [a, b], both ends included.
// Points where f fails or is not finite are left out, so the curve may have gaps.
func Sample(f search.Function, a, b float64, n int) PlotData {
	n = ClampSamples(n)
	out := PlotData{X: make([]float64, 0, n), Y: make([]float64, 0, n)}

	step := (b - a) / float64(n-1)
	for i := 0; i < n; i++ {
		x := a + float64(i)*step
		if i == n-1 {
			x = b
		}
		y, err := f.Eval(x)
		if err != nil || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		out.X = append(out.X, x)
		out.Y = append(out.Y, y)
	}
	return out
}
