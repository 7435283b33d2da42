package domain

import "math"

// Phi is the inverse golden ratio (√5 − 1) / 2 ≈ 0.618.
var Phi = (math.Sqrt(5) - 1) / 2

const (
	// DefaultTolerance is applied when a request omits the tolerance.
	DefaultTolerance = 1e-4

	// DefaultVariable is the free variable name used when none is given.
	DefaultVariable = "x"
)
