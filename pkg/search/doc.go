// Package search implements Golden Section Search over a bracket [a, b].
//
// Each step places two probes at the golden-ratio points of the bracket, keeps the
// sub-bracket that contains the preferred value and reuses the surviving probe, so every
// step after the first costs one function evaluation. The loop stops when the bracket is
// narrower than the tolerance or when the iteration cap is reached; the latter yields a
// result with status not_converged rather than an error.
package search
