package expr

import (
	"math"
)

// interval is a closed range [lo, hi] used to check that an expression is defined on a whole
// bracket, not only at the points the search happened to probe.
type interval struct {
	lo, hi float64
}

func point(v float64) interval { return interval{v, v} }

func (iv interval) contains(v float64) bool { return iv.lo <= v && v <= iv.hi }

func (iv interval) degenerate() bool { return iv.lo == iv.hi }

func (iv interval) finite() bool {
	return !math.IsNaN(iv.lo) && !math.IsNaN(iv.hi) && !math.IsInf(iv.lo, 0) && !math.IsInf(iv.hi, 0)
}

// containsPeriodic reports whether offset + k*period lies in [lo, hi] for some integer k.
func (iv interval) containsPeriodic(offset, period float64) bool {
	k := math.Ceil((iv.lo - offset) / period)
	return offset+k*period <= iv.hi
}

func hull(vals ...float64) interval {
	out := interval{math.Inf(1), math.Inf(-1)}
	for _, v := range vals {
		out.lo = math.Min(out.lo, v)
		out.hi = math.Max(out.hi, v)
	}
	return out
}

func addInterval(a, b interval) interval { return interval{a.lo + b.lo, a.hi + b.hi} }

func subInterval(a, b interval) interval { return interval{a.lo - b.hi, a.hi - b.lo} }

func negInterval(a interval) interval { return interval{-a.hi, -a.lo} }

func mulInterval(a, b interval) interval {
	return hull(a.lo*b.lo, a.lo*b.hi, a.hi*b.lo, a.hi*b.hi)
}

func divInterval(a, b interval) (interval, *undefined) {
	if b.contains(0) {
		return interval{}, &undefined{op: "/", reason: "division by zero"}
	}
	return mulInterval(a, interval{1 / b.hi, 1 / b.lo}), nil
}

func powInterval(base, exp interval) (interval, *undefined) {
	if exp.degenerate() {
		return powConst(base, exp.lo)
	}
	if base.lo < 0 {
		return interval{}, &undefined{op: "**", reason: "negative base with non-integer exponent"}
	}
	if exp.lo < 0 && base.contains(0) {
		return interval{}, &undefined{op: "**", reason: "zero raised to a negative power"}
	}
	return hull(
		math.Pow(base.lo, exp.lo), math.Pow(base.lo, exp.hi),
		math.Pow(base.hi, exp.lo), math.Pow(base.hi, exp.hi),
	), nil
}

func powConst(base interval, n float64) (interval, *undefined) {
	if n == 0 {
		return point(1), nil
	}
	integer := n == math.Trunc(n)
	if n < 0 && base.contains(0) {
		return interval{}, &undefined{op: "**", reason: "zero raised to a negative power"}
	}
	if !integer && base.lo < 0 {
		return interval{}, &undefined{op: "**", reason: "negative base with non-integer exponent"}
	}

	lo, hi := math.Pow(base.lo, n), math.Pow(base.hi, n)
	if integer && math.Mod(n, 2) == 0 && base.contains(0) {
		// Even power over a range straddling zero bottoms out at zero.
		return interval{0, math.Max(lo, hi)}, nil
	}
	return hull(lo, hi), nil
}
