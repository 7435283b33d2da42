package expr

import (
	"math"
	"sort"
)

const (
	// confirmGrid is the number of cells the bracket is first split into.
	confirmGrid = 32
	// confirmBudget caps the extra evaluations spent bisecting flagged cells.
	confirmBudget = 1024
	// locateSteps bounds the bisection that pins down a sign change.
	locateSteps = 100
	// locateJump separates a zero crossing from a jump: after locateSteps halvings a
	// continuous subexpression differs across the cell by far less than this share of
	// the values it started from.
	locateJump = 1e-6
)

// witnesses evaluates the expression over a grid of [lo, hi], then keeps bisecting cells
// whose enclosure is still flagged until the budget runs out. It returns the sorted
// points, or the first *domain.DomainError met at one of them.
func (e *Expression) witnesses(lo, hi float64) ([]float64, error) {
	xs := make([]float64, 0, confirmGrid+1)
	for i := 0; i <= confirmGrid; i++ {
		x := lo + (hi-lo)*float64(i)/confirmGrid
		if i == confirmGrid {
			x = hi
		}
		if _, err := e.Eval(x); err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}

	type cell struct{ lo, hi float64 }
	queue := make([]cell, 0, confirmGrid)
	for i := 1; i < len(xs); i++ {
		queue = append(queue, cell{xs[i-1], xs[i]})
	}

	for budget := confirmBudget; len(queue) > 0 && budget > 0; {
		c := queue[0]
		queue = queue[1:]
		if _, u := e.root.bound(interval{c.lo, c.hi}); u == nil {
			continue
		}
		mid := c.lo + (c.hi-c.lo)/2
		if mid <= c.lo || mid >= c.hi {
			continue
		}
		budget--
		if _, err := e.Eval(mid); err != nil {
			return nil, err
		}
		xs = append(xs, mid)
		queue = append(queue, cell{c.lo, mid}, cell{mid, c.hi})
	}

	sort.Float64s(xs)
	return xs, nil
}

// pole is a subexpression whose zero is a singularity of the whole expression: a
// denominator, the cosine of a tan argument, or a base raised to a negative power.
// value reports false where the pole does not apply.
type pole struct {
	op     string
	reason string
	value  func(x float64) (float64, bool)
}

func poles(n node, out []pole) []pole {
	switch n := n.(type) {
	case *negNode:
		return poles(n.arg, out)
	case *callNode:
		out = poles(n.arg, out)
		if n.fn.name == "tan" {
			arg := n.arg
			out = append(out, pole{op: "tan", reason: "pole of tan", value: func(x float64) (float64, bool) {
				v, err := arg.eval(x)
				return math.Cos(v), err == nil
			}})
		}
	case *binaryNode:
		out = poles(n.left, out)
		out = poles(n.right, out)
		switch n.op {
		case tokSlash:
			den := n.right
			out = append(out, pole{op: "/", reason: "division by zero", value: func(x float64) (float64, bool) {
				v, err := den.eval(x)
				return v, err == nil
			}})
		case tokPow:
			base, exp := n.left, n.right
			out = append(out, pole{op: "**", reason: "zero raised to a negative power", value: func(x float64) (float64, bool) {
				if p, err := exp.eval(x); err != nil || p >= 0 {
					return 0, false
				}
				v, err := base.eval(x)
				return v, err == nil
			}})
		}
	}
	return out
}

// crossing finds a zero of the pole between two consecutive points of xs.
func (p pole) crossing(xs []float64) (float64, bool) {
	for i := 1; i < len(xs); i++ {
		a, b := xs[i-1], xs[i]
		ga, okA := p.value(a)
		gb, okB := p.value(b)
		if !okA || !okB || !opposite(ga, gb) {
			continue
		}
		if x, ok := p.locate(a, b, ga, gb); ok {
			return x, true
		}
	}
	return 0, false
}

// locate bisects a sign change of the pole on [a, b]. A change that survives as a jump
// (floor(x) + 0.5 in a denominator) is not a zero and is not reported.
func (p pole) locate(a, b, ga, gb float64) (float64, bool) {
	scale := math.Abs(ga) + math.Abs(gb)
	for i := 0; i < locateSteps; i++ {
		mid := a + (b-a)/2
		if mid <= a || mid >= b {
			break
		}
		gm, ok := p.value(mid)
		if !ok {
			return 0, false
		}
		if gm == 0 {
			return mid, true
		}
		if opposite(ga, gm) {
			b, gb = mid, gm
		} else {
			a, ga = mid, gm
		}
	}
	if math.Abs(gb-ga) > locateJump*scale {
		return 0, false
	}
	return a + (b-a)/2, true
}

func opposite(a, b float64) bool {
	return (a < 0 && b > 0) || (a > 0 && b < 0)
}
