package expr

import (
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/gss/pkg/domain"
)

// node is one vertex of the syntax tree.
type node interface {
	// eval computes the value at x; failures are *domain.DomainError.
	eval(x float64) (float64, error)
	// bound computes an enclosure of the values over iv.
	bound(iv interval) (interval, *undefined)
	write(sb *strings.Builder)
}

// undefined is the interval counterpart of a domain error: it has no single offending x.
type undefined struct {
	op     string
	reason string
}

type numberNode struct {
	value float64
}

type constNode struct {
	name  string
	value float64
}

type varNode struct {
	name string
}

type negNode struct {
	arg node
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

type callNode struct {
	fn  *function
	arg node
}

func (n *numberNode) eval(float64) (float64, error)         { return n.value, nil }
func (n *numberNode) bound(interval) (interval, *undefined) { return point(n.value), nil }
func (n *numberNode) write(sb *strings.Builder) {
	sb.WriteString(strconv.FormatFloat(n.value, 'g', -1, 64))
}

func (n *constNode) eval(float64) (float64, error)         { return n.value, nil }
func (n *constNode) bound(interval) (interval, *undefined) { return point(n.value), nil }
func (n *constNode) write(sb *strings.Builder)             { sb.WriteString(n.name) }

func (n *varNode) eval(x float64) (float64, error)           { return x, nil }
func (n *varNode) bound(iv interval) (interval, *undefined) { return iv, nil }
func (n *varNode) write(sb *strings.Builder)                 { sb.WriteString(n.name) }

func (n *negNode) eval(x float64) (float64, error) {
	v, err := n.arg.eval(x)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (n *negNode) bound(iv interval) (interval, *undefined) {
	v, u := n.arg.bound(iv)
	if u != nil {
		return interval{}, u
	}
	return negInterval(v), nil
}

func (n *negNode) write(sb *strings.Builder) {
	sb.WriteString("(-")
	n.arg.write(sb)
	sb.WriteByte(')')
}

func (n *binaryNode) eval(x float64) (float64, error) {
	l, err := n.left.eval(x)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(x)
	if err != nil {
		return 0, err
	}

	var v float64
	switch n.op {
	case tokPlus:
		v = l + r
	case tokMinus:
		v = l - r
	case tokStar:
		v = l * r
	case tokSlash:
		if r == 0 {
			return 0, &domain.DomainError{X: x, Op: "/", Reason: "division by zero"}
		}
		v = l / r
	case tokPow:
		switch {
		case l == 0 && r < 0:
			return 0, &domain.DomainError{X: x, Op: "**", Reason: "zero raised to a negative power"}
		case l < 0 && r != math.Trunc(r):
			return 0, &domain.DomainError{X: x, Op: "**", Reason: "negative base with non-integer exponent"}
		}
		v = math.Pow(l, r)
	}
	if !isFinite(v) {
		return 0, &domain.DomainError{X: x, Op: opSymbol(n.op), Reason: "result is not finite (overflow)"}
	}
	return v, nil
}

func (n *binaryNode) bound(iv interval) (interval, *undefined) {
	l, u := n.left.bound(iv)
	if u != nil {
		return interval{}, u
	}
	r, u := n.right.bound(iv)
	if u != nil {
		return interval{}, u
	}

	var out interval
	switch n.op {
	case tokPlus:
		out = addInterval(l, r)
	case tokMinus:
		out = subInterval(l, r)
	case tokStar:
		out = mulInterval(l, r)
	case tokSlash:
		out, u = divInterval(l, r)
	case tokPow:
		out, u = powInterval(l, r)
	}
	if u != nil {
		return interval{}, u
	}
	if !out.finite() {
		return interval{}, &undefined{op: opSymbol(n.op), reason: "result is not finite (overflow)"}
	}
	return out, nil
}

func (n *binaryNode) write(sb *strings.Builder) {
	sb.WriteByte('(')
	n.left.write(sb)
	sb.WriteString(" " + opSymbol(n.op) + " ")
	n.right.write(sb)
	sb.WriteByte(')')
}

func (n *callNode) eval(x float64) (float64, error) {
	a, err := n.arg.eval(x)
	if err != nil {
		return 0, err
	}
	if reason := n.fn.defined(point(a)); reason != "" {
		return 0, &domain.DomainError{X: x, Op: n.fn.name, Reason: reason}
	}
	v := n.fn.apply(a)
	if !isFinite(v) {
		return 0, &domain.DomainError{X: x, Op: n.fn.name, Reason: "result is not finite (overflow)"}
	}
	return v, nil
}

func (n *callNode) bound(iv interval) (interval, *undefined) {
	a, u := n.arg.bound(iv)
	if u != nil {
		return interval{}, u
	}
	if reason := n.fn.defined(a); reason != "" {
		return interval{}, &undefined{op: n.fn.name, reason: reason}
	}
	out := n.fn.image(a)
	if !out.finite() {
		return interval{}, &undefined{op: n.fn.name, reason: "result is not finite (overflow)"}
	}
	return out, nil
}

func (n *callNode) write(sb *strings.Builder) {
	sb.WriteString(n.fn.name)
	sb.WriteByte('(')
	n.arg.write(sb)
	sb.WriteByte(')')
}

func opSymbol(k tokenKind) string {
	switch k {
	case tokPlus:
		return "+"
	case tokMinus:
		return "-"
	case tokStar:
		return "*"
	case tokSlash:
		return "/"
	case tokPow:
		return "**"
	}
	return "?"
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
