package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/gss/pkg/domain"
)

// Expression is an immutable compiled formula bound to a single free variable.
// It is safe for concurrent use.
type Expression struct {
	source   string
	variable string
	root     node
}

// Option configures Compile.
type Option func(*compileConfig)

type compileConfig struct {
	maxSize int
}

// WithMaxSize overrides the maximum accepted expression size in bytes.
func WithMaxSize(n int) Option {
	return func(c *compileConfig) {
		c.maxSize = n
	}
}

// Compile parses text into an Expression over the variable name.
// All failures are *domain.InvalidExpressionError.
func Compile(text, variable string, opts ...Option) (*Expression, error) {
	cfg := compileConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if variable == "" {
		variable = domain.DefaultVariable
	}
	if err := checkVariable(variable); err != nil {
		return nil, invalid(text, err)
	}
	if err := Sanitize(text, cfg.maxSize); err != nil {
		return nil, invalid(text, err)
	}

	root, err := parse(text, variable)
	if err != nil {
		return nil, invalid(text, err)
	}
	return &Expression{source: text, variable: variable, root: root}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and fixed formulas.
func MustCompile(text, variable string) *Expression {
	e, err := Compile(text, variable)
	if err != nil {
		panic(err)
	}
	return e
}

// Eval returns f(x) or a *domain.DomainError when f is undefined at x.
func (e *Expression) Eval(x float64) (float64, error) {
	if !isFinite(x) {
		return 0, &domain.DomainError{X: x, Reason: "input is not finite"}
	}
	return e.root.eval(x)
}

// CheckRange verifies that the expression is defined on the whole of [lo, hi].
// It catches singularities that lie between sample points, e.g. 1/x on a bracket
// straddling zero. Interval arithmetic only nominates a bracket; the failure must then be
// confirmed at a concrete x, either by an evaluation that fails there or by a pole whose
// sign change is pinned down by bisection. The returned *domain.DomainError carries that x.
func (e *Expression) CheckRange(lo, hi float64) error {
	if lo > hi {
		lo, hi = hi, lo
	}
	if _, u := e.root.bound(interval{lo, hi}); u == nil {
		return nil
	}

	xs, err := e.witnesses(lo, hi)
	if err != nil {
		return err
	}
	for _, p := range poles(e.root, nil) {
		if x, ok := p.crossing(xs); ok {
			return &domain.DomainError{
				X:      x,
				Op:     p.op,
				Reason: fmt.Sprintf("%s inside [%g, %g]", p.reason, lo, hi),
			}
		}
	}
	return nil
}

// Source returns the text the expression was compiled from.
func (e *Expression) Source() string { return e.source }

// Variable returns the name of the bound variable.
func (e *Expression) Variable() string { return e.variable }

// String renders the canonical, fully parenthesised form.
func (e *Expression) String() string {
	var sb strings.Builder
	e.root.write(&sb)
	return sb.String()
}

func checkVariable(name string) error {
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isIdentPart(c) || (i == 0 && !isIdentStart(c)) {
			return &invalidf{pos: -1, msg: fmt.Sprintf("variable name %q is not a valid identifier", name)}
		}
	}
	if _, ok := functions[name]; ok {
		return &invalidf{pos: -1, msg: fmt.Sprintf("variable name %q collides with a function", name)}
	}
	return nil
}

func invalid(text string, err error) error {
	var e *invalidf
	if errors.As(err, &e) {
		return &domain.InvalidExpressionError{Input: text, Pos: e.pos, Reason: e.msg}
	}
	return &domain.InvalidExpressionError{Input: text, Pos: -1, Reason: err.Error()}
}
