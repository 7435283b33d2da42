package expr

import (
	"math"
	"sort"
)

// function is one entry of the whitelist. defined reports why the function is undefined
// somewhere on [lo, hi] ("" when it is defined everywhere there); image bounds its values.
type function struct {
	name    string
	apply   func(float64) float64
	defined func(iv interval) string
	image   func(iv interval) interval
}

var functions = map[string]*function{}

func register(f *function) {
	if f.defined == nil {
		f.defined = func(interval) string { return "" }
	}
	functions[f.name] = f
}

func init() {
	register(&function{name: "sin", apply: math.Sin, image: sinImage})
	register(&function{name: "cos", apply: math.Cos, image: func(iv interval) interval {
		return sinImage(interval{iv.lo + math.Pi/2, iv.hi + math.Pi/2})
	}})
	register(&function{name: "tan", apply: math.Tan, defined: tanDefined, image: increasing(math.Tan)})
	register(&function{name: "asin", apply: math.Asin, defined: unitDefined, image: increasing(math.Asin)})
	register(&function{name: "acos", apply: math.Acos, defined: unitDefined, image: decreasing(math.Acos)})
	register(&function{name: "atan", apply: math.Atan, image: increasing(math.Atan)})
	register(&function{name: "sinh", apply: math.Sinh, image: increasing(math.Sinh)})
	register(&function{name: "cosh", apply: math.Cosh, image: func(iv interval) interval {
		return increasing(math.Cosh)(absImage(iv))
	}})
	register(&function{name: "tanh", apply: math.Tanh, image: increasing(math.Tanh)})
	register(&function{name: "exp", apply: math.Exp, image: increasing(math.Exp)})
	register(&function{name: "log", apply: math.Log, defined: positiveDefined, image: increasing(math.Log)})
	register(&function{name: "ln", apply: math.Log, defined: positiveDefined, image: increasing(math.Log)})
	register(&function{name: "log10", apply: math.Log10, defined: positiveDefined, image: increasing(math.Log10)})
	register(&function{name: "log2", apply: math.Log2, defined: positiveDefined, image: increasing(math.Log2)})
	register(&function{name: "sqrt", apply: math.Sqrt, defined: nonNegativeDefined, image: increasing(math.Sqrt)})
	register(&function{name: "abs", apply: math.Abs, image: absImage})
	register(&function{name: "floor", apply: math.Floor, image: increasing(math.Floor)})
	register(&function{name: "ceil", apply: math.Ceil, image: increasing(math.Ceil)})
}

var constants = map[string]float64{
	"pi": math.Pi,
	"E":  math.E,
	"e":  math.E,
}

// Functions lists the whitelisted function names in sorted order.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func increasing(f func(float64) float64) func(interval) interval {
	return func(iv interval) interval { return interval{f(iv.lo), f(iv.hi)} }
}

func decreasing(f func(float64) float64) func(interval) interval {
	return func(iv interval) interval { return interval{f(iv.hi), f(iv.lo)} }
}

func absImage(iv interval) interval {
	switch {
	case iv.lo >= 0:
		return iv
	case iv.hi <= 0:
		return negInterval(iv)
	}
	return interval{0, math.Max(-iv.lo, iv.hi)}
}

func sinImage(iv interval) interval {
	if iv.hi-iv.lo >= 2*math.Pi {
		return interval{-1, 1}
	}
	out := hull(math.Sin(iv.lo), math.Sin(iv.hi))
	if iv.containsPeriodic(math.Pi/2, 2*math.Pi) {
		out.hi = 1
	}
	if iv.containsPeriodic(-math.Pi/2, 2*math.Pi) {
		out.lo = -1
	}
	return out
}

func tanDefined(iv interval) string {
	if iv.containsPeriodic(math.Pi/2, math.Pi) {
		return "pole of tan"
	}
	return ""
}

func unitDefined(iv interval) string {
	if iv.lo < -1 || iv.hi > 1 {
		return "argument must lie in [-1, 1]"
	}
	return ""
}

func positiveDefined(iv interval) string {
	if iv.lo <= 0 {
		return "argument must be positive"
	}
	return ""
}

func nonNegativeDefined(iv interval) string {
	if iv.lo < 0 {
		return "argument must be non-negative"
	}
	return ""
}

// Constants lists the named constants in sorted order.
func Constants() []string {
	names := make([]string, 0, len(constants))
	for name := range constants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
