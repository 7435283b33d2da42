/*
Package expr compiles user-supplied single-variable formulas into callable real functions.

The input is never handed to a general-purpose evaluator. A small lexer and a recursive-descent
parser build an explicit syntax tree over a fixed grammar:

	expr    := term (('+' | '-') term)*
	term    := unary (('*' | '/') unary)*
	unary   := ('+' | '-') unary | power
	power   := primary (('**' | '^') unary)?
	primary := NUMBER | IDENT | IDENT '(' expr ')' | '(' expr ')'

Identifiers resolve to the bound variable, the constants pi, E and e, or a whitelisted unary
function (sin, cos, tan, asin, acos, atan, sinh, cosh, tanh, exp, log, ln, log10, log2, sqrt,
abs, floor, ceil). Anything else is rejected with a *domain.InvalidExpressionError.

A compiled Expression evaluates the tree directly and either returns a finite real number or a
*domain.DomainError carrying the offending x.

	f, err := expr.Compile("x**2 + 3*x + 2", "x")
	if err != nil {
		return err
	}
	y, err := f.Eval(-1.5) // -0.25
*/
package expr
