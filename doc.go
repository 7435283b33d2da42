/*
Package gss locates the minimum or maximum of a user-supplied single-variable expression
over a bracket using Golden Section Search.

The Solver ties the pieces together: it compiles the expression with a whitelist-only
parser (pkg/expr), validates the request, runs the narrowing loop (pkg/search), builds the
client payload with a sampled curve (pkg/report) and records the result in the caller's
session history (pkg/session).

# Key Features

  - Safe evaluation: expressions are parsed into a syntax tree; no host code is ever run.
  - Deterministic: identical requests produce identical iteration traces.
  - Honest termination: hitting the iteration cap yields status not_converged and a warning.
  - Typed failures: every user-facing error carries a stable kind tag (see pkg/domain).

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/gss"
	)

	func main() {
		solver := gss.New()

		payload, err := solver.Solve(context.Background(), "", gss.Input{
			FuncStr: "x**2 + 3*x + 2",
			A:       -5,
			B:       5,
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("x_min=%.4f f_min=%.4f after %d iterations\n",
			payload.XMin, payload.FMin, payload.NumIterations)
	}
*/
package gss
