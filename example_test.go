package gss_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/gss"
	"github.com/aretw0/gss/pkg/domain"
)

func ExampleSolver_Solve() {
	solver := gss.New()

	payload, err := solver.Solve(context.Background(), "", gss.Input{
		FuncStr: "x**2 + 3*x + 2",
		A:       -5,
		B:       5,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("x_min=%.4f f_min=%.4f iterations=%d status=%s\n",
		payload.XMin, payload.FMin, payload.NumIterations, payload.Status)
	// Output:
	// x_min=-1.5000 f_min=-0.2500 iterations=24 status=converged
}

func ExampleNewErrorPayload() {
	solver := gss.New()

	_, err := solver.Solve(context.Background(), "", gss.Input{FuncStr: "log(x)", A: -2, B: -1})
	p := gss.NewErrorPayload(err)

	fmt.Println(p.Kind, p.Kind == domain.KindEvaluation)
	// Output:
	// EvaluationError true
}
