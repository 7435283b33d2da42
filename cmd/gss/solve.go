package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/gss"
	"github.com/aretw0/gss/internal/presentation/graph"
	"github.com/aretw0/gss/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newSolveCmd(a *app) *cobra.Command {
	var (
		in        gss.Input
		tol       float64
		sessionID string
		asJSON    bool
		mermaid   bool
		maxIter   int
	)

	cmd := &cobra.Command{
		Use:   "solve <expression>",
		Short: "Find the extremum of an expression inside [a, b]",
		Example: `  gss solve "x**2 + 3*x + 2" -a -5 -b 5
  gss solve "sin(x)" -a 0 -b 3.2 --mode maximize --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.FuncStr = args[0]
			if cmd.Flags().Changed("tol") {
				in.Tolerance = &tol
			}
			if cmd.Flags().Changed("max-iterations") {
				a.cfg.Solver.MaxIterations = maxIter
			}

			solver, err := a.solver(cmd.Context(), nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			payload, err := solver.Solve(cmd.Context(), sessionID, in)
			if err != nil {
				ep := gss.NewErrorPayload(err)
				if asJSON {
					if werr := writeJSON(out, map[string]any{"error": ep}); werr != nil {
						return werr
					}
				} else if werr := render(out, tui.ErrorMarkdown(ep)); werr != nil {
					return werr
				}
				return fmt.Errorf("solve failed: %s", ep.Kind)
			}

			if asJSON {
				return writeJSON(out, payload)
			}
			md := tui.ResultMarkdown(in.FuncStr, payload)
			if mermaid {
				md += "\n" + graph.Markdown(in.FuncStr, payload)
			}
			return render(out, md)
		},
	}

	f := cmd.Flags()
	f.Float64VarP(&in.A, "a", "a", 0, "Left bound of the interval")
	f.Float64VarP(&in.B, "b", "b", 1, "Right bound of the interval")
	f.Float64Var(&tol, "tol", 1e-4, "Stop once the bracket is narrower than this")
	f.StringVar(&in.Mode, "mode", "minimize", "minimize or maximize")
	f.StringVar(&in.Variable, "var", "x", "Name of the variable used in the expression")
	f.StringVar(&sessionID, "session", "", "Record the result in this history session")
	f.IntVar(&maxIter, "max-iterations", 0, "Override the iteration cap (at most 500)")
	f.BoolVar(&asJSON, "json", false, "Print the raw JSON payload")
	f.BoolVar(&mermaid, "mermaid", false, "Append Mermaid charts of the curve and the bracket narrowing")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func render(w io.Writer, markdown string) error {
	out, err := tui.RendererFor(w)(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
