package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/report"
)

// MaxChartPoints bounds the number of samples in a chart; Mermaid slows down past that.
const MaxChartPoints = 40

// MaxTraceNodes bounds the number of brackets drawn by TraceFlow.
const MaxTraceNodes = 12

// PlotChart produces a Mermaid xychart of the sampled curve.
// The curve is thinned to at most MaxChartPoints evenly strided samples.
func PlotChart(function string, p *report.Payload) string {
	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	fmt.Fprintf(&sb, "    title \"%s\"\n", escapeLabel(function))

	idx := stride(p.PlotData.Len(), MaxChartPoints)
	labels := make([]string, len(idx))
	values := make([]string, len(idx))
	for i, j := range idx {
		labels[i] = "\"" + num(p.PlotData.X[j]) + "\""
		values[i] = num(p.PlotData.Y[j])
	}
	fmt.Fprintf(&sb, "    x-axis [%s]\n", strings.Join(labels, ", "))
	sb.WriteString("    y-axis \"f(x)\"\n")
	fmt.Fprintf(&sb, "    line [%s]\n", strings.Join(values, ", "))
	return sb.String()
}

// TraceFlow produces a Mermaid flowchart of the bracket narrowing. Each node is one
// bracket, each edge names the side that was discarded. The final interval is styled
// as current and every drawn step as visited.
func TraceFlow(p *report.Payload) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	recs := p.Iterations
	idx := stride(len(recs), MaxTraceNodes)
	for _, i := range idx {
		r := recs[i]
		fmt.Fprintf(&sb, "    %s[\"k=%d <br/> [%s, %s]\"]\n", nodeID(r.Index), r.Index, num(r.A), num(r.B))
	}
	fmt.Fprintf(&sb, "    final((\"[%s, %s]\"))\n", num(p.FinalInterval.A), num(p.FinalInterval.B))

	for n, i := range idx {
		from := recs[i]
		var next domain.IterationRecord
		to := "final"
		if n+1 < len(idx) {
			next = recs[idx[n+1]]
			to = nodeID(next.Index)
		} else {
			next = domain.IterationRecord{A: p.FinalInterval.A, B: p.FinalInterval.B}
		}

		arrow := "-->"
		if skipped := idxGap(idx, n, len(recs)); skipped > 0 {
			arrow = fmt.Sprintf("-. \"%d steps\" .->", skipped+1)
		} else if label := dropped(from, next); label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(from.Index), arrow, to)
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	for _, i := range idx {
		fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(recs[i].Index))
	}
	sb.WriteString("    class final current;\n")
	return sb.String()
}

// Markdown wraps both charts in fenced mermaid blocks.
func Markdown(function string, p *report.Payload) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString(PlotChart(function, p))
	sb.WriteString("```\n\n```mermaid\n")
	sb.WriteString(TraceFlow(p))
	sb.WriteString("```\n")
	return sb.String()
}

func dropped(from, to domain.IterationRecord) string {
	switch {
	case to.B < from.B && to.A == from.A:
		return "drop right"
	case to.A > from.A && to.B == from.B:
		return "drop left"
	}
	return ""
}

// idxGap counts the records between idx[n] and the next drawn one (or the end).
func idxGap(idx []int, n, total int) int {
	next := total
	if n+1 < len(idx) {
		next = idx[n+1]
	}
	return next - idx[n] - 1
}

// stride picks at most max indices out of n, always keeping the first and the last.
func stride(n, max int) []int {
	if n <= max {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, 0, max)
	for i := 0; i < max-1; i++ {
		out = append(out, i*(n-1)/(max-1))
	}
	return append(out, n-1)
}

func nodeID(k int) string {
	return "k" + strconv.Itoa(k)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
