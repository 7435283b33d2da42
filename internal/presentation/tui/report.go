package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/report"
)

// MaxTableRows bounds the iteration table; longer traces keep the head and the tail.
const MaxTableRows = 30

// ResultMarkdown summarises a successful solve.
func ResultMarkdown(function string, p *report.Payload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s of `%s`\n\n", title(p.Mode), function)
	fmt.Fprintf(&sb, "- **x**: `%s`\n", num(p.XMin))
	fmt.Fprintf(&sb, "- **f(x)**: `%s`\n", num(p.FMin))
	fmt.Fprintf(&sb, "- **iterations**: %d\n", p.NumIterations)
	fmt.Fprintf(&sb, "- **final interval**: [%s, %s]\n", num(p.FinalInterval.A), num(p.FinalInterval.B))
	fmt.Fprintf(&sb, "- **status**: %s\n", p.Status)
	if p.Warning != nil {
		fmt.Fprintf(&sb, "\n> **%s**: %s\n", p.Warning.Kind, p.Warning.Message)
	}
	if len(p.Iterations) > 0 {
		sb.WriteString("\n## Iterations\n\n")
		writeIterations(&sb, p.Iterations)
	}
	return sb.String()
}

// ErrorMarkdown describes a rejected or aborted solve, including any partial trace.
func ErrorMarkdown(ep *report.ErrorPayload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n", ep.Kind, ep.Message)
	if ep.Field != "" {
		fmt.Fprintf(&sb, "\n- **field**: `%s`\n", ep.Field)
	}
	if ep.Position != nil {
		fmt.Fprintf(&sb, "\n- **position**: %d\n", *ep.Position)
	}
	if ep.X != nil {
		fmt.Fprintf(&sb, "\n- **x**: `%s`\n", num(*ep.X))
	}
	if ep.Partial != nil && len(ep.Partial.Iterations) > 0 {
		sb.WriteString("\n## Iterations before the failure\n\n")
		writeIterations(&sb, ep.Partial.Iterations)
	}
	return sb.String()
}

// HistoryMarkdown lists entries in the order given.
func HistoryMarkdown(sessionID string, entries []domain.HistoryEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# History of `%s`\n\n", sessionID)
	if len(entries) == 0 {
		sb.WriteString("_No calculations yet._\n")
		return sb.String()
	}
	sb.WriteString("| id | when | function | bounds | tol | mode | status |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "| %s | %s | `%s` | [%s, %s] | %s | %s | %s |\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), escape(e.Function),
			num(e.A), num(e.B), num(e.Tolerance), e.Mode, e.Status)
	}
	return sb.String()
}

func writeIterations(sb *strings.Builder, iterations []domain.IterationRecord) {
	sb.WriteString("| k | a | b | x1 | x2 | f(x1) | f(x2) | width |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|\n")

	rows := iterations
	skipped := 0
	if len(rows) > MaxTableRows {
		half := MaxTableRows / 2
		skipped = len(rows) - 2*half
		rows = append(append([]domain.IterationRecord{}, iterations[:half]...), iterations[len(iterations)-half:]...)
	}
	for i, it := range rows {
		if skipped > 0 && i == MaxTableRows/2 {
			fmt.Fprintf(sb, "| ... | %d more | | | | | | |\n", skipped)
		}
		fmt.Fprintf(sb, "| %d | %s | %s | %s | %s | %s | %s | %s |\n",
			it.Index, num(it.A), num(it.B), num(it.X1), num(it.X2), num(it.F1), num(it.F2), num(it.Width))
	}
}

func title(m domain.Mode) string {
	if m == domain.Maximize {
		return "Maximum"
	}
	return "Minimum"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
