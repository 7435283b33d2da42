package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the GSS banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"   ____ ____ ____ ", "#fbbf24"},
		{"  / ___/ ___/ ___|", "#f59e0b"},
		{" | |  _\\___ \\___ \\", "#d97706"},
		{" | |_| |___) |__) |", "#b45309"},
		{"  \\____|____/____/ ", "#92400e"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String(" golden section search "+version).Faint())
	fmt.Fprintln(w)
}
