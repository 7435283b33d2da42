package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer that picks a light or dark style from the
// terminal background.
func NewRenderer(width int) Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Plain
	}
	return r.Render
}

// Plain returns the markdown unchanged, for pipes and files.
func Plain(markdown string) (string, error) {
	return markdown, nil
}

// RendererFor styles output only when w is a terminal.
func RendererFor(w io.Writer) Renderer {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return Plain
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = 100
	}
	return NewRenderer(width)
}
