package domain

import (
	"fmt"
	"strings"
)

// Mode selects the kind of extremum the search narrows toward.
type Mode string

const (
	Minimize Mode = "minimize"
	Maximize Mode = "maximize"
)

// ParseMode normalises user input into a Mode.
// An empty string selects Minimize, matching the API default.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "min", string(Minimize):
		return Minimize, nil
	case "max", string(Maximize):
		return Maximize, nil
	}
	return "", &InvalidInputError{
		Field:  "mode",
		Reason: fmt.Sprintf("unknown mode %q (expected %q or %q)", s, Minimize, Maximize),
	}
}

// Prefers reports whether f1 wins over f2 under this mode.
// Exact ties count as a win for f1, which narrows the bracket toward its lower half.
func (m Mode) Prefers(f1, f2 float64) bool {
	if m == Maximize {
		return f1 >= f2
	}
	return f1 <= f2
}

func (m Mode) String() string {
	return string(m)
}
