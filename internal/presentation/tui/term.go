package tui

import (
	"io"
	"os"

	"github.com/aretw0/switchyard/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// StateStyle returns a state formatter for w: names in bold, values faint,
// virtual states in italics. Plain text when w is not a terminal.
func StateStyle(w io.Writer) func(domain.State) string {
	if !IsTerminal(w) {
		return func(s domain.State) string { return s.String() }
	}
	out := termenv.NewOutput(w)
	return func(s domain.State) string {
		if s.IsZero() {
			return out.String("<unset>").Faint().String()
		}
		name := out.String(s.Name()).Bold().Foreground(out.Color("#38bdf8"))
		if s.Virtual() {
			return name.Italic().String()
		}
		return name.String()
	}
}
