package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the title banner with the flow name and session.
func PrintBanner(w io.Writer, flowName, sessionID string) {
	p := termenv.ColorProfile()
	title := termenv.String(" cancelflow ").Bold().Foreground(p.Color("#ffffff")).Background(p.Color("#7c3aed"))
	sub := termenv.String(fmt.Sprintf(" flow %s · session %s", flowName, sessionID)).Foreground(p.Color("#a78bfa"))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s\n", title, sub)
	fmt.Fprintln(w, termenv.String("Type a number or an answer. :reset starts over, :quit leaves.").Faint())
	fmt.Fprintln(w)
}

// Success styles a closing message.
func Success(s string) string {
	p := termenv.ColorProfile()
	return termenv.String(s).Foreground(p.Color("#22c55e")).Bold().String()
}
