package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Evaluation results and traces arrive as plain markdown; on a capable
// terminal this turns them into styled output.
func NewRenderer() func(string) (string, error) {
	// Auto style detects light/dark backgrounds. Style preferences could be
	// injected here later.
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a character device. The CLI
// uses it to decide between styled and plain output.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
