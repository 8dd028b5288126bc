// Package ui holds the terminal styling shared by CLI commands.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI color and style sequences for CLI output. They are empty when stdout is
// not a terminal or NO_COLOR is set, so piped output stays plain.
var (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

func init() {
	if !Enabled(os.Getenv("NO_COLOR"), isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) {
		Disable()
	}
}

// Enabled reports whether styling should be used for the given NO_COLOR value
// and terminal state.
func Enabled(noColor string, terminal bool) bool {
	return noColor == "" && terminal
}

// Disable turns every style into a no-op.
func Disable() {
	for _, c := range []*string{&ColorReset, &ColorBold, &ColorDim, &ColorCyan, &ColorGreen, &ColorYellow, &ColorWhite, &ColorRed} {
		*c = ""
	}
}

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

// Info renders secondary notes.
func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}
