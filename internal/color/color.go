// Package color styles the short status lines printed by the CLI.
//
// Colors adapt to the terminal background. Call Initialize once at startup;
// with colors disabled every style renders plain text.
package color

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	Success = lipgloss.AdaptiveColor{Light: "#05A167", Dark: "#05D176"}
	Failure = lipgloss.AdaptiveColor{Light: "#E06A56", Dark: "#F97171"}
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(Success).Bold(true)
	FailureStyle = lipgloss.NewStyle().Foreground(Failure).Bold(true)
)

// Initialize sets the background mode and turns colors off when enabled is false.
func Initialize(isDarkMode, enabled bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
	if !enabled {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Enabled reports whether a terminal honoring colors is expected: NO_COLOR
// is unset and the output is not a dumb terminal.
func Enabled(lookupEnv func(string) (string, bool)) bool {
	if _, ok := lookupEnv("NO_COLOR"); ok {
		return false
	}
	if term, _ := lookupEnv("TERM"); term == "dumb" {
		return false
	}
	return true
}
