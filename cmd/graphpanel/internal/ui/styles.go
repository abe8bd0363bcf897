package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/graphpanel/pkg/renderservice"
)

var (
	primaryColor = lipgloss.Color("#3b82f6")
	successColor = lipgloss.Color("#10b981")
	warningColor = lipgloss.Color("#f59e0b")
	errorColor   = lipgloss.Color("#ef4444")
	mutedColor   = lipgloss.Color("#94a3b8")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	messageStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// GraphTable renders graphs one per line, in the order given, with the
// label padded to a common width
func GraphTable(graphs []renderservice.Graph) string {
	if len(graphs) == 0 {
		return mutedStyle.Render("no graphs")
	}
	width := 0
	for _, g := range graphs {
		if w := lipgloss.Width(g.Label); w > width {
			width = w
		}
	}
	label := lipgloss.NewStyle().Bold(true).Width(width)

	var b strings.Builder
	for i, g := range graphs {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			mutedStyle.Render(fmt.Sprintf("%3d", i+1)),
			label.Render(g.Label),
			mutedStyle.Render(string(g.Ref)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Success, Warning and Error style a one-line CLI report
func Success(s string) string { return successStyle.Render(s) }
func Warning(s string) string { return warningStyle.Render(s) }
func Error(s string) string   { return errorStyle.Render(s) }
