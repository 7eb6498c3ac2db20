package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// Out receives every line printed by this package.
var Out io.Writer = color.Output

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
)

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	successColor.Fprintf(Out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	errorColor.Fprintf(Out, "✗ %s\n", fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	warningColor.Fprintf(Out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	infoColor.Fprintf(Out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// PrintBold prints a bold message
func PrintBold(format string, args ...interface{}) {
	boldColor.Fprintln(Out, fmt.Sprintf(format, args...))
}

// Println prints plain text.
func Println(s string) {
	fmt.Fprintln(Out, s)
}

// PrintBanner prints the welcome banner.
func PrintBanner() {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		Align(lipgloss.Center).
		Width(56).
		Render("🚗  Toyota Corolla Used Car Analyzer")
	sub := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Align(lipgloss.Center).
		Width(56).
		Render("SQLite · gota · gonum")
	fmt.Fprintln(Out, Styles.Banner.Render(title+"\n"+sub))
}

// PrintSuccessBox prints a success message in a box
func PrintSuccessBox(title, content string) {
	fmt.Fprintln(Out, Styles.SuccessBox.Render(successColor.Sprint(title)+"\n\n"+content))
}

// PrintErrorBox prints an error message in a box
func PrintErrorBox(title, content string) {
	fmt.Fprintln(Out, Styles.ErrorBox.Render(errorColor.Sprint(title)+"\n\n"+content))
}
