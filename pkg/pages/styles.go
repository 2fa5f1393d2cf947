// Package pages renders the console's screens as terminal text.
package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

func header(title, description string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	if description != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(description))
	}
	return b.String()
}

func section(title, description string) string {
	s := sectionStyle.Render(title)
	if description != "" {
		s += "\n" + mutedStyle.Render(description)
	}
	return s
}

func errorLine(msg string) string {
	return errorStyle.Render(msg)
}

func statusLine(success bool, msg string) string {
	if success {
		return successStyle.Render("✓ " + msg)
	}
	return errorStyle.Render("✗ " + msg)
}

func grid(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		String()
}

func join(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
