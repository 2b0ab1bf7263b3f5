package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func driftStyle(exceeded bool) lipgloss.Style {
	if exceeded {
		return badStyle
	}
	return goodStyle
}

func driftLabel(exceeded bool) string {
	if exceeded {
		return "exceeded"
	}
	return "ok"
}
