package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lmt/todolist/internal/domain"
)

type palette struct {
	title    lipgloss.Style
	item     lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	dialog   lipgloss.Style
	help     lipgloss.Style
	status   map[domain.TaskStatus]lipgloss.Style
}

func newPalette(dark bool) palette {
	fg, accent, dim := lipgloss.Color("235"), lipgloss.Color("25"), lipgloss.Color("245")
	if dark {
		fg, accent, dim = lipgloss.Color("252"), lipgloss.Color("12"), lipgloss.Color("241")
	}

	return palette{
		title:    lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		item:     lipgloss.NewStyle().PaddingLeft(2).Foreground(fg),
		selected: lipgloss.NewStyle().PaddingLeft(2).Foreground(accent).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(dim).Italic(true),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		failure:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1),
		help: lipgloss.NewStyle().Foreground(dim),
		status: map[domain.TaskStatus]lipgloss.Style{
			domain.TaskStatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			domain.TaskStatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			domain.TaskStatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		},
	}
}

func (p palette) statusBadge(s domain.TaskStatus) string {
	style, ok := p.status[s]
	if !ok {
		style = p.muted
	}
	return style.Render("[" + s.Label() + "]")
}
