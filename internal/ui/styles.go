package ui

import (
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/prefs"
	"taskdeck/internal/task"
)

// Styles carries the lipgloss palette for one theme. Toggling the theme
// swaps the whole set; individual renders never branch on the theme.
type Styles struct {
	Title     lipgloss.Style
	Stats     lipgloss.Style
	Cursor    lipgloss.Style
	TaskTitle lipgloss.Style
	TaskDone  lipgloss.Style
	BadgeLow  lipgloss.Style
	BadgeMed  lipgloss.Style
	BadgeHigh lipgloss.Style
	Meta      lipgloss.Style
	Empty     lipgloss.Style
	Error     lipgloss.Style
	Status    lipgloss.Style
	Help      lipgloss.Style
	Filter    lipgloss.Style
}

func stylesFor(theme string) Styles {
	if theme == prefs.ThemeDark {
		return darkStyles()
	}
	return lightStyles()
}

func lightStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		Stats:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Cursor:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		TaskTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("235")),
		TaskDone:  lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("246")),
		BadgeLow:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		BadgeMed:  lipgloss.NewStyle().Foreground(lipgloss.Color("172")),
		BadgeHigh: lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		Meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Empty:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("243")),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		Filter:    lipgloss.NewStyle().Foreground(lipgloss.Color("30")),
	}
}

func darkStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111")),
		Stats:     lipgloss.NewStyle().Foreground(lipgloss.Color("247")),
		Cursor:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111")),
		TaskTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("253")),
		TaskDone:  lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("242")),
		BadgeLow:  lipgloss.NewStyle().Foreground(lipgloss.Color("77")),
		BadgeMed:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		BadgeHigh: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Empty:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		Filter:    lipgloss.NewStyle().Foreground(lipgloss.Color("80")),
	}
}

// Badge picks the priority badge style; unknown labels get the Low style,
// mirroring the display fallback.
func (s Styles) Badge(priority string) lipgloss.Style {
	switch priority {
	case task.PriorityHigh:
		return s.BadgeHigh
	case task.PriorityMedium:
		return s.BadgeMed
	default:
		return s.BadgeLow
	}
}
