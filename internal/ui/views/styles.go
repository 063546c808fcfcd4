package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title     lipgloss.Style
	Dim       lipgloss.Style
	Status    lipgloss.Style
	Input     lipgloss.Style
	Notice    lipgloss.Style
	Help      lipgloss.Style
	Main      lipgloss.Style
	ResultBox lipgloss.Style
	Name      lipgloss.Style
	Link      lipgloss.Style
	NotFound  lipgloss.Style
	Busy      lipgloss.Style
	Error     lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Dim: lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		Notice: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Help:   lipgloss.NewStyle().Faint(true).MarginTop(1),
		Main:   lipgloss.NewStyle().Padding(1, 2),
		ResultBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1).
			MarginBottom(1).
			Align(lipgloss.Center),
		Name:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")), // green
		Link:     lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Underline(true),
		NotFound: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Busy:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}
