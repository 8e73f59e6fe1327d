package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Author        lipgloss.Style
	Timestamp     lipgloss.Style
	Body          lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	StatusLoading lipgloss.Style
	StatusError   lipgloss.Style
	StatusDone    lipgloss.Style
	EndMarker     lipgloss.Style
	Help          lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Author: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		Timestamp: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Body:          lipgloss.NewStyle(),
		Dim:           lipgloss.NewStyle().Faint(true),
		Status:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		EndMarker: lipgloss.NewStyle().
			Faint(true).
			Align(lipgloss.Center),
		Help: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
