package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfidenceMeter renders a percentage as a horizontal bar
type ConfidenceMeter struct {
	Width int
	Value float64 // 0-100
	Label string

	FillStyle  lipgloss.Style
	EmptyStyle lipgloss.Style
	Plain      bool
}

// NewConfidenceMeter creates a meter with the default styles
func NewConfidenceMeter(width int) *ConfidenceMeter {
	return &ConfidenceMeter{
		Width:      width,
		FillStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
		EmptyStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
	}
}

// SetValue updates the displayed percentage
func (m *ConfidenceMeter) SetValue(value float64) {
	m.Value = value
}

// Filled returns the number of filled cells, clamped to the meter width
func (m *ConfidenceMeter) Filled() int {
	if m.Width <= 0 {
		return 0
	}
	ratio := m.Value / 100
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return int(float64(m.Width)*ratio + 0.5)
}

// Render renders the meter followed by its label
func (m *ConfidenceMeter) Render() string {
	filledWidth := m.Filled()
	emptyWidth := m.Width - filledWidth
	if emptyWidth < 0 {
		emptyWidth = 0
	}

	fillChar, emptyChar := "█", "░"
	if m.Plain {
		fillChar, emptyChar = "#", "-"
	}

	bar := m.FillStyle.Render(strings.Repeat(fillChar, filledWidth)) +
		m.EmptyStyle.Render(strings.Repeat(emptyChar, emptyWidth))

	result := "[" + bar + "]"
	if m.Label != "" {
		result += " " + m.Label
	}
	return result
}
