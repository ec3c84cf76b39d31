package ui

import (
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a set of adaptive colors for the upload screen
type Theme struct {
	Name string

	Primary lipgloss.AdaptiveColor
	Accent  lipgloss.AdaptiveColor

	// Authentic and manipulated verdicts use Success and Error
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	Border   lipgloss.AdaptiveColor
	Muted    lipgloss.AdaptiveColor
	Progress lipgloss.AdaptiveColor
}

// ac pairs a light and a dark terminal color
func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var themes = map[string]Theme{
	"default": {
		Name:     "default",
		Primary:  ac("#1E40AF", "#3B82F6"),
		Accent:   ac("#7C3AED", "#A855F7"),
		Success:  ac("#059669", "#10B981"),
		Warning:  ac("#D97706", "#F59E0B"),
		Error:    ac("#DC2626", "#EF4444"),
		Info:     ac("#0891B2", "#06B6D4"),
		Border:   ac("#D1D5DB", "#374151"),
		Muted:    ac("#6B7280", "#9CA3AF"),
		Progress: ac("#0891B2", "#06B6D4"),
	},
	"high-contrast": {
		Name:     "high-contrast",
		Primary:  ac("#000000", "#FFFFFF"),
		Accent:   ac("#000080", "#8080FF"),
		Success:  ac("#006600", "#00FF00"),
		Warning:  ac("#CC6600", "#FFAA00"),
		Error:    ac("#CC0000", "#FF4444"),
		Info:     ac("#0066CC", "#4499FF"),
		Border:   ac("#000000", "#FFFFFF"),
		Muted:    ac("#666666", "#BBBBBB"),
		Progress: ac("#0066CC", "#4499FF"),
	},
	"minimal": {
		Name:     "minimal",
		Primary:  ac("#2D3748", "#E2E8F0"),
		Accent:   ac("#4A5568", "#CBD5E0"),
		Success:  ac("#2F855A", "#68D391"),
		Warning:  ac("#C05621", "#F6AD55"),
		Error:    ac("#C53030", "#FC8181"),
		Info:     ac("#2B6CB0", "#63B3ED"),
		Border:   ac("#E2E8F0", "#2D3748"),
		Muted:    ac("#A0AEC0", "#718096"),
		Progress: ac("#718096", "#A0AEC0"),
	},
}

var (
	currentTheme  = themes["default"]
	colorDisabled bool
)

// GetTheme returns the current active theme
func GetTheme() Theme {
	return currentTheme
}

// SetThemeByName activates a theme. An empty name selects the default;
// an unknown name leaves the current theme and returns false.
func SetThemeByName(name string) bool {
	if name == "" {
		name = "default"
	}
	theme, ok := themes[name]
	if ok {
		currentTheme = theme
	}
	return ok
}

// GetAvailableThemes returns the theme names in sorted order
func GetAvailableThemes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetColorDisabled forces plain output regardless of NO_COLOR
func SetColorDisabled(disabled bool) {
	colorDisabled = disabled
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return colorDisabled || os.Getenv("NO_COLOR") != ""
}

// GetStyles builds the styles of the current theme
func GetStyles() *Styles {
	theme := GetTheme()

	if IsColorDisabled() {
		plain := lipgloss.NewStyle()
		box := plain.Border(lipgloss.RoundedBorder()).Padding(1, 2)
		return &Styles{
			Theme: theme, Title: plain.Bold(true), Header: plain.Bold(true), Body: plain, Muted: plain,
			Success: plain.Bold(true), Warning: plain.Bold(true), Error: plain.Bold(true), Info: plain,
			Positive: plain.Bold(true), Negative: plain.Bold(true), Progress: plain, Key: plain.Bold(true),
			Box: box, Panel: plain.Border(lipgloss.NormalBorder()).Padding(0, 1), Modal: box,
		}
	}

	return &Styles{
		Theme: theme,

		// Base styles
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Body: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		// Status styles
		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(theme.Info),

		// Verdict styles
		Positive: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Negative: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Progress: lipgloss.NewStyle().
			Foreground(theme.Progress).
			Bold(true),

		Key: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		// Layout styles
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(theme.Warning).
			Padding(1, 3),
	}
}

// Styles contains all the styled components
type Styles struct {
	Theme Theme

	// Base styles
	Title  lipgloss.Style
	Header lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style

	// Status styles
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Verdict styles
	Positive lipgloss.Style
	Negative lipgloss.Style

	// Special styles
	Progress lipgloss.Style
	Key      lipgloss.Style

	// Layout styles
	Box   lipgloss.Style
	Panel lipgloss.Style
	Modal lipgloss.Style
}
