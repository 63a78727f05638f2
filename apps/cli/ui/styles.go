// Package ui renders the terminal client: the degree status report and the interactive registration stepper.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Light Mode Colors (Default)
	LightForeground = lipgloss.Color("#1b2a41")
	LightPrimary    = lipgloss.Color("#1e5aa8")
	LightMuted      = lipgloss.Color("#6b7685")
	LightBorder     = lipgloss.Color("#c9d1dc")

	// Dark Mode Colors
	DarkForeground = lipgloss.Color("#eef1f5")
	DarkPrimary    = lipgloss.Color("#7fb2f0")
	DarkMuted      = lipgloss.Color("#8c97a8")
	DarkBorder     = lipgloss.Color("#3a4759")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#43a047")
	Warning     = lipgloss.Color("#f9a825")
)

// Theme holds the current color scheme
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

func LightTheme() Theme {
	return Theme{Foreground: LightForeground, Primary: LightPrimary, Muted: LightMuted, Border: LightBorder}
}

func DarkTheme() Theme {
	return Theme{Foreground: DarkForeground, Primary: DarkPrimary, Muted: DarkMuted, Border: DarkBorder, IsDark: true}
}

// ThemeFor follows the user's dark mode setting.
func ThemeFor(darkMode bool) Theme {
	if darkMode {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	StepActive lipgloss.Style
	StepDone   lipgloss.Style
	StepTodo   lipgloss.Style

	Dialog   lipgloss.Style
	Selected lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Footer  lipgloss.Style
}

func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().Foreground(theme.Muted).Italic(true),
		Body:     lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Bold:     lipgloss.NewStyle().Foreground(theme.Foreground).Bold(true),

		StepActive: lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Underline(true),
		StepDone:   lipgloss.NewStyle().Foreground(Success),
		StepTodo:   lipgloss.NewStyle().Foreground(theme.Muted),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),

		Success: lipgloss.NewStyle().Foreground(Success),
		Error:   lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(Warning),
		Footer:  lipgloss.NewStyle().Foreground(theme.Muted).MarginTop(1),
	}
}
