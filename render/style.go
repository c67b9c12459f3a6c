package render

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used to draw a menu.
type Styles struct {
	Title    lipgloss.Style
	Cell     lipgloss.Style
	Empty    lipgloss.Style
	Selected lipgloss.Style
	Locked   lipgloss.Style
	Index    lipgloss.Style
	Footer   lipgloss.Style
	Muted    lipgloss.Style
}

// DefaultStyles returns the default style configuration for r.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title: r.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1).
			Bold(true),
		Cell: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Foreground(lipgloss.Color("252")),
		Empty: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("236")).
			Foreground(lipgloss.Color("240")),
		Selected: r.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("212")).
			Foreground(lipgloss.Color("230")),
		Locked: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("88")).
			Foreground(lipgloss.Color("252")),
		Index: r.NewStyle().
			Foreground(lipgloss.Color("243")),
		Footer: r.NewStyle().
			Foreground(lipgloss.Color("179")),
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}
