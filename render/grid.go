// Package render draws menus as text grids for terminal-style transports.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/drake/canvas/menu"
)

// DefaultCellWidth is the label width of a cell, borders excluded.
const DefaultCellWidth = 10

// Grid draws menus with a fixed style set.
type Grid struct {
	styles    Styles
	cellWidth int
}

// New creates a Grid drawing with r. A nil renderer uses the default one.
func New(r *lipgloss.Renderer) *Grid {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Grid{styles: DefaultStyles(r), cellWidth: DefaultCellWidth}
}

// ForWriter creates a Grid for a remote writer such as a telnet connection,
// where the local terminal cannot be queried for its color support.
func ForWriter(w io.Writer, profile termenv.Profile) *Grid {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	r.SetColorProfile(profile)
	return New(r)
}

// SetCellWidth changes the label width of every cell.
func (g *Grid) SetCellWidth(w int) {
	if w < 3 {
		w = 3
	}
	g.cellWidth = w
}

// Options control one rendering.
type Options struct {
	Selected int       // Highlighted slot, -1 for none
	Cursor   menu.Item // Item the viewer is holding
	Status   string    // Free text line under the grid
}

// Render draws m with its title, one bordered cell per slot, and a footer.
func (g *Grid) Render(m *menu.Menu, opts Options) string {
	dim := m.Dimensions()
	slots := m.Slots()

	rows := make([]string, 0, dim.Rows)
	for r := 0; r < dim.Rows; r++ {
		cells := make([]string, 0, dim.Columns)
		for c := 0; c < dim.Columns; c++ {
			slot := slots[r*dim.Columns+c]
			cells = append(cells, g.cell(slot, slot.Index() == opts.Selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	var b strings.Builder
	title := m.Title()
	if title == "" {
		title = "Menu"
	}
	b.WriteString(g.styles.Title.Render(fmt.Sprintf("%s (%s)", title, dim)))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString("\n")
	b.WriteString(g.footer(m, opts))
	return b.String()
}

func (g *Grid) cell(s *menu.Slot, selected bool) string {
	item := s.Item()
	label := Label(menu.Describe(item), g.cellWidth)
	index := g.styles.Index.Render(fmt.Sprintf("%-*d", g.cellWidth, s.Index()))

	style := g.styles.Cell
	switch {
	case selected:
		style = g.styles.Selected
	case item == nil:
		style = g.styles.Empty
	case s.ClickOptions() == menu.DenyAll:
		style = g.styles.Locked
	}
	return style.Render(index + "\n" + label)
}

func (g *Grid) footer(m *menu.Menu, opts Options) string {
	parts := []string{}
	if opts.Cursor != nil {
		parts = append(parts, g.styles.Footer.Render("holding: "+menu.Describe(opts.Cursor)))
	}
	if parent, ok := m.Parent(); ok {
		parts = append(parts, g.styles.Muted.Render("back: "+parent.Title()))
	}
	if opts.Status != "" {
		parts = append(parts, opts.Status)
	}
	return strings.Join(parts, "  ")
}

// Label fits text into exactly width terminal columns, truncating with an
// ellipsis and padding with spaces.
func Label(text string, width int) string {
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "…")
	}
	return runewidth.FillRight(text, width)
}

// Plain renders m without styling, one line per row, for logs and tests.
func Plain(m *menu.Menu, cellWidth int) string {
	dim := m.Dimensions()
	slots := m.Slots()

	var b strings.Builder
	for r := 0; r < dim.Rows; r++ {
		for c := 0; c < dim.Columns; c++ {
			s := slots[r*dim.Columns+c]
			label := menu.Describe(s.Item())
			if label == "" {
				label = "."
			}
			b.WriteString("[")
			b.WriteString(Label(label, cellWidth))
			b.WriteString("]")
		}
		b.WriteString("\n")
	}
	return b.String()
}
