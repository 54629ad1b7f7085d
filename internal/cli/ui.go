package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorPink   = lipgloss.Color("205") // Pink - endpoints
	colorBlue   = lipgloss.Color("75")  // Light blue - visited
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Grid View
// =============================================================================

// cellState is what a grid cell shows. Higher states win when a cell is in
// several sets.
type cellState int

const (
	cellFree cellState = iota
	cellVisited
	cellBlocked
	cellOpen
	cellPath
	cellEndpoint
)

var cellGlyphs = map[cellState]string{
	cellFree:     "·",
	cellVisited:  "∘",
	cellBlocked:  "█",
	cellOpen:     "◆",
	cellPath:     "●",
	cellEndpoint: "◉",
}

var cellStyles = map[cellState]lipgloss.Style{
	cellFree:     lipgloss.NewStyle().Foreground(colorDim),
	cellVisited:  lipgloss.NewStyle().Foreground(colorBlue),
	cellBlocked:  lipgloss.NewStyle().Foreground(colorGray),
	cellOpen:     lipgloss.NewStyle().Foreground(colorYellow).Bold(true),
	cellPath:     lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	cellEndpoint: lipgloss.NewStyle().Foreground(colorPink).Bold(true),
}

// gridView collects per-cell states for drawing.
type gridView struct {
	layout grid.Layout
	states map[graph.ID]cellState
}

func newGridView(l grid.Layout) *gridView {
	return &gridView{layout: l, states: make(map[graph.ID]cellState)}
}

// mark raises the state of ids to s.
func (v *gridView) mark(s cellState, ids ...graph.ID) {
	for _, id := range ids {
		v.states[id] = max(v.states[id], s)
	}
}

// markMissing draws cells without a node in g as obstacles.
func (v *gridView) markMissing(g *graph.Graph[grid.Cell]) {
	for id := range graph.ID(v.layout.Len()) {
		if !g.Exists(id) {
			v.mark(cellBlocked, id)
		}
	}
}

// render draws the grid with row 0 at the top, one glyph per cell.
func (v *gridView) render() string {
	var b strings.Builder
	for row := range v.layout.Rows {
		for col := range v.layout.Cols {
			if col > 0 {
				b.WriteByte(' ')
			}
			s := v.states[v.layout.IDOf(col, row)]
			b.WriteString(cellStyles[s].Render(cellGlyphs[s]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// legend returns a one-line explanation of the glyphs.
func legend() string {
	items := []struct {
		s    cellState
		name string
	}{
		{cellEndpoint, "start/goal"},
		{cellPath, "path"},
		{cellOpen, "frontier"},
		{cellVisited, "visited"},
		{cellBlocked, "obstacle"},
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = cellStyles[it.s].Render(cellGlyphs[it.s]) + " " + StyleDim.Render(it.name)
	}
	return strings.Join(parts, "  ")
}
