package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gridpath/pkg/export"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/search"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(colorWhite)
	helpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// StepModel - Interactive stepwise search
// =============================================================================

// stepTickMsg advances an auto-running search.
type stepTickMsg struct{}

// stepChromeHeight is the number of lines around the grid: title, status,
// error, legend and help.
const stepChromeHeight = 8

// scrollKeys scroll the grid. Space, f and the arrows used for stepping are
// left out.
var scrollKeys = viewport.KeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k")),
	Down:     key.NewBinding(key.WithKeys("down", "j")),
	PageUp:   key.NewBinding(key.WithKeys("pgup")),
	PageDown: key.NewBinding(key.WithKeys("pgdown")),
}

// StepModel is the bubbletea model that drives a search one frontier
// expansion per keypress and draws the grid after each step.
type StepModel struct {
	Layout  grid.Layout
	Graph   *graph.Graph[grid.Cell]
	Blocked []graph.ID
	Start   graph.ID
	Goal    graph.ID

	// Interval is the delay between steps while auto-running.
	Interval time.Duration

	finder  *search.PathFinder[grid.Cell]
	path    []graph.ID
	running bool
	err     error

	// viewport scrolls the grid once the terminal size is known.
	viewport viewport.Model
	ready    bool
}

// NewStepModel creates a model searching g from start to goal.
func NewStepModel(l grid.Layout, g *graph.Graph[grid.Cell], blocked []graph.ID, start, goal graph.ID) (StepModel, error) {
	m := StepModel{
		Layout:   l,
		Graph:    g,
		Blocked:  blocked,
		Start:    start,
		Goal:     goal,
		Interval: 120 * time.Millisecond,
	}
	if err := m.reset(); err != nil {
		return StepModel{}, err
	}
	return m, nil
}

func (m *StepModel) reset() error {
	from, err := m.Graph.Get(m.Start)
	if err != nil {
		return err
	}
	to, err := m.Graph.Get(m.Goal)
	if err != nil {
		return err
	}
	pf, err := search.New(m.Graph, from, to)
	if err != nil {
		return err
	}
	m.finder, m.path, m.err, m.running = pf, nil, nil, false
	if pf.Status() == search.Found {
		m.collectPath()
	}
	return nil
}

// step expands one frontier and collects the path once the goal is found.
func (m *StepModel) step() {
	done, err := m.finder.Step()
	if err != nil {
		m.err = err
		return
	}
	if done {
		m.running = false
		if m.finder.Status() == search.Found {
			m.collectPath()
		}
	}
}

func (m *StepModel) collectPath() {
	path, err := m.finder.FindShortestPath()
	if err != nil {
		m.err = err
		return
	}
	m.path = export.PathIDs(path)
}

func (m StepModel) tick() tea.Cmd {
	return tea.Tick(m.Interval, func(time.Time) tea.Msg { return stepTickMsg{} })
}

// Status returns the search status.
func (m StepModel) Status() search.Status { return m.finder.Status() }

// Path returns the path node IDs once found.
func (m StepModel) Path() []graph.ID { return m.path }

func (m StepModel) Init() tea.Cmd {
	if m.running {
		return m.tick()
	}
	return nil
}

func (m StepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if next.ready {
		next.viewport.SetContent(next.gridView().render())
	}
	return next, cmd
}

func (m StepModel) update(msg tea.Msg) (StepModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-stepChromeHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.KeyMap = scrollKeys
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "n", "right", "enter":
			if !m.finder.Status().Terminal() {
				m.step()
			}
		case "f":
			for m.err == nil && !m.finder.Status().Terminal() {
				m.step()
			}
		case "a":
			if m.finder.Status().Terminal() {
				return m, nil
			}
			m.running = !m.running
			if m.running {
				return m, m.tick()
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		default:
			if m.ready {
				var cmd tea.Cmd
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
		}
	case stepTickMsg:
		if !m.running || m.err != nil || m.finder.Status().Terminal() {
			m.running = false
			return m, nil
		}
		m.step()
		if m.running {
			return m, m.tick()
		}
	}
	return m, nil
}

func (m StepModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Stepwise Search"))
	b.WriteString("\n\n")
	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.gridView().render())
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(legend())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("space step  a auto  f finish  r restart  ↑/↓ scroll  q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m StepModel) gridView() *gridView {
	v := newGridView(m.Layout)
	v.markMissing(m.Graph)
	v.mark(cellBlocked, m.Blocked...)
	for n := range m.Graph.All() {
		if m.finder.Visited(n) {
			v.mark(cellVisited, n.ID())
		}
	}
	for n := range m.finder.OpenNodes() {
		v.mark(cellOpen, n.ID())
	}
	v.mark(cellPath, m.path...)
	v.mark(cellEndpoint, m.Start, m.Goal)
	return v
}

func (m StepModel) statusLine() string {
	pf := m.finder
	line := fmt.Sprintf("%-9s depth %d  frontier %d  visited %d",
		pf.Status(), pf.Depth(), pf.OpenCount(), pf.VisitedCount())
	switch {
	case len(m.path) > 0:
		line += fmt.Sprintf("  path %d nodes", len(m.path))
	case pf.Status() == search.Exhausted:
		line += "  goal unreachable"
	}
	if m.running {
		line += "  (auto)"
	}
	return line
}

// Err returns the error that stopped the search, if any. Running out of
// nodes is not an error.
func (m StepModel) Err() error { return m.err }
