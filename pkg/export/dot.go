package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
)

// DefaultScale is the default drawing distance in inches per world unit.
const DefaultScale = 0.5

// Highlight selects the nodes drawn in a distinct style.
// A node in several sets takes the style of the first of Path, Open,
// Blocked, Visited that contains it. The first and last node of Path are
// drawn as start and goal.
type Highlight struct {
	Path    []graph.ID
	Open    []graph.ID
	Visited []graph.ID
	Blocked []graph.ID

	// Scale is the drawing distance in inches per world unit.
	// Zero means DefaultScale.
	Scale float64

	// Labels prints node IDs inside the nodes.
	Labels bool
}

type role int

const (
	roleNone role = iota
	roleVisited
	roleBlocked
	roleOpen
	rolePath
	roleEndpoint
)

var roleAttrs = map[role][]string{
	roleVisited:  {"fillcolor=\"#dbeafe\""},
	roleBlocked:  {"fillcolor=\"#374151\"", "color=\"#111827\""},
	roleOpen:     {"fillcolor=\"#fde68a\"", "color=\"#d97706\""},
	rolePath:     {"fillcolor=\"#34d399\"", "color=\"#047857\""},
	roleEndpoint: {"fillcolor=\"#f472b6\"", "color=\"#be185d\"", "penwidth=2"},
}

func (h Highlight) roles() map[graph.ID]role {
	roles := make(map[graph.ID]role)
	mark := func(ids []graph.ID, r role) {
		for _, id := range ids {
			roles[id] = max(roles[id], r)
		}
	}
	mark(h.Visited, roleVisited)
	mark(h.Blocked, roleBlocked)
	mark(h.Open, roleOpen)
	mark(h.Path, rolePath)
	if len(h.Path) > 0 {
		mark([]graph.ID{h.Path[0], h.Path[len(h.Path)-1]}, roleEndpoint)
	}
	return roles
}

// ToDOT converts a graph to Graphviz DOT format for the neato engine.
// The Y axis is flipped so that row 0 of a grid is drawn at the top.
// Edges along the highlighted path are drawn thick.
func ToDOT[T graph.Cloner[T]](g *graph.Graph[T], h Highlight) string {
	scale := h.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	roles := h.roles()

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fixedsize=true, width=0.25, fontsize=8];\n")
	buf.WriteString("  edge [color=\"#9ca3af\"];\n")
	buf.WriteString("\n")

	for n := range g.All() {
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.Position.X*scale), fmtFloat(-n.Position.Y*scale)),
		}
		if h.Labels {
			attrs = append(attrs, fmt.Sprintf("label=\"%d\"", n.ID()))
		} else {
			attrs = append(attrs, "label=\"\"")
		}
		attrs = append(attrs, roleAttrs[roles[n.ID()]]...)
		fmt.Fprintf(&buf, "  \"%d\" [%s];\n", n.ID(), strings.Join(attrs, ", "))
	}

	onPath := make(map[graph.Edge]bool, len(h.Path))
	for i := 1; i < len(h.Path); i++ {
		onPath[ordered(h.Path[i-1], h.Path[i])] = true
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if onPath[e] {
			fmt.Fprintf(&buf, "  \"%d\" -- \"%d\" [color=\"#047857\", penwidth=3];\n", e.A, e.B)
			continue
		}
		fmt.Fprintf(&buf, "  \"%d\" -- \"%d\";\n", e.A, e.B)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func ordered(a, b graph.ID) graph.Edge {
	if a > b {
		a, b = b, a
	}
	return graph.Edge{A: a, B: b}
}

func fmtFloat(v float64) string {
	if v == 0 {
		return "0" // no "-0" for the flipped axis
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [ToPDF] or [ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height match the viewBox, so the image scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}
