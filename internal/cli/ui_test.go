package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/gridpath/pkg/grid"
)

func TestGridViewRender(t *testing.T) {
	g, l, err := grid.Build(3, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := grid.Carve(g, 3); err != nil {
		t.Fatal(err)
	}

	v := newGridView(l)
	v.markMissing(g)
	v.mark(cellVisited, 0, 1, 2)
	v.mark(cellPath, 0, 2)
	v.mark(cellEndpoint, 0)
	v.mark(cellVisited, 0) // lower states never overwrite higher ones

	got := v.render()
	rows := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2:\n%s", len(rows), got)
	}

	// Node ids run down the columns: row 0 holds 0, 2, 4.
	want := []string{
		cellGlyphs[cellEndpoint] + " " + cellGlyphs[cellPath] + " " + cellGlyphs[cellFree],
		cellGlyphs[cellVisited] + " " + cellGlyphs[cellBlocked] + " " + cellGlyphs[cellFree],
	}
	for i := range want {
		if stripANSI(rows[i]) != want[i] {
			t.Errorf("row %d = %q, want %q", i, stripANSI(rows[i]), want[i])
		}
	}
}

func TestLegendNamesEveryState(t *testing.T) {
	l := stripANSI(legend())
	for _, name := range []string{"start/goal", "path", "frontier", "visited", "obstacle"} {
		if !strings.Contains(l, name) {
			t.Errorf("legend missing %q", name)
		}
	}
}

// stripANSI drops terminal escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && !(s[i] >= 'A' && s[i] <= 'Z' || s[i] >= 'a' && s[i] <= 'z') {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
