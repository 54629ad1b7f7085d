package cli

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/pkg/export"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/planner"
)

// searchOpts holds the command-line flags for the search command.
type searchOpts struct {
	grid      gridOpts
	waypoints bool   // print a table of path nodes
	quiet     bool   // skip the grid drawing
	dump      string // write the obstacle graph as JSON
}

// searchCommand creates the search command, which plans a path and draws it.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOpts

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find a shortest path across a grid with noise obstacles",
		Long: `Search builds a grid, places OpenSimplex noise obstacles on a copy of it and
runs a breadth-first search from start to goal. When the obstacles cut the goal
off, the next seed is tried.`,
		Example: `  gridpath search --cols 30 --rows 15 --threshold 0.2
  gridpath search --from 0,7 --to-pos 28.6,3.1 --waypoints`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.grid.scenario(cmd)
			if err != nil {
				return err
			}
			return c.runSearch(cmd.Context(), s, opts)
		},
	}

	addGridFlags(cmd, &opts.grid)
	cmd.Flags().BoolVarP(&opts.waypoints, "waypoints", "w", false, "print the path nodes as a table")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not draw the grid")
	cmd.Flags().StringVar(&opts.dump, "dump", "", "write the searched graph as JSON to this file")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, s *scenario, opts searchOpts) error {
	res, err := c.plan(ctx, s)
	if err != nil {
		printError("no path from %v to %v", s.cfg.Search.Start, s.cfg.Search.Goal)
		return err
	}

	if !opts.quiet {
		v := newGridView(s.layout)
		v.mark(cellBlocked, res.Blocked...)
		v.markMissing(res.Graph)
		v.mark(cellPath, export.PathIDs(res.Path)...)
		v.mark(cellEndpoint, s.start, s.goal)
		fmt.Print(v.render())
		fmt.Println(legend())
		fmt.Println()
	}

	printSuccess("Found path with %s nodes", StyleNumber.Render(strconv.Itoa(len(res.Path))))
	printSummary(res)

	if opts.waypoints {
		fmt.Println(waypointTable(res.Path))
	}

	if opts.dump != "" {
		var buf bytes.Buffer
		if err := export.WriteGraphJSON(&buf, res.Graph); err != nil {
			return err
		}
		if err := writeOutput(opts.dump, buf.Bytes()); err != nil {
			return err
		}
		printFile(opts.dump)
	}

	printNextStep("Watch the search", fmt.Sprintf("%s step --seed %d", appName, res.Seed))
	return nil
}

func printSummary(res *planner.Result) {
	printKeyValue("run", res.RunID)
	printKeyValue("attempt", fmt.Sprintf("%d (seed %d)", res.Attempt, res.Seed))
	printKeyValue("obstacles", strconv.Itoa(len(res.Blocked)))
	printKeyValue("visited", strconv.Itoa(res.Stats.Visited))
	printKeyValue("curve", fmt.Sprintf("degree %d, length %.2f", res.Curve.Degree(), res.Curve.Length(64)))
	printKeyValue("time", res.Stats.Duration.String())
}

// waypointTable renders path nodes with their cell and world position.
func waypointTable(path []*graph.Node[grid.Cell]) string {
	rows := make([][]string, len(path))
	for i, n := range path {
		rows[i] = []string{strconv.Itoa(i), strconv.Itoa(int(n.ID())), n.Data.String(), n.Position.String()}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Node", "Cell", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
