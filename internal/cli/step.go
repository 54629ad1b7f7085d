package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/planner"
	"github.com/matzehuels/gridpath/pkg/search"
)

// stepOpts holds the command-line flags for the step command.
type stepOpts struct {
	grid     gridOpts
	attempt  int           // obstacle layout to search, 1-based
	auto     bool          // start stepping automatically
	interval time.Duration // delay between automatic steps
	plain    bool          // print steps instead of running the TUI
}

// stepCommand creates the step command, an interactive view of the search
// advancing one frontier at a time.
func (c *CLI) stepCommand() *cobra.Command {
	opts := stepOpts{attempt: 1, interval: 120 * time.Millisecond}

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Watch the breadth-first search expand frontier by frontier",
		Long: `Step places the obstacles of one layout and lets you drive the search by
hand. Every keypress expands the whole frontier by one level; the grid shows
the frontier, the visited nodes and, once the goal is reached, the path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.attempt < 1 {
				return errs.New(errs.ErrCodeInvalidArgument, "--attempt must be at least 1, got %d", opts.attempt)
			}
			s, err := opts.grid.scenario(cmd)
			if err != nil {
				return err
			}
			return c.runStep(cmd.Context(), s, opts)
		},
	}

	addGridFlags(cmd, &opts.grid)
	cmd.Flags().IntVar(&opts.attempt, "attempt", opts.attempt, "obstacle layout to search (seed + attempt - 1)")
	cmd.Flags().BoolVar(&opts.auto, "auto", false, "step automatically")
	cmd.Flags().DurationVar(&opts.interval, "interval", opts.interval, "delay between automatic steps")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print every step instead of running the interactive view")

	return cmd
}

func (c *CLI) runStep(ctx context.Context, s *scenario, opts stepOpts) error {
	g, blocked, err := planner.Prepare(s.request(), opts.attempt-1)
	if err != nil {
		return err
	}
	c.Logger.Debug("prepared layout", "attempt", opts.attempt, "blocked", len(blocked))

	m, err := NewStepModel(s.layout, g, blocked, s.start, s.goal)
	if err != nil {
		return err
	}
	m.Interval = opts.interval
	m.running = opts.auto && !opts.plain

	if opts.plain {
		return runPlainSteps(os.Stdout, m)
	}

	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	fm := final.(StepModel)
	if err := fm.Err(); err != nil {
		return err
	}
	switch fm.Status() {
	case search.Found:
		printSuccess("Found path with %d nodes", len(fm.Path()))
	case search.Exhausted:
		printError("Goal unreachable with this layout")
		printNextStep("Try the next layout", fmt.Sprintf("%s step --attempt %d", appName, opts.attempt+1))
	default:
		printInfo("Search stopped at depth %d", fm.finder.Depth())
	}
	return nil
}

// runPlainSteps drives m to completion, writing one status line per step
// and the final grid to w.
func runPlainSteps(w io.Writer, m StepModel) error {
	fmt.Fprintln(w, m.statusLine())
	for !m.finder.Status().Terminal() {
		m.step()
		if m.err != nil {
			return m.err
		}
		fmt.Fprintln(w, m.statusLine())
	}
	fmt.Fprint(w, m.gridView().render())
	if m.finder.Status() == search.Exhausted {
		return errs.Wrap("", search.ErrNoPath, "attempt exhausted")
	}
	return nil
}
