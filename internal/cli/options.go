package cli

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/pkg/config"
	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/geom"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/planner"
	"github.com/matzehuels/gridpath/pkg/spatial"
)

// gridOpts holds the flags shared by every command that plans a path.
// Flags override values from the --config file, which override defaults.
type gridOpts struct {
	configPath  string   // TOML config file
	cols        int      // grid columns
	rows        int      // grid rows
	spacing     float64  // world distance between neighboring cells
	from        string   // start cell as "col,row"
	to          string   // goal cell as "col,row"
	fromPos     string   // start as world position "x,y[,z]", snapped to the nearest node
	toPos       string   // goal as world position "x,y[,z]", snapped to the nearest node
	keepClear   []string // world boxes "x0,y0:x1,y1" that never hold obstacles
	seed        int64    // noise seed of the first attempt
	threshold   float64  // noise level above which a cell is blocked
	attempts    int      // obstacle layouts to try
	noObstacles bool     // search the bare grid
	carve       bool     // remove obstacle nodes instead of isolating them
	metrics     string   // Prometheus text file to write after planning
}

// addGridFlags registers the shared planning flags on cmd.
func addGridFlags(cmd *cobra.Command, o *gridOpts) {
	def := config.Default()
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "TOML config file")
	f.IntVar(&o.cols, "cols", def.Grid.Cols, "grid columns")
	f.IntVar(&o.rows, "rows", def.Grid.Rows, "grid rows")
	f.Float64Var(&o.spacing, "spacing", def.Grid.Spacing, "distance between neighboring cells")
	f.StringVar(&o.from, "from", "", "start cell as col,row (default 0,0)")
	f.StringVar(&o.to, "to", "", "goal cell as col,row (default: opposite corner)")
	f.StringVar(&o.fromPos, "from-pos", "", "start as world position x,y[,z]")
	f.StringVar(&o.toPos, "to-pos", "", "goal as world position x,y[,z]")
	f.StringArrayVar(&o.keepClear, "keep-clear", nil, "never place obstacles in the world box x0,y0:x1,y1 (repeatable)")
	f.Int64Var(&o.seed, "seed", def.Obstacles.Seed, "noise seed of the first obstacle layout")
	f.Float64Var(&o.threshold, "threshold", def.Obstacles.Threshold, "noise level above which a cell is blocked, in [-1, 1]")
	f.IntVar(&o.attempts, "attempts", def.Obstacles.Attempts, "obstacle layouts to try before giving up")
	f.BoolVar(&o.noObstacles, "no-obstacles", false, "search the grid without obstacles")
	f.BoolVar(&o.carve, "carve", false, "remove obstacle nodes instead of isolating them")
	f.StringVar(&o.metrics, "metrics", "", "write search and planner metrics to this file in Prometheus text format")
	cmd.MarkFlagsMutuallyExclusive("from", "from-pos")
	cmd.MarkFlagsMutuallyExclusive("to", "to-pos")
}

// resolveConfig merges defaults, the config file and explicitly set flags.
func (o *gridOpts) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, err
		}
	}

	f := cmd.Flags()
	resized := false
	if f.Changed("cols") {
		cfg.Grid.Cols, resized = o.cols, true
	}
	if f.Changed("rows") {
		cfg.Grid.Rows, resized = o.rows, true
	}
	if f.Changed("spacing") {
		cfg.Grid.Spacing = o.spacing
	}
	if resized && !f.Changed("to") && !f.Changed("to-pos") {
		cfg.Search.Goal = grid.Cell{Col: cfg.Grid.Cols - 1, Row: cfg.Grid.Rows - 1}
	}
	if o.from != "" {
		c, err := parseCell(o.from)
		if err != nil {
			return config.Config{}, errs.Wrap("", err, "--from")
		}
		cfg.Search.Start = c
	}
	if o.to != "" {
		c, err := parseCell(o.to)
		if err != nil {
			return config.Config{}, errs.Wrap("", err, "--to")
		}
		cfg.Search.Goal = c
	}
	if f.Changed("seed") {
		cfg.Obstacles.Seed = o.seed
	}
	if f.Changed("threshold") {
		cfg.Obstacles.Threshold = o.threshold
	}
	if f.Changed("attempts") {
		cfg.Obstacles.Attempts = o.attempts
	}
	if o.noObstacles {
		cfg.Obstacles.Enabled = false
	}
	if o.carve {
		cfg.Obstacles.Carve = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// scenario is a resolved configuration with its canonical grid.
type scenario struct {
	cfg     config.Config
	layout  grid.Layout
	base    *graph.Graph[grid.Cell]
	start   graph.ID
	goal    graph.ID
	keep    []graph.ID // cells inside --keep-clear boxes
	metrics string
}

// scenario resolves the configuration, builds the canonical grid and picks
// the endpoints. World positions are snapped to the nearest node, and
// --keep-clear boxes resolve to the cells they contain.
func (o *gridOpts) scenario(cmd *cobra.Command) (*scenario, error) {
	cfg, err := o.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	l := cfg.Layout()
	s := &scenario{cfg: cfg, layout: l, base: l.Graph(), metrics: o.metrics}

	if o.fromPos != "" || o.toPos != "" || len(o.keepClear) > 0 {
		idx := spatial.NewIndex(s.base)
		snap := func(flag, value string, cell *grid.Cell) error {
			if value == "" {
				return nil
			}
			p, err := parseVec(value)
			if err != nil {
				return errs.Wrap("", err, "--%s", flag)
			}
			n, ok := idx.Nearest(p)
			if !ok {
				return errs.New(errs.ErrCodeNodeNotFound, "--%s: no node near %v", flag, p)
			}
			*cell = n.Data
			return nil
		}
		if err := snap("from-pos", o.fromPos, &s.cfg.Search.Start); err != nil {
			return nil, err
		}
		if err := snap("to-pos", o.toPos, &s.cfg.Search.Goal); err != nil {
			return nil, err
		}
		for _, box := range o.keepClear {
			lo, hi, err := parseBox(box)
			if err != nil {
				return nil, errs.Wrap("", err, "--keep-clear")
			}
			for _, n := range idx.Within(lo, hi) {
				s.keep = append(s.keep, n.ID())
			}
		}
		slices.Sort(s.keep)
		s.keep = slices.Compact(s.keep)
	}

	s.start = l.IDOf(s.cfg.Search.Start.Col, s.cfg.Search.Start.Row)
	s.goal = l.IDOf(s.cfg.Search.Goal.Col, s.cfg.Search.Goal.Row)
	return s, nil
}

// request returns the planning request for the scenario.
func (s *scenario) request() planner.Request {
	req := s.cfg.Request(s.base)
	req.Keep = s.keep
	return req
}

// =============================================================================
// Parsing Helpers
// =============================================================================

// parseCell parses "col,row".
func parseCell(s string) (grid.Cell, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return grid.Cell{}, errs.New(errs.ErrCodeInvalidArgument, "cell must be col,row, got %q", s)
	}
	col, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	row, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return grid.Cell{}, errs.New(errs.ErrCodeInvalidArgument, "cell must be two integers, got %q", s)
	}
	return grid.Cell{Col: col, Row: row}, nil
}

// parseVec parses "x,y" or "x,y,z".
func parseVec(s string) (geom.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return geom.Vec3{}, errs.New(errs.ErrCodeInvalidArgument, "position must be x,y or x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Vec3{}, errs.New(errs.ErrCodeInvalidArgument, "position must be numeric, got %q", s)
		}
		v[i] = f
	}
	return geom.V(v[0], v[1], v[2]), nil
}

// parseBox parses "x0,y0[,z0]:x1,y1[,z1]" into its two corners.
func parseBox(s string) (lo, hi geom.Vec3, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return lo, hi, errs.New(errs.ErrCodeInvalidArgument, "box must be x0,y0:x1,y1, got %q", s)
	}
	if lo, err = parseVec(a); err != nil {
		return lo, hi, err
	}
	if hi, err = parseVec(b); err != nil {
		return lo, hi, err
	}
	return lo, hi, nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
