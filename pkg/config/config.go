// Package config loads gridpath settings from TOML files.
//
// Every field has a default, so a file only needs the keys it changes:
//
//	[grid]
//	cols = 30
//	rows = 20
//
//	[obstacles]
//	seed = 7
//	threshold = 0.2
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/planner"
)

// Trajectory output formats.
const (
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
)

// TrajectoryFormats lists the accepted trajectory formats.
var TrajectoryFormats = []string{FormatJSON, FormatGeoJSON}

// Config is the complete gridpath configuration.
type Config struct {
	Grid       Grid       `json:"grid" toml:"grid"`
	Search     Search     `json:"search" toml:"search"`
	Obstacles  Obstacles  `json:"obstacles" toml:"obstacles"`
	Trajectory Trajectory `json:"trajectory" toml:"trajectory"`
}

// Grid sets the dimensions of the canonical grid.
type Grid struct {
	Cols    int     `json:"cols" toml:"cols"`
	Rows    int     `json:"rows" toml:"rows"`
	Spacing float64 `json:"spacing" toml:"spacing"`
}

// Search sets the endpoints of the path search.
type Search struct {
	Start grid.Cell `json:"start" toml:"start"`
	Goal  grid.Cell `json:"goal" toml:"goal"`
}

// Obstacles controls noise obstacle generation.
type Obstacles struct {
	Enabled   bool    `json:"enabled" toml:"enabled"`
	Seed      int64   `json:"seed" toml:"seed"`
	Threshold float64 `json:"threshold" toml:"threshold"`
	Attempts  int     `json:"attempts" toml:"attempts"`
	Carve     bool    `json:"carve" toml:"carve"`
}

// Trajectory controls curve sampling and output.
type Trajectory struct {
	Resolution int     `json:"resolution" toml:"resolution"`
	Tolerance  float64 `json:"tolerance" toml:"tolerance"`
	Format     string  `json:"format" toml:"format"`
}

// Default returns the built-in configuration: a 20×20 grid searched corner
// to corner with noise obstacles.
func Default() Config {
	return Config{
		Grid: Grid{Cols: 20, Rows: 20, Spacing: 1},
		Search: Search{
			Start: grid.Cell{Col: 0, Row: 0},
			Goal:  grid.Cell{Col: 19, Row: 19},
		},
		Obstacles: Obstacles{
			Enabled:   true,
			Seed:      planner.DefaultSeed,
			Threshold: planner.DefaultThreshold,
			Attempts:  planner.DefaultAttempts,
		},
		Trajectory: Trajectory{Resolution: 5, Format: FormatGeoJSON},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "open config")
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return Config{}, errs.Wrap("", err, "%s", path)
	}
	return cfg, nil
}

// Read decodes TOML from r over the defaults and validates the result.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode config")
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	g := c.Grid
	if err := errs.ValidateGridSize(g.Cols, g.Rows, g.Spacing); err != nil {
		return err
	}
	if err := errs.ValidateCell("start", c.Search.Start.Col, c.Search.Start.Row, g.Cols, g.Rows); err != nil {
		return err
	}
	if err := errs.ValidateCell("goal", c.Search.Goal.Col, c.Search.Goal.Row, g.Cols, g.Rows); err != nil {
		return err
	}
	if err := errs.ValidateThreshold(c.Obstacles.Threshold); err != nil {
		return err
	}
	if err := errs.ValidateAttempts(c.Obstacles.Attempts); err != nil {
		return err
	}
	if err := errs.ValidateResolution(c.Trajectory.Resolution); err != nil {
		return err
	}
	if c.Trajectory.Tolerance < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "simplify tolerance cannot be negative, got %v", c.Trajectory.Tolerance)
	}
	return errs.ValidateFormat(c.Trajectory.Format, TrajectoryFormats...)
}

// Layout returns the grid layout described by the configuration.
func (c Config) Layout() grid.Layout {
	return grid.Layout{Cols: c.Grid.Cols, Rows: c.Grid.Rows, Spacing: c.Grid.Spacing}
}

// Request returns the planning request for the configuration. base must be
// the canonical grid of [Config.Layout]; the planner never modifies it.
func (c Config) Request(base *graph.Graph[grid.Cell]) planner.Request {
	l := c.Layout()
	return planner.Request{
		Base:        base,
		Layout:      l,
		Start:       l.IDOf(c.Search.Start.Col, c.Search.Start.Row),
		Goal:        l.IDOf(c.Search.Goal.Col, c.Search.Goal.Row),
		Seed:        c.Obstacles.Seed,
		Threshold:   c.Obstacles.Threshold,
		Attempts:    c.Obstacles.Attempts,
		Carve:       c.Obstacles.Carve,
		NoObstacles: !c.Obstacles.Enabled,
	}
}
