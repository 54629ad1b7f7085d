package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/pkg/config"
	"github.com/matzehuels/gridpath/pkg/export"
)

// trajectoryOpts holds the command-line flags for the trajectory command.
type trajectoryOpts struct {
	grid       gridOpts
	output     string  // output file, stdout by default
	format     string  // json or geojson
	resolution int     // sampling level: 2^resolution segments
	tolerance  float64 // Douglas-Peucker tolerance for GeoJSON, 0 disables
}

// trajectoryCommand creates the trajectory command, which samples the
// Bézier curve through a planned path.
func (c *CLI) trajectoryCommand() *cobra.Command {
	var opts trajectoryOpts
	def := config.Default().Trajectory

	cmd := &cobra.Command{
		Use:   "trajectory",
		Short: "Sample the smooth Bézier trajectory through a planned path",
		Long: `Trajectory plans a path and evaluates the Bézier curve whose control points
are the path's node positions. The curve is sampled at 2^resolution + 1 evenly
spaced parameters and written as JSON or as a GeoJSON FeatureCollection.`,
		Example: `  gridpath trajectory --resolution 6 -o path.geojson
  gridpath trajectory -f json --no-obstacles --from 0,0 --to 9,3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.grid.scenario(cmd)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("format") {
				s.cfg.Trajectory.Format = strings.ToLower(opts.format)
			}
			if f.Changed("resolution") {
				s.cfg.Trajectory.Resolution = opts.resolution
			}
			if f.Changed("tolerance") {
				s.cfg.Trajectory.Tolerance = opts.tolerance
			}
			if err := s.cfg.Validate(); err != nil {
				return err
			}
			return c.runTrajectory(cmd.Context(), s, opts.output)
		},
	}

	addGridFlags(cmd, &opts.grid)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", def.Format, "output format: json, geojson")
	cmd.Flags().IntVarP(&opts.resolution, "resolution", "r", def.Resolution, "sample 2^resolution segments")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", def.Tolerance, "simplify GeoJSON lines with this Douglas-Peucker tolerance")

	return cmd
}

func (c *CLI) runTrajectory(ctx context.Context, s *scenario, output string) error {
	res, err := c.plan(ctx, s)
	if err != nil {
		return err
	}
	data, err := export.EncodeTrajectory(ctx, res, s.layout, s.cfg.Trajectory)
	if err != nil {
		return err
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	if output != "" && output != "-" {
		printSuccess("Sampled %d points", (1<<s.cfg.Trajectory.Resolution)+1)
		printFile(output)
	}
	return nil
}
