package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/pkg/cache"
	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/export"
)

// renderTTL bounds how long rendered artifacts are reused.
const renderTTL = 7 * 24 * time.Hour

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	grid    gridOpts
	output  string  // output file path; the extension picks the format unless --format is set
	format  string  // dot, svg, png or pdf
	scale   float64 // inches per world unit
	labels  bool    // print node IDs
	dpi     float64 // PNG scale factor
	noCache bool    // always run Graphviz
}

// renderCommand creates the render command, which draws a planned path
// with Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{output: "gridpath.svg", scale: export.DefaultScale, dpi: 2}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the grid, its obstacles and the planned path with Graphviz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := opts.format
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(opts.output), ".")
			}
			format = strings.ToLower(format)
			if err := errs.ValidateFormat(format, export.RenderFormats...); err != nil {
				return err
			}
			s, err := opts.grid.scenario(cmd)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), s, format, opts)
		},
	}

	addGridFlags(cmd, &opts.grid)
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file (- for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, png, pdf (default: from --output)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "drawing size in inches per world unit")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "print node IDs")
	cmd.Flags().Float64Var(&opts.dpi, "png-scale", opts.dpi, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not reuse previously rendered output")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, s *scenario, format string, opts renderOpts) error {
	res, err := c.plan(ctx, s)
	if err != nil {
		return err
	}

	dot := export.ToDOT(res.Graph, export.Highlight{
		Path:    export.PathIDs(res.Path),
		Blocked: res.Blocked,
		Scale:   opts.scale,
		Labels:  opts.labels,
	})

	store, err := c.openCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	prog := newProgress(c.Logger)
	data, err := c.renderCached(ctx, store, dot, format, opts.dpi)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.output, data); err != nil {
		return err
	}
	if opts.output != "" && opts.output != "-" {
		prog.done(fmt.Sprintf("Rendered %s", opts.output))
		printFile(opts.output)
	}
	return nil
}

// renderCached returns the rendered artifact from store when the same DOT
// source was rendered to format before, and renders and stores it otherwise.
func (c *CLI) renderCached(ctx context.Context, store cache.Cache, dot, format string, pngScale float64) ([]byte, error) {
	if format == export.FormatDOT {
		return []byte(dot), nil
	}

	key := cache.Key(format, dot, pngScale)
	if data, ok, err := store.Get(ctx, key); err != nil {
		c.Logger.Warn("cache read failed", "error", err)
	} else if ok {
		c.Logger.Debug("cache hit", "format", format)
		return data, nil
	}

	data, err := renderDOT(ctx, dot, format, pngScale)
	if err != nil {
		return nil, err
	}
	if err := store.Set(ctx, key, data, renderTTL); err != nil {
		c.Logger.Warn("cache write failed", "error", err)
	}
	return data, nil
}

// renderDOT converts a DOT document to the requested format.
func renderDOT(ctx context.Context, dot, format string, pngScale float64) ([]byte, error) {
	var data []byte
	err := withSpinner(ctx, os.Stderr, "Rendering with Graphviz...", func() error {
		var err error
		data, err = export.Render(ctx, dot, format, pngScale)
		return err
	})
	return data, err
}
