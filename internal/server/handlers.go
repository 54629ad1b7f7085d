package server

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/gridpath/pkg/buildinfo"
	"github.com/matzehuels/gridpath/pkg/cache"
	"github.com/matzehuels/gridpath/pkg/config"
	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/export"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/planner"
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 20

// autoGoal marks a goal left unset by the request; it becomes the corner
// opposite the origin of the requested grid.
var autoGoal = grid.Cell{Col: -1, Row: -1}

var contentTypes = map[string]string{
	config.FormatJSON:    "application/json",
	config.FormatGeoJSON: "application/geo+json",
	export.FormatDOT:     "text/vnd.graphviz",
	export.FormatSVG:     "image/svg+xml",
	export.FormatPNG:     "image/png",
	export.FormatPDF:     "application/pdf",
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) defaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.Default())
}

// plan handles POST /api/v1/plan. The format query parameter overrides
// the trajectory format of the body.
func (s *Server) plan(w http.ResponseWriter, r *http.Request) {
	cfg, err := decodeConfig(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if f := r.URL.Query().Get("format"); f != "" {
		cfg.Trajectory.Format = strings.ToLower(f)
		if err := errs.ValidateFormat(cfg.Trajectory.Format, config.TrajectoryFormats...); err != nil {
			writeError(w, err)
			return
		}
	}

	res, err := s.run(r.Context(), cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := export.EncodeTrajectory(r.Context(), res, cfg.Layout(), cfg.Trajectory)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Run-ID", res.RunID)
	write(w, contentTypes[cfg.Trajectory.Format], data)
}

// render handles POST /api/v1/render. Query parameters:
//
//	format     dot, svg, png or pdf (default svg)
//	scale      inches per world unit
//	png_scale  PNG resolution multiplier
//	labels     print node IDs when present
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.ToLower(cmp.Or(q.Get("format"), export.FormatSVG))
	if err := errs.ValidateFormat(format, export.RenderFormats...); err != nil {
		writeError(w, err)
		return
	}
	scale, err := floatParam(q.Get("scale"), export.DefaultScale)
	if err != nil {
		writeError(w, errs.Wrap("", err, "scale"))
		return
	}
	pngScale, err := floatParam(q.Get("png_scale"), 2)
	if err != nil {
		writeError(w, errs.Wrap("", err, "png_scale"))
		return
	}

	cfg, err := decodeConfig(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.run(r.Context(), cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	dot := export.ToDOT(res.Graph, export.Highlight{
		Path:    export.PathIDs(res.Path),
		Blocked: res.Blocked,
		Scale:   scale,
		Labels:  q.Has("labels"),
	})
	data, err := s.renderCached(r.Context(), dot, format, pngScale)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Run-ID", res.RunID)
	write(w, contentTypes[format], data)
}

func (s *Server) run(ctx context.Context, cfg config.Config) (*planner.Result, error) {
	return s.planner.Plan(ctx, cfg.Request(cfg.Layout().Graph()))
}

// renderCached serves drawings of the same DOT source from the cache.
// Cache failures are logged and otherwise ignored.
func (s *Server) renderCached(ctx context.Context, dot, format string, pngScale float64) ([]byte, error) {
	if format == export.FormatDOT {
		return []byte(dot), nil
	}

	key := cache.Key(format, dot, pngScale)
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", "error", err)
	} else if ok {
		return data, nil
	}

	data, err := export.Render(ctx, dot, format, pngScale)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, data, renderTTL); err != nil {
		s.logger.Warn("cache write failed", "error", err)
	}
	return data, nil
}

// decodeConfig reads a JSON configuration over the defaults. An empty body
// yields the defaults. Unknown fields are rejected.
func decodeConfig(r *http.Request) (config.Config, error) {
	cfg := config.Default()
	cfg.Search.Goal = autoGoal

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return config.Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode request body")
	}

	if cfg.Search.Goal == autoGoal {
		cfg.Search.Goal = grid.Cell{Col: cfg.Grid.Cols - 1, Row: cfg.Grid.Rows - 1}
	}
	cfg.Trajectory.Format = strings.ToLower(cfg.Trajectory.Format)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func floatParam(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, errs.New(errs.ErrCodeInvalidArgument, "want a positive number, got %q", s)
	}
	return v, nil
}
