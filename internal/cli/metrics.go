package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/observability"
	"github.com/matzehuels/gridpath/pkg/planner"
)

// plan runs the planner for s. With --metrics, search and planner events are
// also recorded and written to the metrics file, whether or not a path was
// found.
func (c *CLI) plan(ctx context.Context, s *scenario) (*planner.Result, error) {
	if s.metrics == "" {
		return c.newPlanner().Plan(ctx, s.request())
	}

	reg := prometheus.NewRegistry()
	defer recordMetrics(observability.NewMetrics(reg))()

	res, err := c.newPlanner().Plan(ctx, s.request())
	if werr := prometheus.WriteToTextfile(s.metrics, reg); werr != nil {
		werr = errs.Wrap(errs.ErrCodeInternal, werr, "write metrics")
		if err == nil {
			return nil, werr
		}
		c.Logger.Warn("metrics not written", "error", werr)
		return nil, err
	}
	c.Logger.Debug("metrics written", "path", s.metrics)
	return res, err
}

// recordMetrics adds m to the installed hooks and returns a function that
// restores the previous ones.
func recordMetrics(m *observability.Metrics) (restore func()) {
	search, plan := observability.Search(), observability.Planner()
	observability.SetSearchHooks(observability.TeeSearch(search, m))
	observability.SetPlannerHooks(observability.TeePlanner(plan, m))
	return func() {
		observability.SetSearchHooks(search)
		observability.SetPlannerHooks(plan)
	}
}
