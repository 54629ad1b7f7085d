package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errs "github.com/matzehuels/gridpath/pkg/errors"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

const namespace = "gridpath"

// Attempt outcomes used as the "outcome" label of
// gridpath_planner_attempts_total.
const (
	OutcomeFound  = "found"
	OutcomeNoPath = "no_path"
	OutcomeError  = "error"
)

// Metrics records search and planner events as Prometheus metrics. It
// implements both [SearchHooks] and [PlannerHooks].
type Metrics struct {
	searchesStarted   prometheus.Counter
	searchesCompleted *prometheus.CounterVec
	searchSteps       prometheus.Counter
	searchDepth       prometheus.Histogram
	searchVisited     prometheus.Histogram

	attempts     *prometheus.CounterVec
	obstacles    prometheus.Histogram
	plans        *prometheus.CounterVec
	planDuration prometheus.Histogram
	pathLength   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// Registering twice with the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	sizes := prometheus.ExponentialBuckets(1, 2, 12)

	return &Metrics{
		searchesStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "started_total",
			Help:      "Searches created",
		}),
		searchesCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "completed_total",
			Help:      "Searches that reached a terminal status",
		}, []string{"status"}),
		searchSteps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "steps_total",
			Help:      "Frontier expansions",
		}),
		searchDepth: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "depth",
			Help:      "Expansions until a search terminated",
			Buckets:   sizes,
		}),
		searchVisited: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "visited_nodes",
			Help:      "Nodes discovered until a search terminated",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "attempts_total",
			Help:      "Obstacle layouts searched, by outcome",
		}, []string{"outcome"}),
		obstacles: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "obstacles",
			Help:      "Obstacle cells placed per attempt",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		plans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "plans_total",
			Help:      "Planning runs, by outcome",
		}, []string{"outcome"}),
		planDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "duration_seconds",
			Help:      "Wall time of planning runs",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		pathLength: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "path_nodes",
			Help:      "Nodes on the selected path",
			Buckets:   sizes,
		}),
	}
}

func (m *Metrics) OnSearchStart(int, int) { m.searchesStarted.Inc() }

func (m *Metrics) OnStep(int, int, int, string) { m.searchSteps.Inc() }

func (m *Metrics) OnSearchComplete(status string, depth, visited int) {
	m.searchesCompleted.WithLabelValues(status).Inc()
	m.searchDepth.Observe(float64(depth))
	m.searchVisited.Observe(float64(visited))
}

func (m *Metrics) OnAttempt(_ context.Context, _ int, _ int64, blocked int, err error) {
	m.attempts.WithLabelValues(Outcome(err)).Inc()
	m.obstacles.Observe(float64(blocked))
}

func (m *Metrics) OnPlanComplete(_ context.Context, _ int, pathLen int, d time.Duration, err error) {
	m.plans.WithLabelValues(Outcome(err)).Inc()
	m.planDuration.Observe(d.Seconds())
	if err == nil {
		m.pathLength.Observe(float64(pathLen))
	}
}

// Outcome classifies an attempt or plan error for metric labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeFound
	case errs.Is(err, errs.ErrCodeNoPath):
		return OutcomeNoPath
	default:
		return OutcomeError
	}
}

// =============================================================================
// Fan-out
// =============================================================================

// TeeSearch returns hooks that forward every event to each of hs in order.
func TeeSearch(hs ...SearchHooks) SearchHooks { return searchTee(hs) }

// TeePlanner returns hooks that forward every event to each of hs in order.
func TeePlanner(hs ...PlannerHooks) PlannerHooks { return plannerTee(hs) }

type searchTee []SearchHooks

func (t searchTee) OnSearchStart(start, goal int) {
	for _, h := range t {
		h.OnSearchStart(start, goal)
	}
}

func (t searchTee) OnStep(depth, frontier, visited int, status string) {
	for _, h := range t {
		h.OnStep(depth, frontier, visited, status)
	}
}

func (t searchTee) OnSearchComplete(status string, depth, visited int) {
	for _, h := range t {
		h.OnSearchComplete(status, depth, visited)
	}
}

type plannerTee []PlannerHooks

func (t plannerTee) OnAttempt(ctx context.Context, attempt int, seed int64, blocked int, err error) {
	for _, h := range t {
		h.OnAttempt(ctx, attempt, seed, blocked, err)
	}
}

func (t plannerTee) OnPlanComplete(ctx context.Context, attempts, pathLen int, d time.Duration, err error) {
	for _, h := range t {
		h.OnPlanComplete(ctx, attempts, pathLen, d, err)
	}
}

var (
	_ SearchHooks  = (*Metrics)(nil)
	_ PlannerHooks = (*Metrics)(nil)
)
