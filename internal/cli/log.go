package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered grid.svg (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports search and planner events at debug level.
// charmbracelet loggers are safe for concurrent use, and so is logHooks.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l.WithPrefix("hooks")}
}

func (h *logHooks) OnSearchStart(start, goal int) {
	h.logger.Debug("search started", "start", start, "goal", goal)
}

func (h *logHooks) OnStep(depth, frontier, visited int, status string) {
	h.logger.Debug("search step", "depth", depth, "frontier", frontier, "visited", visited, "status", status)
}

func (h *logHooks) OnSearchComplete(status string, depth, visited int) {
	h.logger.Debug("search finished", "status", status, "depth", depth, "visited", visited)
}

func (h *logHooks) OnAttempt(_ context.Context, attempt int, seed int64, blocked int, err error) {
	if err != nil {
		h.logger.Debug("attempt failed", "attempt", attempt, "seed", seed, "blocked", blocked, "error", err)
		return
	}
	h.logger.Debug("attempt succeeded", "attempt", attempt, "seed", seed, "blocked", blocked)
}

func (h *logHooks) OnPlanComplete(_ context.Context, attempts, pathLen int, duration time.Duration, err error) {
	h.logger.Debug("plan finished", "attempts", attempts, "length", pathLen, "duration", duration, "error", err)
}
