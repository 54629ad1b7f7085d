// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about path searches and planning runs.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the search and curve packages free of logging and metrics code
//   - Allows different backends (a CLI logger, Prometheus, OpenTelemetry, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSearchHooks(&mySearchHooks{})
//	    observability.SetPlannerHooks(&myPlannerHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Search().OnSearchStart(start, goal)
//	// ... expand frontier ...
//	observability.Search().OnStep(depth, frontier, visited, status)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Search Hooks
// =============================================================================

// SearchHooks receives events from stepwise path searches.
//
// Search methods take no context: a search step is synchronous and never
// blocks. Node IDs are reported as plain ints so this package stays
// independent of the graph package.
type SearchHooks interface {
	// OnSearchStart is called when a search is created.
	OnSearchStart(start, goal int)

	// OnStep is called after every frontier expansion.
	OnStep(depth, frontier, visited int, status string)

	// OnSearchComplete is called once, when a search first reaches a
	// terminal status.
	OnSearchComplete(status string, depth, visited int)
}

// =============================================================================
// Planner Hooks
// =============================================================================

// PlannerHooks receives events from obstacle-layout planning runs.
type PlannerHooks interface {
	// OnAttempt records one obstacle layout being searched.
	OnAttempt(ctx context.Context, attempt int, seed int64, blocked int, err error)

	// OnPlanComplete records the end of a planning run.
	OnPlanComplete(ctx context.Context, attempts, pathLen int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnSearchStart(int, int)            {}
func (NoopSearchHooks) OnStep(int, int, int, string)      {}
func (NoopSearchHooks) OnSearchComplete(string, int, int) {}

// NoopPlannerHooks is a no-op implementation of PlannerHooks.
type NoopPlannerHooks struct{}

func (NoopPlannerHooks) OnAttempt(context.Context, int, int64, int, error) {}
func (NoopPlannerHooks) OnPlanComplete(context.Context, int, int, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	searchHooks  SearchHooks  = NoopSearchHooks{}
	plannerHooks PlannerHooks = NoopPlannerHooks{}
	hooksMu      sync.RWMutex
)

// SetSearchHooks registers custom search hooks.
// This should be called once at application startup before any search runs.
func SetSearchHooks(h SearchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		searchHooks = h
	}
}

// SetPlannerHooks registers custom planner hooks.
// This should be called once at application startup before any planning runs.
func SetPlannerHooks(h PlannerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		plannerHooks = h
	}
}

// Search returns the registered search hooks.
func Search() SearchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return searchHooks
}

// Planner returns the registered planner hooks.
func Planner() PlannerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return plannerHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	searchHooks = NoopSearchHooks{}
	plannerHooks = NoopPlannerHooks{}
}
