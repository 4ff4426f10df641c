// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Lookup outcomes.
const (
	SourceCache = "cache"
	SourceStore = "store"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// User metrics
	IncUserRegistered()
	IncUserUpdated()
	IncUserDeleted()
	IncUserLookup(source string) // source: "cache" or "store"

	// Account metrics
	IncAccountOpened()
	IncAccountUpdated()
	IncAccountClosed()

	// Event stream metrics
	IncEventPublished(status string) // status: "success" or "dropped"

	// Store metrics
	IncStoreError(op string)
	ObserveStoreDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
