// Package notify publishes finished hook invocations to a message bus so CI
// dashboards and deploy bots can follow cljs builds.
package notify

import (
	"context"
	"time"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "slscljs.builds"

// BuildEvent is the JSON payload published per invocation.
type BuildEvent struct {
	InvocationID   string    `json:"invocation_id"`
	Event          string    `json:"event"`
	Service        string    `json:"service"`
	Function       string    `json:"function,omitempty"`
	Artifact       string    `json:"artifact"`
	Revision       string    `json:"revision,omitempty"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	FunctionsBuilt int       `json:"functions_built"`
	DurationMS     int64     `json:"duration_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// Notifier delivers build events.
type Notifier interface {
	Publish(ctx context.Context, ev BuildEvent) error
	Close() error
}

// NoopNotifier drops every event.
type NoopNotifier struct{}

func (NoopNotifier) Publish(context.Context, BuildEvent) error { return nil }
func (NoopNotifier) Close() error                              { return nil }
