// Package history keeps a local ledger of hook invocations so operators can see
// which artifact each packaging run produced and why a build failed.
package history

import (
	"context"
	"time"
)

// Status values recorded for an invocation.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Entry is one recorded hook invocation.
type Entry struct {
	ID             int64
	InvocationID   string
	Event          string
	Service        string
	Function       string // single-function filter, empty for whole-service builds
	Artifact       string
	Revision       string // git HEAD of the service root, empty outside a repository
	Status         string
	Error          string
	FunctionsBuilt int
	StartedAt      time.Time
	Duration       time.Duration
}

// Store persists entries.
type Store interface {
	Append(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// NoopStore discards entries (default when history is disabled).
type NoopStore struct{}

func (NoopStore) Append(context.Context, Entry) error          { return nil }
func (NoopStore) Recent(context.Context, int) ([]Entry, error) { return nil, nil }
func (NoopStore) Close() error                                 { return nil }
