// Package state persists conversion runs in SQLite.
//
// A run records one conversion of a workbook: its source, the content hash
// of the bytes that were converted, the resulting semantic model, its
// findings and the QA report. Runs are looked up by content hash so an
// unchanged workbook does not have to be converted twice.
package state

import (
	"errors"
	"time"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded conversion.
type Run struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	ContentHash string     `json:"content_hash"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

var (
	// ErrNotOpen is returned by every operation on a store that is not open.
	ErrNotOpen = errors.New("database not opened")
	// ErrNotFound is returned when a run or its artifacts do not exist.
	ErrNotFound = errors.New("not found")
)
