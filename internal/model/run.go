package model

import "time"

// RunStatus is the lifecycle state of one compile run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded compile run. Error is set only for failed runs;
// AreaCount only for complete ones.
type Run struct {
	ID         string
	SinkFormat string
	Status     RunStatus
	AreaCount  int
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
