// Package store records compile runs so operators can see what ran,
// when, and how it ended.
package store

import (
	"context"

	"github.com/cascadia-civic/crarisk/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus
	Limit  int
	Offset int
}

// Store is the run-log persistence interface.
type Store interface {
	CreateRun(ctx context.Context, sinkFormat string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, areaCount int) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
