package archive

import (
	"context"

	"github.com/perf-fold/pkg/model"
)

// Archive defines the interface for persisting fold runs.
type Archive interface {
	// SaveRun stores a run summary together with its folded output and
	// returns the new run id.
	SaveRun(ctx context.Context, inputName string, summary *model.FoldSummary, counter model.FoldedCounter) (int64, error)

	// GetRun retrieves a run row by id.
	GetRun(ctx context.Context, id int64) (*Run, error)

	// GetProfile retrieves and decompresses the folded output of a run.
	GetProfile(ctx context.Context, runID int64) (model.FoldedCounter, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// DeleteRun removes a run and its profile.
	DeleteRun(ctx context.Context, id int64) error

	// Close releases the underlying database connection.
	Close() error
}
