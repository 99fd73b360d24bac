// Package archive persists fold runs and their folded output, so repeated
// conversions of the same workload can be compared later.
package archive

import (
	"time"

	"github.com/perf-fold/pkg/model"
)

// Run represents the fold_runs table: one row per completed fold.
type Run struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	InputName      string    `gorm:"column:input_name;type:varchar(512)"`
	Event          string    `gorm:"column:event;type:varchar(128)"`
	DistinctStacks int       `gorm:"column:distinct_stacks"`
	TotalSamples   uint64    `gorm:"column:total_samples"`
	SkippedBlocks  int       `gorm:"column:skipped_blocks"`
	SkippedFrames  int       `gorm:"column:skipped_frames"`
	Workers        int       `gorm:"column:workers"`
	DurationMS     int64     `gorm:"column:duration_ms"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for Run.
func (Run) TableName() string {
	return "fold_runs"
}

// Summary converts the row back into a FoldSummary.
func (r *Run) Summary() *model.FoldSummary {
	return &model.FoldSummary{
		Event:          r.Event,
		DistinctStacks: r.DistinctStacks,
		TotalSamples:   r.TotalSamples,
		SkippedBlocks:  r.SkippedBlocks,
		SkippedFrames:  r.SkippedFrames,
		Workers:        r.Workers,
		Duration:       time.Duration(r.DurationMS) * time.Millisecond,
	}
}

// Profile represents the fold_profiles table: the compressed folded output
// of one run.
type Profile struct {
	ID    int64  `gorm:"column:id;primaryKey;autoIncrement"`
	RunID int64  `gorm:"column:run_id;uniqueIndex"`
	Codec string `gorm:"column:codec;type:varchar(16)"`
	Data  []byte `gorm:"column:data;type:blob"`
}

// TableName returns the table name for Profile.
func (Profile) TableName() string {
	return "fold_profiles"
}
