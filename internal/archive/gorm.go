package archive

import (
	"bytes"
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/perf-fold/pkg/compression"
	"github.com/perf-fold/pkg/errors"
	"github.com/perf-fold/pkg/model"
	"github.com/perf-fold/pkg/writer"
)

// GormArchive implements Archive using GORM.
type GormArchive struct {
	db     *gorm.DB
	codec  compression.Codec
	writer *writer.FoldedWriter
}

// NewGormArchive creates an archive backed by the given database. The codec
// compresses profile blobs before they are stored.
func NewGormArchive(db *gorm.DB, codec compression.Codec) *GormArchive {
	return &GormArchive{db: db, codec: codec, writer: writer.NewFoldedWriter()}
}

// SaveRun stores the run summary and its compressed folded output in one
// transaction.
func (a *GormArchive) SaveRun(ctx context.Context, inputName string, summary *model.FoldSummary, counter model.FoldedCounter) (int64, error) {
	var buf bytes.Buffer
	if err := a.writer.Write(counter, &buf); err != nil {
		return 0, err
	}

	blob, err := a.codec.Compress(buf.Bytes())
	if err != nil {
		return 0, err
	}

	run := &Run{
		InputName:      inputName,
		Event:          summary.Event,
		DistinctStacks: summary.DistinctStacks,
		TotalSamples:   summary.TotalSamples,
		SkippedBlocks:  summary.SkippedBlocks,
		SkippedFrames:  summary.SkippedFrames,
		Workers:        summary.Workers,
		DurationMS:     summary.Duration.Milliseconds(),
	}

	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		profile := &Profile{RunID: run.ID, Codec: a.codec.Name(), Data: blob}
		return tx.Create(profile).Error
	})
	if err != nil {
		return 0, errors.Wrap(errors.CodeDatabaseError, "failed to save fold run", err)
	}

	return run.ID, nil
}

// GetRun retrieves a run row by id.
func (a *GormArchive) GetRun(ctx context.Context, id int64) (*Run, error) {
	var run Run

	err := a.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeDatabaseError, "fold run not found")
		}
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to get fold run", err)
	}

	return &run, nil
}

// GetProfile retrieves the folded output of a run and parses it back into
// a counter. The codec is detected from the stored blob, so profiles
// written under a different compression setting stay readable.
func (a *GormArchive) GetProfile(ctx context.Context, runID int64) (model.FoldedCounter, error) {
	var profile Profile

	err := a.db.WithContext(ctx).Where("run_id = ?", runID).First(&profile).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeDatabaseError, "fold profile not found")
		}
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to get fold profile", err)
	}

	codec, err := compression.Detect(profile.Data)
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decompress(profile.Data)
	if err != nil {
		return nil, err
	}

	counter, err := model.ParseFolded(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidInput, "stored profile is corrupt", err)
	}
	return counter, nil
}

// ListRuns returns the most recent runs, newest first.
func (a *GormArchive) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	var runs []*Run

	err := a.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to list fold runs", err)
	}

	return runs, nil
}

// DeleteRun removes a run and its profile.
func (a *GormArchive) DeleteRun(ctx context.Context, id int64) error {
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&Profile{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&Run{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeDatabaseError, "fold run not found")
		}
		return errors.Wrap(errors.CodeDatabaseError, "failed to delete fold run", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (a *GormArchive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
