package perf

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/perf-fold/internal/collapse"
	"github.com/perf-fold/pkg/errors"
	"github.com/perf-fold/pkg/model"
	"github.com/perf-fold/pkg/parallel"
	"github.com/perf-fold/pkg/telemetry"
	"github.com/perf-fold/pkg/writer"
)

// Folder collapses `perf script` traces into folded stack lines. It is
// safe for concurrent use; per-run state lives on the stack of Collapse.
type Folder struct {
	opts   Options
	writer *writer.FoldedWriter
}

var _ collapse.Collapser = (*Folder)(nil)

// New builds a Folder from the given options. A nil opts selects the
// defaults.
func New(opts *Options) (*Folder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if err := o.normalize(); err != nil {
		return nil, err
	}
	return &Folder{opts: o, writer: writer.NewFoldedWriter()}, nil
}

// Name returns the collapser name.
func (f *Folder) Name() string {
	return "perf"
}

// SupportedFormats lists the input format names this collapser handles.
func (f *Folder) SupportedFormats() []string {
	return []string{"perf", "perf-script"}
}

// Collapse reads an entire trace from r, folds it with the configured
// number of workers and writes the sorted folded lines to w.
func (f *Folder) Collapse(ctx context.Context, r io.Reader, w io.Writer) (*model.FoldSummary, error) {
	if r == nil {
		return nil, collapse.ErrNoInput
	}

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "perf.Collapse")
	defer span.End()

	start := time.Now()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.CodeIOError, "failed to read perf script input", err)
	}

	counter, summary, err := f.fold(ctx, data)
	if err != nil {
		return nil, err
	}

	if err := f.writer.Write(counter, w); err != nil {
		return nil, err
	}

	summary.DistinctStacks = len(counter)
	summary.TotalSamples = counter.Total()
	summary.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String("fold.event", summary.Event),
		attribute.Int("fold.distinct_stacks", summary.DistinctStacks),
		attribute.Int64("fold.total_samples", int64(summary.TotalSamples)),
		attribute.Int("fold.workers", summary.Workers),
	)

	return summary, nil
}

// CollapseToCounter folds a trace without serializing it, for callers
// that post-process the counter themselves.
func (f *Folder) CollapseToCounter(ctx context.Context, r io.Reader) (model.FoldedCounter, *model.FoldSummary, error) {
	if r == nil {
		return nil, nil, collapse.ErrNoInput
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeIOError, "failed to read perf script input", err)
	}
	counter, summary, err := f.fold(ctx, data)
	if err != nil {
		return nil, nil, err
	}
	summary.DistinctStacks = len(counter)
	summary.TotalSamples = counter.Total()
	return counter, summary, nil
}

func (f *Folder) fold(ctx context.Context, data []byte) (model.FoldedCounter, *model.FoldSummary, error) {
	summary := &model.FoldSummary{}
	counter := model.NewFoldedCounter()

	ranges := alignedRanges(data, f.opts.NWorkers)
	summary.Workers = len(ranges)
	if len(ranges) == 0 {
		return counter, summary, nil
	}

	pool := parallel.DefaultPoolConfig().WithWorkers(f.opts.NWorkers)

	merged, err := parallel.MapReduce(ctx, ranges, pool,
		func(ctx context.Context, r byteRange) (*foldResult, error) {
			fl := newFolder(&f.opts)
			return fl.fold(newBlockIter(data, r)), nil
		},
		func(acc model.FoldedCounter, res *foldResult) model.FoldedCounter {
			if acc == nil {
				acc = model.NewFoldedCounter()
			}
			acc.Merge(res.counter)
			summary.Merge(model.FoldSummary{
				Event:         res.event,
				SkippedBlocks: res.skippedBlocks,
				SkippedFrames: res.skippedFrames,
			})
			return acc
		})
	if err != nil {
		return nil, nil, err
	}
	if merged != nil {
		counter = merged
	}

	return counter, summary, nil
}
