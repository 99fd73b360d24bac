// Package perf folds `perf script` output into folded stack lines.
//
// A trace is a sequence of record blocks: one header line naming the
// sampled process, its pid/tid, cpu, timestamp and event type, followed by
// zero or more indented frame lines, terminated by a blank line. Folding
// groups records by identical call stack and counts how often each stack
// was sampled.
package perf

import (
	"github.com/perf-fold/pkg/errors"
	"github.com/perf-fold/pkg/utils"
)

// Options holds configuration for the perf collapser.
type Options struct {
	// IncludeAddrs renders the raw address for frames whose symbol did not
	// resolve instead of the [unknown] sentinel.
	IncludeAddrs bool

	// IncludePID appends `-pid` to the process label.
	IncludePID bool

	// IncludeTID appends `-pid/tid` to the process label.
	IncludeTID bool

	// AnnotateKernel appends `_[k]` to labels of kernel frames.
	AnnotateKernel bool

	// AnnotateJIT appends `_[j]` to labels of JIT-compiled frames.
	AnnotateJIT bool

	// EventFilter restricts folding to records of one event type. When
	// empty, each worker fixes the filter to the first event it sees in
	// its own input range.
	EventFilter string

	// SkipAfter names a marker function. Frames on the caller side of the
	// first root-side match are discarded; stacks without the marker pass
	// through unchanged.
	SkipAfter string

	// NWorkers is the number of parallel workers. Must be at least 1;
	// callers derive their default from the logical CPU count.
	NWorkers int

	// Classifier decides whether a frame originates from kernel or JIT
	// space. Nil selects the default classification rule.
	Classifier FrameClassifier

	// Logger receives parse warnings. Nil silences them.
	Logger utils.Logger
}

// DefaultOptions returns options folding with a single worker and no
// annotations, matching plain stackcollapse behavior.
func DefaultOptions() *Options {
	return &Options{
		NWorkers:   1,
		Classifier: DefaultClassifier(),
		Logger:     &utils.NullLogger{},
	}
}

// normalize fills nil collaborators and validates the worker count.
func (o *Options) normalize() error {
	if o.NWorkers < 1 {
		return errors.New(errors.CodeConfigError, "worker count must be at least 1")
	}
	if o.Classifier == nil {
		o.Classifier = DefaultClassifier()
	}
	if o.Logger == nil {
		o.Logger = &utils.NullLogger{}
	}
	return nil
}
