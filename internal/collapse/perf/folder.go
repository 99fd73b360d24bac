package perf

import (
	"strconv"
	"strings"

	"github.com/perf-fold/pkg/collections"
	"github.com/perf-fold/pkg/model"
)

// foldResult is the outcome of folding one partition of the input.
type foldResult struct {
	counter       model.FoldedCounter
	event         string
	skippedBlocks int
	skippedFrames int
}

// labelPool recycles the per-block label slices; blocks are short-lived
// and the fold loop is hot.
var labelPool = collections.NewSlicePool[string](64)

// folder folds the sample blocks of a single partition into a counter.
// Each worker owns one folder; no state is shared between them.
type folder struct {
	opts *Options

	// event is the event name this folder accepts. When no explicit
	// filter is configured it latches onto the first event seen.
	event       string
	eventLocked bool

	warnedEvent bool

	result foldResult
}

func newFolder(opts *Options) *folder {
	f := &folder{opts: opts}
	f.result.counter = make(model.FoldedCounter)
	if opts.EventFilter != "" {
		f.event = opts.EventFilter
		f.eventLocked = true
	}
	return f
}

// fold consumes every block in the iterator.
func (f *folder) fold(it *blockIter) *foldResult {
	for {
		b, ok := it.next()
		if !ok {
			break
		}
		f.foldBlock(b)
	}
	f.result.event = f.event
	return &f.result
}

func (f *folder) foldBlock(b block) {
	rec, ok := parseHeader(b.header)
	if !ok {
		f.result.skippedBlocks++
		f.opts.Logger.WithField("header", b.header).Warn("skipping unparsable sample header")
		return
	}

	if !f.acceptEvent(rec.event) {
		f.result.skippedBlocks++
		return
	}

	labels := labelPool.Get()
	defer labelPool.Put(labels)

	*labels = append(*labels, f.processLabel(rec))

	// Frame lines arrive leaf first; walk them in reverse so the
	// folded key reads root to leaf.
	for i := len(b.frames) - 1; i >= 0; i-- {
		frame, ok := parseFrame(b.frames[i])
		if !ok {
			f.result.skippedFrames++
			f.opts.Logger.WithField("frame", b.frames[i]).Warn("skipping unparsable frame")
			continue
		}
		*labels = append(*labels, frameLabel(frame, f.opts))
	}

	key := f.foldedKey(*labels)
	f.result.counter.Add(key, 1)
}

// acceptEvent reports whether a sample for the given event should be
// folded. The first event observed fixes the accepted event for the
// rest of the partition.
func (f *folder) acceptEvent(event string) bool {
	if !f.eventLocked {
		if event != "" {
			f.event = event
			f.eventLocked = true
		}
		return true
	}
	if event == f.event || event == "" {
		return true
	}
	if !f.warnedEvent {
		f.warnedEvent = true
		f.opts.Logger.WithField("event", event).
			Warn("input contains multiple event types; suppressing all but the first")
	}
	return false
}

// processLabel builds the first element of the folded key from the
// process name and, when requested, its ids. Unknown ids render as "?".
func (f *folder) processLabel(rec rawRecord) string {
	comm := rec.comm
	switch {
	case f.opts.IncludeTID:
		pid := "?"
		if rec.hasPID {
			pid = strconv.Itoa(rec.pid)
		}
		tid := "?"
		if rec.hasTID {
			tid = strconv.Itoa(rec.tid)
		}
		return comm + "-" + pid + "/" + tid
	case f.opts.IncludePID:
		pid := "?"
		if rec.hasPID {
			pid = strconv.Itoa(rec.pid)
		}
		return comm + "-" + pid
	}
	return comm
}

// foldedKey joins the labels, applying the skip-after trim: everything
// on the caller side of the first root-side match is dropped, the
// process label included. Stacks without the marker pass through whole.
func (f *folder) foldedKey(labels []string) string {
	if f.opts.SkipAfter != "" {
		for i := 1; i < len(labels); i++ {
			name := strings.TrimSuffix(strings.TrimSuffix(labels[i], "_[k]"), "_[j]")
			if name == f.opts.SkipAfter {
				return strings.Join(labels[i:], ";")
			}
		}
	}
	return strings.Join(labels, ";")
}
