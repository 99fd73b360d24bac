package perf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perf-fold/pkg/utils"
)

func foldInput(t *testing.T, opts *Options, input string) *foldResult {
	t.Helper()
	require.NoError(t, opts.normalize())

	data := []byte(input)
	f := newFolder(opts)
	return f.fold(newBlockIter(data, byteRange{start: 0, end: len(data)}))
}

func TestFolder_ProcessLabel(t *testing.T) {
	rec := rawRecord{comm: "app", pid: 100, tid: 200, hasPID: true, hasTID: true}

	tests := []struct {
		name string
		set  func(*Options)
		want string
	}{
		{"plain", func(o *Options) {}, "app"},
		{"pid", func(o *Options) { o.IncludePID = true }, "app-100"},
		{"tid", func(o *Options) { o.IncludeTID = true }, "app-100/200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.set(opts)
			f := newFolder(opts)
			assert.Equal(t, tt.want, f.processLabel(rec))
		})
	}
}

func TestFolder_ProcessLabel_UnknownPid(t *testing.T) {
	rec := rawRecord{comm: "swapper", tid: 0, hasTID: true}

	opts := DefaultOptions()
	opts.IncludeTID = true
	f := newFolder(opts)
	assert.Equal(t, "swapper-?/0", f.processLabel(rec))

	opts = DefaultOptions()
	opts.IncludePID = true
	f = newFolder(opts)
	assert.Equal(t, "swapper-?", f.processLabel(rec))
}

func TestFolder_Fold_CountsIdenticalStacks(t *testing.T) {
	input := "app 100/100 1.0: 1 cycles:\n\t401000 main+0x1 (/usr/bin/app)\n\n" +
		"app 100/100 1.1: 1 cycles:\n\t401000 main+0x1 (/usr/bin/app)\n\n"

	res := foldInput(t, DefaultOptions(), input)

	assert.Equal(t, "cycles", res.event)
	assert.Equal(t, uint64(2), res.counter["app;main"])
	assert.Equal(t, uint64(2), res.counter.Total())
}

func TestFolder_Fold_FramesRootToLeaf(t *testing.T) {
	input := "app 100/100 1.0: 1 cycles:\n" +
		"\t401300 leaf+0x3 (/usr/bin/app)\n" +
		"\t401200 mid+0x2 (/usr/bin/app)\n" +
		"\t401000 root+0x1 (/usr/bin/app)\n\n"

	res := foldInput(t, DefaultOptions(), input)

	assert.Equal(t, uint64(1), res.counter["app;root;mid;leaf"])
}

func TestFolder_Fold_SkipAfter(t *testing.T) {
	input := "app 100/100 1.0: 1 cycles:\n" +
		"\t401300 leaf+0x3 (/usr/bin/app)\n" +
		"\t401200 foo+0x2 (/usr/bin/app)\n" +
		"\t401000 root+0x1 (/usr/bin/app)\n\n"

	opts := DefaultOptions()
	opts.SkipAfter = "foo"
	res := foldInput(t, opts, input)

	assert.Equal(t, uint64(1), res.counter["foo;leaf"])
}

func TestFolder_Fold_SkipAfterAbsentIsNoOp(t *testing.T) {
	input := "app 100/100 1.0: 1 cycles:\n" +
		"\t401300 leaf+0x3 (/usr/bin/app)\n" +
		"\t401000 root+0x1 (/usr/bin/app)\n\n"

	opts := DefaultOptions()
	opts.SkipAfter = "never_present"
	res := foldInput(t, opts, input)

	assert.Equal(t, uint64(1), res.counter["app;root;leaf"])
}

func TestFolder_Fold_SkipAfterMatchesAnnotatedFrame(t *testing.T) {
	input := "app 100/100 1.0: 1 cycles:\n" +
		"\t401300 leaf+0x3 (/usr/bin/app)\n" +
		"\tffffffff81 sys_read+0x2 ([kernel.kallsyms])\n" +
		"\t401000 root+0x1 (/usr/bin/app)\n\n"

	opts := DefaultOptions()
	opts.AnnotateKernel = true
	opts.SkipAfter = "sys_read"
	res := foldInput(t, opts, input)

	assert.Equal(t, uint64(1), res.counter["sys_read_[k];leaf"])
}

func TestFolder_Fold_EventFilterLatchesFirstSeen(t *testing.T) {
	input := "app 100/100 1.0: 1 cycles:\n\t401000 main+0x1 (/usr/bin/app)\n\n" +
		"app 100/100 1.1: 1 instructions:\n\t401000 main+0x1 (/usr/bin/app)\n\n" +
		"app 100/100 1.2: 1 cycles:\n\t401000 main+0x1 (/usr/bin/app)\n\n"

	res := foldInput(t, DefaultOptions(), input)

	assert.Equal(t, "cycles", res.event)
	assert.Equal(t, uint64(2), res.counter["app;main"])
	assert.Equal(t, 1, res.skippedBlocks)
}

func TestFolder_Fold_ExplicitEventFilter(t *testing.T) {
	input := "app 100/100 1.0: 1 cycles:\n\t401000 main+0x1 (/usr/bin/app)\n\n" +
		"app 100/100 1.1: 1 instructions:\n\t401100 other+0x1 (/usr/bin/app)\n\n"

	opts := DefaultOptions()
	opts.EventFilter = "instructions"
	res := foldInput(t, opts, input)

	assert.Equal(t, "instructions", res.event)
	assert.Equal(t, uint64(1), res.counter["app;other"])
	assert.NotContains(t, res.counter, "app;main")
}

func TestFolder_Fold_MalformedFrameSkipped(t *testing.T) {
	input := "app 100/100 1.0: 1 cycles:\n" +
		"\t401300 leaf+0x3 (/usr/bin/app)\n" +
		"\t???\n" +
		"\t401000 root+0x1 (/usr/bin/app)\n\n"

	res := foldInput(t, DefaultOptions(), input)

	assert.Equal(t, uint64(1), res.counter["app;root;leaf"])
	assert.Equal(t, 1, res.skippedFrames)
}

func TestFolder_Fold_MalformedLinesLoggedAtWarn(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = utils.NewDefaultLogger(utils.LevelWarn, &buf)

	input := "??? garbage instead of a header\n\n" +
		"app 100/100 1.0: 1 cycles:\n" +
		"\t???\n" +
		"\t401000 main+0x1 (/usr/bin/app)\n\n"

	res := foldInput(t, opts, input)

	assert.Equal(t, 1, res.skippedBlocks)
	assert.Equal(t, 1, res.skippedFrames)

	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "skipping unparsable sample header")
	assert.Contains(t, out, "skipping unparsable frame")
}

func TestFolder_Fold_ZeroFrameBlock(t *testing.T) {
	input := "idle 0 2.0: 1 cpu-clock:\n\n"

	res := foldInput(t, DefaultOptions(), input)

	assert.Equal(t, uint64(1), res.counter["idle"])
}
