package perf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const splitterInput = `app 100/100 1.000000: 1 cycles:
	    401000 main+0x1 (/usr/bin/app)

app 100/100 1.000100: 1 cycles:
	    401200 worker+0x20 (/usr/bin/app)
	    401000 main+0x1 (/usr/bin/app)

app 100/100 1.000200: 1 cycles:
	    401000 main+0x1 (/usr/bin/app)

`

func TestAlignedRanges_EmptyInput(t *testing.T) {
	assert.Nil(t, alignedRanges(nil, 4))
	assert.Nil(t, alignedRanges([]byte{}, 1))
}

func TestAlignedRanges_SingleWorker(t *testing.T) {
	data := []byte(splitterInput)
	ranges := alignedRanges(data, 1)

	require.Len(t, ranges, 1)
	assert.Equal(t, byteRange{start: 0, end: len(data)}, ranges[0])
}

func TestAlignedRanges_CoversInputWithoutGaps(t *testing.T) {
	data := []byte(splitterInput)

	for _, n := range []int{2, 3, 8, 100} {
		ranges := alignedRanges(data, n)
		require.NotEmpty(t, ranges)
		assert.LessOrEqual(t, len(ranges), n)

		// Contiguous cover of the whole input.
		assert.Equal(t, 0, ranges[0].start)
		for i := 1; i < len(ranges); i++ {
			assert.Equal(t, ranges[i-1].end, ranges[i].start)
		}
		assert.Equal(t, len(data), ranges[len(ranges)-1].end)

		// Every cut lands just past a blank line.
		for i := 0; i < len(ranges)-1; i++ {
			end := ranges[i].end
			require.GreaterOrEqual(t, end, 2)
			assert.Equal(t, byte('\n'), data[end-1])
			before := data[:end-1]
			nl := strings.LastIndexByte(string(before), '\n')
			assert.Equal(t, "", strings.TrimSpace(string(before[nl+1:])))
		}
	}
}

func TestAlignedRanges_BlocksNeverSplit(t *testing.T) {
	data := []byte(splitterInput)

	// Sweep the worker count up to one per byte so the cut targets pass
	// over every offset, newline bytes and indented frame bytes included.
	for n := 1; n <= len(data); n++ {
		ranges := alignedRanges(data, n)

		// Every cut lands just past a blank line of the original input.
		for i := 0; i < len(ranges)-1; i++ {
			end := ranges[i].end
			require.GreaterOrEqual(t, end, 2, "n=%d", n)
			require.Equal(t, byte('\n'), data[end-1], "n=%d end=%d", n, end)
			before := string(data[:end-1])
			nl := strings.LastIndexByte(before, '\n')
			require.Equal(t, "", strings.TrimSpace(before[nl+1:]), "n=%d end=%d", n, end)
		}

		// Each range yields only whole records, and no record is lost.
		total := 0
		for _, r := range ranges {
			it := newBlockIter(data, r)
			for {
				b, ok := it.next()
				if !ok {
					break
				}
				require.True(t, strings.HasPrefix(b.header, "app "), "n=%d", n)
				require.NotEmpty(t, b.frames, "n=%d", n)
				total++
			}
		}
		require.Equal(t, 3, total, "n=%d", n)
	}
}

func TestBlockIter_Next_SkipsMetadataAndBlankLines(t *testing.T) {
	input := "# captured on: Mon Aug 31\n# event : name = cycles\n\n" +
		"app 100/100 1.0: 1 cycles:\n\tdeadbeef run+0x4 (/usr/bin/app)\n\n"
	data := []byte(input)

	it := newBlockIter(data, byteRange{start: 0, end: len(data)})

	b, ok := it.next()
	require.True(t, ok)
	assert.Equal(t, "app 100/100 1.0: 1 cycles:", b.header)
	require.Len(t, b.frames, 1)

	_, ok = it.next()
	assert.False(t, ok)
}

func TestBlockIter_Next_ZeroFrameBlock(t *testing.T) {
	data := []byte("idle 0 2.0: 1 cpu-clock:\n\n")
	it := newBlockIter(data, byteRange{start: 0, end: len(data)})

	b, ok := it.next()
	require.True(t, ok)
	assert.Equal(t, "idle 0 2.0: 1 cpu-clock:", b.header)
	assert.Empty(t, b.frames)
}

func TestBlockIter_Next_MissingTrailingBlankLine(t *testing.T) {
	data := []byte("app 100/100 1.0: 1 cycles:\n\tdeadbeef run+0x4 (/usr/bin/app)")
	it := newBlockIter(data, byteRange{start: 0, end: len(data)})

	b, ok := it.next()
	require.True(t, ok)
	assert.Len(t, b.frames, 1)

	_, ok = it.next()
	assert.False(t, ok)
}

func TestBlockIter_Next_HeaderWithoutSeparatingBlank(t *testing.T) {
	data := []byte("app 100/100 1.0: 1 cycles:\n\tdeadbeef run+0x4 (/usr/bin/app)\n" +
		"app 100/100 1.1: 1 cycles:\n\tdeadbeef run+0x4 (/usr/bin/app)\n\n")
	it := newBlockIter(data, byteRange{start: 0, end: len(data)})

	first, ok := it.next()
	require.True(t, ok)
	assert.Len(t, first.frames, 1)

	second, ok := it.next()
	require.True(t, ok)
	assert.Len(t, second.frames, 1)

	_, ok = it.next()
	assert.False(t, ok)
}
