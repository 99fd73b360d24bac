package perf

import (
	"bytes"
	"strings"
)

// byteRange is a half-open [start, end) slice of the input known to contain
// only whole record blocks.
type byteRange struct {
	start int
	end   int
}

// alignedRanges partitions data into up to n contiguous ranges of roughly
// equal byte size. Every cut lands on a block boundary, so a worker never
// sees a partial record.
func alignedRanges(data []byte, n int) []byteRange {
	if len(data) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}

	ranges := make([]byteRange, 0, n)
	chunk := len(data) / n
	start := 0

	for i := 1; i < n && start < len(data); i++ {
		target := i * chunk
		if target <= start {
			continue
		}
		end := nextBlockBoundary(data, target)
		if end > start {
			ranges = append(ranges, byteRange{start: start, end: end})
			start = end
		}
	}

	if start < len(data) {
		ranges = append(ranges, byteRange{start: start, end: len(data)})
	}

	return ranges
}

// nextBlockBoundary returns the offset just past the first blank line
// strictly after the line containing pos. Blocks are blank-line
// terminated, so every such offset is a safe partition cut.
func nextBlockBoundary(data []byte, pos int) int {
	// pos usually lands mid-line. The fragment from pos to the next
	// newline is not a line of its own (a cut on a line's final byte
	// would read as blank), so discard it before scanning whole lines.
	nl := bytes.IndexByte(data[pos:], '\n')
	if nl < 0 {
		return len(data)
	}
	pos += nl + 1

	for pos < len(data) {
		nl := bytes.IndexByte(data[pos:], '\n')
		if nl < 0 {
			return len(data)
		}
		line := data[pos : pos+nl]
		pos += nl + 1
		if len(bytes.TrimSpace(line)) == 0 {
			return pos
		}
	}
	return len(data)
}

// block is one raw record: a header line and its indented frame lines.
type block struct {
	header string
	frames []string
}

// blockIter yields the record blocks of one byte range. Metadata lines
// (starting with '#') and stray blank lines are skipped.
type blockIter struct {
	data []byte
	pos  int
	end  int
}

func newBlockIter(data []byte, r byteRange) *blockIter {
	return &blockIter{data: data, pos: r.start, end: r.end}
}

// nextLine returns the next line without its terminator, or false at the
// end of the range.
func (it *blockIter) nextLine() (string, bool) {
	if it.pos >= it.end {
		return "", false
	}
	nl := bytes.IndexByte(it.data[it.pos:it.end], '\n')
	if nl < 0 {
		line := string(it.data[it.pos:it.end])
		it.pos = it.end
		return line, true
	}
	line := string(it.data[it.pos : it.pos+nl])
	it.pos += nl + 1
	return line, true
}

// peekLine returns the next line without consuming it.
func (it *blockIter) peekLine() (string, bool) {
	pos := it.pos
	line, ok := it.nextLine()
	it.pos = pos
	return line, ok
}

// next returns the next record block, or false when the range is
// exhausted. A block with zero frame lines is legal.
func (it *blockIter) next() (block, bool) {
	var b block

	// Find the header: the first line that is neither blank, indented,
	// nor a metadata comment.
	for {
		line, ok := it.nextLine()
		if !ok {
			return b, false
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || line[0] == '#' {
			continue
		}
		if isIndented(line) {
			// Frame line without a header, e.g. after a cut mid-warning.
			continue
		}
		b.header = line
		break
	}

	// Collect frame lines until the blank terminator or a new header.
	for {
		line, ok := it.peekLine()
		if !ok {
			return b, true
		}
		if strings.TrimSpace(line) == "" {
			it.nextLine()
			return b, true
		}
		if line[0] == '#' {
			it.nextLine()
			continue
		}
		if !isIndented(line) {
			// Next header follows without a separating blank line.
			return b, true
		}
		it.nextLine()
		b.frames = append(b.frames, line)
	}
}

func isIndented(line string) bool {
	return len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
}
