package perf

import (
	"regexp"
	"strconv"
	"strings"
)

// rawFrame is one stack frame line before normalization: address, optional
// symbol (still carrying its +0x offset) and optional module.
type rawFrame struct {
	address    uint64
	hasAddress bool
	symbol     string
	module     string
}

// rawRecord is one parsed record block. Frames are ordered leaf-to-root as
// printed by perf script.
type rawRecord struct {
	comm      string
	pid       int
	tid       int
	hasPID    bool
	hasTID    bool
	cpu       int
	hasCPU    bool
	timestamp string
	event     string
	frames    []rawFrame
}

// Header grammar. The comm may contain spaces, so it is matched
// non-greedily up to the pid/tid numbers; the event type is the last
// `name:` token of the line.
//
//	java 12688/12689 [002] 6544.899689:     10101010 cycles:
//	swapper     0 [001]  5076.836336: cpu-clock:
var (
	reHeader = regexp.MustCompile(`^(\S.*?)\s+(\d+)/*(\d+)*\s+`)
	reEvent  = regexp.MustCompile(`:\s*(\d+)*\s+(\S+):\s*$`)
	reCPU    = regexp.MustCompile(`\s\[(\d+)\]\s`)
	reTime   = regexp.MustCompile(`\s(\d+\.\d+):`)

	// Frame grammar: address, symbol (possibly with spaces and a +0x
	// offset), then the containing object in parentheses.
	//
	//	ffffffff8104f45a do_nanosleep+0x12 ([kernel.kallsyms])
	reFrame = regexp.MustCompile(`^\s*(\w+)\s*(.+) \((\S*)\)$`)

	// Older perf versions omit the module entirely.
	reFrameNoMod = regexp.MustCompile(`^\s*(\w+)\s+(\S.*?)\s*$`)
)

// parseHeader extracts the header fields of a block. Returns false when
// the line does not match the record grammar; the caller discards the
// whole block.
func parseHeader(line string) (rawRecord, bool) {
	var rec rawRecord

	m := reHeader.FindStringSubmatch(line)
	if m == nil {
		return rec, false
	}

	rec.comm = m[1]
	if m[3] != "" {
		// comm pid/tid
		rec.pid, rec.hasPID = atoi(m[2])
		rec.tid, rec.hasTID = atoi(m[3])
	} else {
		// comm tid (pid not emitted by this perf version)
		rec.tid, rec.hasTID = atoi(m[2])
	}

	if m := reCPU.FindStringSubmatch(line); m != nil {
		rec.cpu, rec.hasCPU = atoi(m[1])
	}
	if m := reTime.FindStringSubmatch(line); m != nil {
		rec.timestamp = m[1]
	}
	if m := reEvent.FindStringSubmatch(line); m != nil {
		rec.event = m[2]
	}

	return rec, true
}

// parseFrame extracts one frame line. Returns false for lines that do not
// match the frame grammar; the caller discards just that frame.
func parseFrame(line string) (rawFrame, bool) {
	var f rawFrame

	m := reFrame.FindStringSubmatch(line)
	if m == nil {
		m = reFrameNoMod.FindStringSubmatch(line)
		if m == nil {
			return f, false
		}
	} else {
		f.module = m[3]
	}

	if addr, err := strconv.ParseUint(m[1], 16, 64); err == nil {
		f.address = addr
		f.hasAddress = true
	}
	f.symbol = strings.TrimSpace(m[2])

	return f, true
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
