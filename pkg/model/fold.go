// Package model defines the shared data types for folded stack processing.
package model

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FoldedCounter maps a folded stack key to the number of samples observed
// with that exact stack. The key is the textual form of the output line's
// stack portion: process label, then root-to-leaf frame labels, joined by
// semicolons.
type FoldedCounter map[string]uint64

// NewFoldedCounter creates an empty counter.
func NewFoldedCounter() FoldedCounter {
	return make(FoldedCounter)
}

// Add increments the count for the given stack key by n.
func (c FoldedCounter) Add(key string, n uint64) {
	c[key] += n
}

// Merge adds every count from other into c. The receiving counter owns the
// merged result; other is left unchanged.
func (c FoldedCounter) Merge(other FoldedCounter) {
	for key, count := range other {
		c[key] += count
	}
}

// Total returns the sum of all counts.
func (c FoldedCounter) Total() uint64 {
	var total uint64
	for _, count := range c {
		total += count
	}
	return total
}

// SortedKeys returns all stack keys in lexicographic order. Output built
// from this order is stable for a fixed input regardless of how many
// workers produced the partial counters.
func (c FoldedCounter) SortedKeys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ParseFolded reads folded stack lines back into a counter. The last
// space-separated field of each line is the count; everything before it is
// the stack key. Blank lines are ignored.
func ParseFolded(r io.Reader) (FoldedCounter, error) {
	counter := NewFoldedCounter()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		sep := strings.LastIndexByte(line, ' ')
		if sep < 0 {
			return nil, fmt.Errorf("malformed folded line: %q", line)
		}
		count, err := strconv.ParseUint(line[sep+1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed count in folded line %q: %w", line, err)
		}
		counter.Add(line[:sep], count)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return counter, nil
}

// FoldSummary describes one completed fold run.
type FoldSummary struct {
	// Event is the event type the run filtered on. Empty when the input
	// contained no records.
	Event string `json:"event"`

	// DistinctStacks is the number of unique folded stack keys.
	DistinctStacks int `json:"distinct_stacks"`

	// TotalSamples is the sum of all counts.
	TotalSamples uint64 `json:"total_samples"`

	// SkippedBlocks is the number of record blocks discarded because the
	// header line could not be parsed.
	SkippedBlocks int `json:"skipped_blocks"`

	// SkippedFrames is the number of individual frame lines discarded.
	SkippedFrames int `json:"skipped_frames"`

	// Workers is the number of parallel workers that produced the result.
	Workers int `json:"workers"`

	// Duration is the wall time of the fold.
	Duration time.Duration `json:"duration"`
}

// Merge accumulates the parse statistics of another summary. Event is taken
// from the first summary that observed one.
func (s *FoldSummary) Merge(other FoldSummary) {
	if s.Event == "" {
		s.Event = other.Event
	}
	s.SkippedBlocks += other.SkippedBlocks
	s.SkippedFrames += other.SkippedFrames
}
