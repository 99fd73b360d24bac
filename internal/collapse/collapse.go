// Package collapse defines the interfaces for folding stack trace data.
package collapse

import (
	"context"
	"io"

	"github.com/perf-fold/pkg/model"
)

// Collapser folds one kind of raw profiler trace into folded stack lines.
// One implementing variant exists per supported trace format.
type Collapser interface {
	// Collapse reads a raw trace from r and writes folded stack lines to w.
	// Parse problems inside the trace are recovered and reported through
	// the summary; only I/O failures and invalid configuration produce an
	// error.
	Collapse(ctx context.Context, r io.Reader, w io.Writer) (*model.FoldSummary, error)

	// SupportedFormats returns the formats supported by this collapser.
	SupportedFormats() []string

	// Name returns the name of this collapser.
	Name() string
}

// Registry holds registered collapsers.
type Registry struct {
	collapsers map[string]Collapser
}

// NewRegistry creates a new collapser Registry.
func NewRegistry() *Registry {
	return &Registry{
		collapsers: make(map[string]Collapser),
	}
}

// Register registers a collapser under the given format name.
func (r *Registry) Register(format string, c Collapser) {
	r.collapsers[format] = c
}

// Get returns a collapser for the given format.
func (r *Registry) Get(format string) (Collapser, bool) {
	c, ok := r.collapsers[format]
	return c, ok
}

// Formats returns all registered format names.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.collapsers))
	for format := range r.collapsers {
		formats = append(formats, format)
	}
	return formats
}
