package perf

import (
	"github.com/perf-fold/internal/collapse"
)

// RegisterWithRegistry registers a Folder for every format name it
// supports.
func RegisterWithRegistry(r *collapse.Registry, opts *Options) error {
	f, err := New(opts)
	if err != nil {
		return err
	}
	for _, format := range f.SupportedFormats() {
		r.Register(format, f)
	}
	return nil
}
