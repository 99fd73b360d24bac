// Package storage publishes folded output to an object store so other
// tooling (flamegraph renderers, CI jobs) can fetch it by key.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/perf-fold/pkg/config"
	"github.com/perf-fold/pkg/errors"
)

// Store defines the operations the fold pipeline needs from an object
// store.
type Store interface {
	// Put writes the data from reader under the given key.
	Put(ctx context.Context, key string, reader io.Reader) error

	// PutFile uploads a local file under the given key.
	PutFile(ctx context.Context, key string, localPath string) error

	// Fetch returns a reader for the object at the given key.
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether an object exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the externally reachable location of the key.
	URL(key string) string
}

// Type represents the storage backend type.
type Type string

const (
	TypeLocal Type = "local"
	TypeCOS   Type = "cos"
)

// New creates a Store from configuration. An empty type selects local
// storage.
func New(cfg *config.StorageConfig) (Store, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeConfigError, "storage config is nil")
	}

	switch Type(cfg.Type) {
	case TypeLocal, Type(""):
		return NewLocalStore(cfg.LocalPath)
	case TypeCOS:
		return NewCOSStore(cfg)
	}
	return nil, errors.New(errors.CodeConfigError, "unsupported storage type: "+cfg.Type)
}

// ResultKey builds the object key for one fold run's output. Keys are
// date-partitioned so buckets stay listable as runs accumulate.
func ResultKey(inputName, event string, now time.Time) string {
	base := path.Base(inputName)
	if base == "." || base == "/" || base == "" || base == "-" {
		base = "stdin"
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if event == "" {
		event = "samples"
	}
	return fmt.Sprintf("folded/%s/%s-%s-%d.folded.gz",
		now.UTC().Format("2006/01/02"), base, event, now.UnixMilli())
}
