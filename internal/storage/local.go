package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/perf-fold/pkg/errors"
)

// LocalStore implements Store on a local directory tree. Keys map
// directly to file paths below the base directory.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a store rooted at basePath, creating it if
// needed.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if basePath == "" {
		basePath = "./folded-out"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Wrap(errors.CodeIOError, "failed to create storage directory", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Put writes the data from reader under the given key.
func (s *LocalStore) Put(ctx context.Context, key string, reader io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := s.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return errors.Wrap(errors.CodeIOError, "failed to create directory", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return errors.Wrap(errors.CodeIOError, "failed to create file", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return errors.Wrap(errors.CodeIOError, "failed to write file", err)
	}
	return nil
}

// PutFile copies a local file under the given key.
func (s *LocalStore) PutFile(ctx context.Context, key string, localPath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return errors.Wrap(errors.CodeIOError, "failed to open source file", err)
	}
	defer src.Close()

	return s.Put(ctx, key, src)
}

// Fetch returns a reader for the object at the given key.
func (s *LocalStore) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeIOError, "object not found: "+key)
		}
		return nil, errors.Wrap(errors.CodeIOError, "failed to open object", err)
	}
	return file, nil
}

// Exists reports whether an object exists at the given key.
func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(s.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(errors.CodeIOError, "failed to stat object", err)
	}
	return true, nil
}

// URL returns the file path of the key.
func (s *LocalStore) URL(key string) string {
	return fmt.Sprintf("file://%s", s.fullPath(key))
}

func (s *LocalStore) fullPath(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}
