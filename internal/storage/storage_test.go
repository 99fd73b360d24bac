package storage

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perf-fold/pkg/config"
)

func writeTempFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestNew_LocalByDefault(t *testing.T) {
	store, err := New(&config.StorageConfig{LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_UnsupportedType(t *testing.T) {
	_, err := New(&config.StorageConfig{Type: "s3"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage type")
}

func TestNew_COSRequiresCredentials(t *testing.T) {
	_, err := New(&config.StorageConfig{Type: "cos", Bucket: "b", Region: "ap-guangzhou"})
	assert.Error(t, err)
}

func TestResultKey(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	key := ResultKey("/data/trace.perf", "cycles", now)
	assert.Contains(t, key, "folded/2026/08/31/")
	assert.Contains(t, key, "trace-cycles-")
	assert.True(t, len(key) > 0 && key[len(key)-10:] == ".folded.gz")
}

func TestResultKey_StdinAndEmptyEvent(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	key := ResultKey("-", "", now)
	assert.Contains(t, key, "stdin-samples-")
}
