package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutAndFetch(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	err = store.Put(ctx, "folded/2026/08/31/trace-cycles.folded.gz", strings.NewReader("app;main 2\n"))
	require.NoError(t, err)

	rc, err := store.Fetch(ctx, "folded/2026/08/31/trace-cycles.folded.gz")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "app;main 2\n", string(data))
}

func TestLocalStore_Exists(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "missing.folded")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "present.folded", strings.NewReader("x 1\n")))

	ok, err = store.Exists(ctx, "present.folded")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStore_Fetch_NotFound(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "missing.folded")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLocalStore_Put_CanceledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = store.Put(ctx, "key", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStore_PutFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	src := dir + "/src.folded"
	require.NoError(t, writeTempFile(src, "app;main 2\n"))

	require.NoError(t, store.PutFile(ctx, "copied.folded", src))

	ok, err := store.Exists(ctx, "copied.folded")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStore_URL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url := store.URL("a/b.folded")
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "b.folded"))
}
