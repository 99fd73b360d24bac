package compression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []byte("app;main;compute 42\napp;main;io_wait 7\n")

func TestFromName(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
	}{
		{"zstd", "zstd"},
		{"", "zstd"},
		{"gzip", "gzip"},
		{"none", "none"},
	}

	for _, tt := range tests {
		c, err := FromName(tt.name)
		require.NoError(t, err, "codec %q", tt.name)
		assert.Equal(t, tt.wantName, c.Name())
	}

	_, err := FromName("lz4")
	assert.Error(t, err)
}

func TestZstd_RoundTrip(t *testing.T) {
	c, err := NewZstd()
	require.NoError(t, err)
	defer c.Close()

	compressed, err := c.Compress(sample)
	require.NoError(t, err)
	assert.NotEqual(t, sample, compressed)

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, sample, out)
}

func TestGzip_RoundTrip(t *testing.T) {
	c := NewGzip()

	compressed, err := c.Compress(sample)
	require.NoError(t, err)

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, sample, out)
}

func TestGzip_DecompressRejectsGarbage(t *testing.T) {
	_, err := NewGzip().Decompress([]byte("not gzip at all"))
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	z, err := NewZstd()
	require.NoError(t, err)
	defer z.Close()

	zb, err := z.Compress(sample)
	require.NoError(t, err)
	gb, err := NewGzip().Compress(sample)
	require.NoError(t, err)

	c, err := Detect(zb)
	require.NoError(t, err)
	assert.Equal(t, "zstd", c.Name())

	c, err = Detect(gb)
	require.NoError(t, err)
	assert.Equal(t, "gzip", c.Name())

	c, err = Detect(sample)
	require.NoError(t, err)
	assert.Equal(t, "none", c.Name())
}
