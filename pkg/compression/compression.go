// Package compression compresses folded output before it is archived or
// uploaded. Codecs are selected by the name used in configuration files.
package compression

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/perf-fold/pkg/errors"
)

// Codec compresses and decompresses byte blobs.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Name() string
}

// FromName returns the codec for a configuration name. Supported names
// are "zstd", "gzip" and "none"; the empty string selects zstd.
func FromName(name string) (Codec, error) {
	switch name {
	case "zstd", "":
		return NewZstd()
	case "gzip":
		return NewGzip(), nil
	case "none":
		return Noop{}, nil
	}
	return nil, errors.New(errors.CodeConfigError, "unknown compression codec: "+name)
}

// Zstd compresses with klauspost zstd. Safe for concurrent use; the
// encoder and decoder are stateless across EncodeAll/DecodeAll calls.
type Zstd struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstd creates a reusable zstd codec at the default level.
func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "failed to create zstd encoder", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, errors.Wrap(errors.CodeUnknown, "failed to create zstd decoder", err)
	}
	return &Zstd{encoder: enc, decoder: dec}, nil
}

func (z *Zstd) Compress(data []byte) ([]byte, error) {
	return z.encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func (z *Zstd) Decompress(data []byte) ([]byte, error) {
	out, err := z.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidInput, "failed to decompress zstd data", err)
	}
	return out, nil
}

func (z *Zstd) Name() string { return "zstd" }

// Close releases the encoder and decoder.
func (z *Zstd) Close() {
	z.encoder.Close()
	z.decoder.Close()
}

// Gzip compresses with the standard gzip format for interoperability
// with flamegraph tooling that expects .folded.gz files.
type Gzip struct{}

func NewGzip() Gzip { return Gzip{} }

func (Gzip) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, errors.Wrap(errors.CodeIOError, "failed to write gzip data", err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(errors.CodeIOError, "failed to close gzip writer", err)
	}
	return buf.Bytes(), nil
}

func (Gzip) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidInput, "failed to read gzip header", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidInput, "failed to decompress gzip data", err)
	}
	return out, nil
}

func (Gzip) Name() string { return "gzip" }

// Noop passes data through unchanged.
type Noop struct{}

func (Noop) Compress(data []byte) ([]byte, error)   { return data, nil }
func (Noop) Decompress(data []byte) ([]byte, error) { return data, nil }
func (Noop) Name() string                           { return "none" }

// Detect returns the codec matching the magic bytes of an archived blob,
// falling back to Noop when no known magic is present.
func Detect(data []byte) (Codec, error) {
	if len(data) >= 4 && data[0] == 0x28 && data[1] == 0xb5 && data[2] == 0x2f && data[3] == 0xfd {
		return NewZstd()
	}
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		return NewGzip(), nil
	}
	return Noop{}, nil
}
