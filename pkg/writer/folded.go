// Package writer provides output writers for folded stack data.
package writer

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/perf-fold/pkg/model"
)

// FoldedWriter serializes a folded counter as one `stack count` line per
// distinct stack. Lines are emitted in sorted key order, so output is
// identical for a fixed input no matter how many workers produced the
// counter.
type FoldedWriter struct{}

// NewFoldedWriter creates a new FoldedWriter.
func NewFoldedWriter() *FoldedWriter {
	return &FoldedWriter{}
}

// Write writes the counter to the writer. Any write error is returned as-is;
// the caller treats it as fatal.
func (w *FoldedWriter) Write(counter model.FoldedCounter, writer io.Writer) error {
	bw := bufio.NewWriter(writer)

	for _, key := range counter.SortedKeys() {
		if _, err := bw.WriteString(key); err != nil {
			return err
		}
		if err := bw.WriteByte(' '); err != nil {
			return err
		}
		if _, err := bw.WriteString(strconv.FormatUint(counter[key], 10)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteToFile writes the counter to a file.
func (w *FoldedWriter) WriteToFile(counter model.FoldedCounter, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := w.Write(counter, file); err != nil {
		return err
	}
	return file.Close()
}

// GzipFoldedWriter writes folded output compressed with gzip, for archived
// or uploaded artifacts.
type GzipFoldedWriter struct {
	// CompressionLevel is the gzip compression level (1-9).
	CompressionLevel int
}

// NewGzipFoldedWriter creates a new gzip writer with default compression.
func NewGzipFoldedWriter() *GzipFoldedWriter {
	return &GzipFoldedWriter{CompressionLevel: gzip.DefaultCompression}
}

// Write writes the counter as gzipped folded text to the writer.
func (w *GzipFoldedWriter) Write(counter model.FoldedCounter, writer io.Writer) error {
	gzWriter, err := gzip.NewWriterLevel(writer, w.CompressionLevel)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}

	fw := NewFoldedWriter()
	if err := fw.Write(counter, gzWriter); err != nil {
		gzWriter.Close()
		return err
	}

	return gzWriter.Close()
}

// WriteToFile writes the counter as a gzipped file.
func (w *GzipFoldedWriter) WriteToFile(counter model.FoldedCounter, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := w.Write(counter, file); err != nil {
		return err
	}
	return file.Close()
}
