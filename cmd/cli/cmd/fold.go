package cmd

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/perf-fold/internal/archive"
	"github.com/perf-fold/internal/collapse"
	"github.com/perf-fold/internal/collapse/perf"
	"github.com/perf-fold/internal/storage"
	"github.com/perf-fold/pkg/model"
	"github.com/perf-fold/pkg/utils"
	"github.com/perf-fold/pkg/writer"
)

var (
	// Fold command flags
	foldFormat      string
	foldAddrs       bool
	foldPid         bool
	foldTid         bool
	foldKernel      bool
	foldJit         bool
	foldAll         bool
	foldEventFilter string
	foldSkipAfter   string
	foldNThreads    int
	foldOutput      string
	foldArchive     bool
	foldUpload      bool
)

// foldCmd represents the fold command
var foldCmd = &cobra.Command{
	Use:   "fold [PATH]",
	Short: "Fold perf script output into collapsed stacks",
	Long: `Fold reads "perf script" output from PATH (or standard input when PATH
is omitted or "-") and writes one line per distinct call stack:

  process;frame1;frame2;...;frameN count

Frames are ordered root to leaf. The output is sorted by stack key, so
folding the same trace always produces identical output regardless of
the worker count.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFold,
}

func init() {
	rootCmd.AddCommand(foldCmd)

	binName := BinName()
	foldCmd.Example = `  # Fold from stdin, annotate kernel frames
  perf script | ` + binName + ` fold --kernel

  # Include pid and tid in process labels
  ` + binName + ` fold --tid trace.perf

  # Trim everything above the scheduler entry point
  ` + binName + ` fold --skip-after secondary_startup_64 trace.perf

  # Write gzipped output and archive the run
  ` + binName + ` fold trace.perf -o trace.folded.gz --archive`

	foldCmd.Flags().StringVar(&foldFormat, "format", "perf", "Input trace format")
	foldCmd.Flags().BoolVar(&foldAddrs, "addrs", false, "Include raw addresses where symbols can't be found")
	foldCmd.Flags().BoolVar(&foldPid, "pid", false, "Include PID with process names")
	foldCmd.Flags().BoolVar(&foldTid, "tid", false, "Include TID and PID with process names")
	foldCmd.Flags().BoolVar(&foldKernel, "kernel", false, "Annotate kernel functions with a _[k]")
	foldCmd.Flags().BoolVar(&foldJit, "jit", false, "Annotate jit functions with a _[j]")
	foldCmd.Flags().BoolVar(&foldAll, "all", false, "All annotations (--kernel --jit)")
	foldCmd.Flags().StringVar(&foldEventFilter, "event-filter", "", "Event filter (default: first encountered event)")
	foldCmd.Flags().StringVar(&foldSkipAfter, "skip-after", "", "Omit frames above the frame with the matched function name")
	foldCmd.Flags().IntVarP(&foldNThreads, "nthreads", "n", runtime.NumCPU(), "Number of worker threads")
	foldCmd.Flags().StringVarP(&foldOutput, "output", "o", "", "Output file (stdout if empty; .gz enables gzip)")
	foldCmd.Flags().BoolVar(&foldArchive, "archive", false, "Record the run in the configured archive database")
	foldCmd.Flags().BoolVar(&foldUpload, "upload", false, "Upload the folded output to the configured object store")
}

func runFold(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	opts, err := buildFoldOptions(cmd)
	if err != nil {
		return err
	}

	inputName := "-"
	if len(args) == 1 {
		inputName = args[0]
	}

	input, err := openInput(inputName)
	if err != nil {
		return err
	}
	defer input.Close()

	reg := collapse.NewRegistry()
	if err := perf.RegisterWithRegistry(reg, opts); err != nil {
		return err
	}
	c, ok := reg.Get(foldFormat)
	if !ok {
		return fmt.Errorf("%w: %q (supported: %s)",
			collapse.ErrUnsupportedFormat, foldFormat, strings.Join(reg.Formats(), ", "))
	}

	// Without archive or upload the folded lines stream straight to the
	// output sink.
	if !foldArchive && !foldUpload {
		out, closeOut, err := openOutput(foldOutput)
		if err != nil {
			return err
		}
		summary, err := c.Collapse(cmd.Context(), input, out)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		logSummary(log, summary)
		return nil
	}

	counter, summary, err := collapseToCounter(cmd.Context(), c, input)
	if err != nil {
		return err
	}

	if err := writeOutput(counter, foldOutput); err != nil {
		return err
	}
	logSummary(log, summary)

	if foldArchive {
		if err := archiveRun(cmd, inputName, summary, counter); err != nil {
			return err
		}
	}
	if foldUpload {
		if err := uploadResult(cmd, inputName, summary, counter); err != nil {
			return err
		}
	}

	return nil
}

// counterCollapser is implemented by collapsers that can hand back the
// merged counter directly, sparing a serialize/reparse round trip.
type counterCollapser interface {
	CollapseToCounter(ctx context.Context, r io.Reader) (model.FoldedCounter, *model.FoldSummary, error)
}

func collapseToCounter(ctx context.Context, c collapse.Collapser, input io.Reader) (model.FoldedCounter, *model.FoldSummary, error) {
	startTime := time.Now()

	if cc, ok := c.(counterCollapser); ok {
		counter, summary, err := cc.CollapseToCounter(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		summary.Duration = time.Since(startTime)
		return counter, summary, nil
	}

	var buf bytes.Buffer
	summary, err := c.Collapse(ctx, input, &buf)
	if err != nil {
		return nil, nil, err
	}
	counter, err := model.ParseFolded(&buf)
	if err != nil {
		return nil, nil, err
	}
	return counter, summary, nil
}

func logSummary(log utils.Logger, summary *model.FoldSummary) {
	log.Info("folded %d samples into %d stacks (event %q, %d workers, %s)",
		summary.TotalSamples, summary.DistinctStacks, summary.Event,
		summary.Workers, summary.Duration.Round(time.Millisecond))
	if summary.SkippedBlocks > 0 || summary.SkippedFrames > 0 {
		log.Warn("skipped %d blocks and %d frames during parsing",
			summary.SkippedBlocks, summary.SkippedFrames)
	}
}

// buildFoldOptions merges the configuration file with the command line;
// explicitly set flags win.
func buildFoldOptions(cmd *cobra.Command) (*perf.Options, error) {
	fc := GetConfig().Fold

	opts := perf.DefaultOptions()
	opts.IncludeAddrs = fc.IncludeAddrs
	opts.IncludePID = fc.IncludePID
	opts.IncludeTID = fc.IncludeTID
	opts.AnnotateKernel = fc.AnnotateKernel
	opts.AnnotateJIT = fc.AnnotateJIT
	opts.EventFilter = fc.EventFilter
	opts.SkipAfter = fc.SkipAfter
	opts.NWorkers = fc.NWorkers
	opts.Logger = GetLogger()

	flags := cmd.Flags()
	if flags.Changed("addrs") {
		opts.IncludeAddrs = foldAddrs
	}
	if flags.Changed("pid") {
		opts.IncludePID = foldPid
	}
	if flags.Changed("tid") {
		opts.IncludeTID = foldTid
	}
	if flags.Changed("kernel") {
		opts.AnnotateKernel = foldKernel
	}
	if flags.Changed("jit") {
		opts.AnnotateJIT = foldJit
	}
	if foldAll {
		opts.AnnotateKernel = true
		opts.AnnotateJIT = true
	}
	if flags.Changed("event-filter") {
		opts.EventFilter = foldEventFilter
	}
	if flags.Changed("skip-after") {
		opts.SkipAfter = foldSkipAfter
	}
	if flags.Changed("nthreads") {
		opts.NWorkers = foldNThreads
	}
	if opts.NWorkers < 1 {
		opts.NWorkers = runtime.NumCPU()
	}

	return opts, nil
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return file, nil
}

// openOutput opens the output sink for streaming. A .gz suffix wraps the
// file in a gzip writer. The returned close function must run even on
// error paths so partial files are flushed or abandoned cleanly.
func openOutput(outPath string) (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	file, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	if strings.HasSuffix(outPath, ".gz") {
		gz := gzip.NewWriter(file)
		return gz, func() error {
			if err := gz.Close(); err != nil {
				file.Close()
				return err
			}
			return file.Close()
		}, nil
	}

	return file, file.Close, nil
}

// writeOutput serializes the counter to the output flag target. A .gz
// suffix selects the gzip writer.
func writeOutput(counter model.FoldedCounter, outPath string) error {
	if outPath == "" {
		return writer.NewFoldedWriter().Write(counter, os.Stdout)
	}
	if strings.HasSuffix(outPath, ".gz") {
		return writer.NewGzipFoldedWriter().WriteToFile(counter, outPath)
	}
	return writer.NewFoldedWriter().WriteToFile(counter, outPath)
}

func archiveRun(cmd *cobra.Command, inputName string, summary *model.FoldSummary, counter model.FoldedCounter) error {
	log := GetLogger()

	arch, err := archive.Open(&GetConfig().Archive)
	if err != nil {
		return err
	}
	defer arch.Close()

	id, err := arch.SaveRun(cmd.Context(), inputName, summary, counter)
	if err != nil {
		return err
	}

	log.Info("archived fold run %d", id)
	return nil
}

func uploadResult(cmd *cobra.Command, inputName string, summary *model.FoldSummary, counter model.FoldedCounter) error {
	log := GetLogger()

	store, err := storage.New(&GetConfig().Storage)
	if err != nil {
		return err
	}

	key := storage.ResultKey(inputName, summary.Event, time.Now())

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(writer.NewGzipFoldedWriter().Write(counter, pw))
	}()

	if err := store.Put(cmd.Context(), key, pr); err != nil {
		return err
	}

	log.Info("uploaded folded output to %s", store.URL(key))
	return nil
}
