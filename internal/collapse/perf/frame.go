package perf

import (
	"fmt"
	"regexp"
	"strings"
)

// FrameKind categorizes a resolved frame for annotation purposes.
type FrameKind int

const (
	FrameRegular FrameKind = iota
	FrameKernel
	FrameJIT
)

// FrameClassifier decides whether a frame belongs to the kernel, a JIT
// runtime, or regular user code, based on the module path and symbol
// reported by perf.
type FrameClassifier interface {
	Classify(module, symbol string) FrameKind
}

// jitMapPattern matches the per-process map files that JIT runtimes
// (JVM, V8, ...) write for perf symbol resolution.
var jitMapPattern = regexp.MustCompile(`^/tmp/perf-\d+\.map$`)

type defaultClassifier struct{}

// DefaultClassifier classifies frames by their module path.
func DefaultClassifier() FrameClassifier {
	return defaultClassifier{}
}

func (defaultClassifier) Classify(module, symbol string) FrameKind {
	switch {
	case module == "[kernel.kallsyms]",
		strings.HasPrefix(module, "[kernel"),
		strings.HasSuffix(module, "vmlinux"),
		strings.HasSuffix(module, ".ko"):
		return FrameKernel
	case strings.HasSuffix(module, ".jit"),
		jitMapPattern.MatchString(module):
		return FrameJIT
	}
	return FrameRegular
}

// reOffset strips the +0x... instruction offset perf appends to symbols.
var reOffset = regexp.MustCompile(`\+0x[0-9a-fA-F]+$`)

const unknownSymbol = "[unknown]"

// frameLabel renders one raw frame into its output form. Unresolved
// symbols fall back to the raw address when addresses are requested,
// otherwise to the [unknown] sentinel. Kernel and JIT frames get the
// _[k] and _[j] suffixes when the corresponding annotation is enabled.
func frameLabel(f rawFrame, opts *Options) string {
	sym := reOffset.ReplaceAllString(f.symbol, "")

	// Semicolons separate frames in the folded format, so they cannot
	// survive inside a label.
	sym = strings.ReplaceAll(sym, ";", ":")

	if sym == "" || sym == unknownSymbol {
		if opts.IncludeAddrs && f.hasAddress {
			sym = fmt.Sprintf("0x%x", f.address)
		} else {
			sym = unknownSymbol
		}
	}

	switch opts.Classifier.Classify(f.module, sym) {
	case FrameKernel:
		if opts.AnnotateKernel {
			sym += "_[k]"
		}
	case FrameJIT:
		if opts.AnnotateJIT {
			sym += "_[j]"
		}
	}

	return sym
}
