package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultClassifier_Classify(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name   string
		module string
		want   FrameKind
	}{
		{"kallsyms", "[kernel.kallsyms]", FrameKernel},
		{"kernel prefix", "[kernel.vmlinux]", FrameKernel},
		{"vmlinux path", "/boot/vmlinux", FrameKernel},
		{"kernel module", "/lib/modules/nf_conntrack.ko", FrameKernel},
		{"jit map", "/tmp/perf-12688.map", FrameJIT},
		{"jit suffix", "/opt/app/code.jit", FrameJIT},
		{"user binary", "/usr/bin/app", FrameRegular},
		{"shared object", "/usr/lib/libc.so.6", FrameRegular},
		{"empty module", "", FrameRegular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.module, "func"))
		})
	}
}

func TestFrameLabel_StripsOffset(t *testing.T) {
	opts := DefaultOptions()
	f := rawFrame{address: 0x401000, hasAddress: true, symbol: "main+0x1f", module: "/usr/bin/app"}

	assert.Equal(t, "main", frameLabel(f, opts))
}

func TestFrameLabel_UnknownSymbol(t *testing.T) {
	f := rawFrame{address: 0xdeadbeef, hasAddress: true, symbol: "[unknown]", module: "/usr/bin/app"}

	t.Run("without addresses", func(t *testing.T) {
		opts := DefaultOptions()
		assert.Equal(t, "[unknown]", frameLabel(f, opts))
	})

	t.Run("with addresses", func(t *testing.T) {
		opts := DefaultOptions()
		opts.IncludeAddrs = true
		assert.Equal(t, "0xdeadbeef", frameLabel(f, opts))
	})

	t.Run("with addresses but no address", func(t *testing.T) {
		opts := DefaultOptions()
		opts.IncludeAddrs = true
		g := rawFrame{symbol: ""}
		assert.Equal(t, "[unknown]", frameLabel(g, opts))
	})
}

func TestFrameLabel_KernelAnnotation(t *testing.T) {
	f := rawFrame{address: 0xffffffff8104f45a, hasAddress: true, symbol: "do_nanosleep+0x12", module: "[kernel.kallsyms]"}

	opts := DefaultOptions()
	assert.Equal(t, "do_nanosleep", frameLabel(f, opts))

	opts.AnnotateKernel = true
	assert.Equal(t, "do_nanosleep_[k]", frameLabel(f, opts))
}

func TestFrameLabel_JITAnnotation(t *testing.T) {
	f := rawFrame{address: 0x7f00, hasAddress: true, symbol: "java/lang/String.hashCode+0x8", module: "/tmp/perf-12688.map"}

	opts := DefaultOptions()
	assert.Equal(t, "java/lang/String.hashCode", frameLabel(f, opts))

	opts.AnnotateJIT = true
	assert.Equal(t, "java/lang/String.hashCode_[j]", frameLabel(f, opts))
}

func TestFrameLabel_SemicolonReplaced(t *testing.T) {
	f := rawFrame{symbol: "Ljava/lang/String;::hashCode", module: "/tmp/perf-12688.map"}

	assert.Equal(t, "Ljava/lang/String:::hashCode", frameLabel(f, DefaultOptions()))
}
