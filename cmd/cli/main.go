// Command perf-fold collapses `perf script` traces into folded stacks.
package main

import (
	"github.com/perf-fold/cmd/cli/cmd"
)

func main() {
	cmd.Execute()
}
