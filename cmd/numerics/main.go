// Command numerics exposes the numeric exports from the shell: it lists the
// export table, calls exports in process and runs WebAssembly guests that
// import them.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
