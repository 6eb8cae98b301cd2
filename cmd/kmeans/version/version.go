package version

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func Run() {
	Print(os.Stdout)
}

func Print(w io.Writer) {
	fmt.Fprintf(w, "kmeans version %s\n", Version)
	fmt.Fprintf(w, "  commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  built:  %s\n", BuildTime)
	fmt.Fprintf(w, "  go:     %s\n", runtime.Version())
}
