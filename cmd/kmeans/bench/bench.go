package bench

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	benchmark "github.com/vexsearch/kmeans/internal/bench"
	"github.com/vexsearch/kmeans/internal/cli"
	"github.com/vexsearch/kmeans/internal/report"
)

func Run(args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx, args, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("bench failed: %v", err)
	}
}

// Execute times both strategies on the configured dataset.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := cli.BindFlags(fs)
	repeat := fs.Int("repeat", 0, "Sequential/parallel pairs to run (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := flags.Load(fs)
	if err != nil {
		return err
	}
	if *repeat != 0 {
		cfg.Bench.Repeat = *repeat
	}

	session, err := cli.Open(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		session.Close(shutdownCtx)
	}()

	ctx = session.Context(ctx)
	ds, err := session.LoadDataset(ctx)
	if err != nil {
		return err
	}
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Point count %d\n", len(ds.Points))
	summary, err := benchmark.Run(ctx, ds.Points, engineCfg, benchmark.Options{
		Repeat: cfg.Bench.Repeat,
		Logger: session.Logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Serial in: %s\n", summary.SequentialAvg.Round(time.Microsecond))
	fmt.Fprintf(stdout, "Threads in: %s\n", summary.ParallelAvg.Round(time.Microsecond))
	fmt.Fprintf(stdout, "Speedup: %.2fx with %d workers\n", summary.Speedup(), engineCfg.Workers)
	fmt.Fprintf(stdout, "Same membership: %d/%d\n", summary.Agreements, summary.Repeat)
	return report.WriteSizes(stdout, summary.Parallel.Clusters, false)
}
