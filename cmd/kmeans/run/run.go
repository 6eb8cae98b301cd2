package run

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

	"github.com/vexsearch/kmeans/internal/cli"
	"github.com/vexsearch/kmeans/internal/kmeans"
	"github.com/vexsearch/kmeans/internal/report"
)

func Run(args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx, args, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

// Execute clusters the configured dataset once and prints the cluster sizes.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := cli.BindFlags(fs)
	out := fs.String("out", "", "Write the JSON report to this key (.zst compresses)")
	printPoints := fs.Bool("print-points", false, "Print the points of every cluster")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := flags.Load(fs)
	if err != nil {
		return err
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
	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}
	engine, err := kmeans.New(ds.Points, engineCfg, kmeans.WithLogger(session.Logger))
	if err != nil {
		return err
	}

	res, err := engine.Run(ctx, strategy)
	if err != nil {
		return err
	}
	if err := report.Verify(res.Clusters, len(ds.Points)); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Point count %d\n", len(ds.Points))
	fmt.Fprintf(stdout, "Strategy %s, seed %d: %d iterations, converged %t, total shift %g, elapsed %s\n",
		res.Strategy, res.Seed, res.Iterations, res.Converged, res.TotalShift, res.Elapsed.Round(time.Microsecond))
	if err := report.WriteSizes(stdout, res.Clusters, *printPoints); err != nil {
		return err
	}

	if *out != "" {
		rep := report.New(res, report.Meta{
			RunID:       session.RunID,
			Dataset:     ds.Key,
			Fingerprint: ds.Fingerprint,
			Points:      len(ds.Points),
			Config:      engineCfg,
		})
		if _, err := rep.Save(ctx, session.Store, *out); err != nil {
			return err
		}
		session.Logger.WithContext(ctx).Info("report written", "key", *out)
	}
	return nil
}
