package generate

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/vexsearch/kmeans/internal/cli"
	"github.com/vexsearch/kmeans/internal/config"
	"github.com/vexsearch/kmeans/internal/dataset"
	"github.com/vexsearch/kmeans/pkg/objectstore"
)

func Run(args []string) {
	if err := Execute(context.Background(), args, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("generate failed: %v", err)
	}
}

// Execute writes a synthetic dataset of Gaussian blobs to the object store.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	def := dataset.DefaultGenerateOptions()

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file (object store settings)")
	out := fs.String("out", "", "Destination key (.zst compresses)")
	n := fs.Int("n", def.Points, "Number of points")
	dims := fs.Int("dims", def.Dims, "Point dimension")
	centers := fs.Int("centers", def.Centers, "Number of blobs")
	spread := fs.Float64("spread", def.Spread, "Standard deviation of each blob")
	extent := fs.Float64("extent", def.Extent, "Blob centers lie in [-extent, extent]")
	seed := fs.Uint64("seed", def.Seed, "Random seed")
	delimiter := fs.String("delimiter", ";", "Field delimiter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("-out is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cfg.Data.Delimiter = *delimiter
	delim, err := cfg.DelimiterRune()
	if err != nil {
		return err
	}

	points, err := dataset.Generate(dataset.GenerateOptions{
		Points:  *n,
		Dims:    *dims,
		Centers: *centers,
		Spread:  *spread,
		Extent:  *extent,
		Seed:    *seed,
	})
	if err != nil {
		return err
	}

	store, err := objectstore.New(cli.StoreConfig(cfg))
	if err != nil {
		return err
	}
	info, err := dataset.Write(ctx, store, *out, points, delim)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %d points (%d bytes) to %s, fingerprint %s\n",
		len(points), info.Size, *out, dataset.Fingerprint(points))
	return nil
}
