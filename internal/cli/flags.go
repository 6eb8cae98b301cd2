// Package cli holds the setup shared by the kmeans subcommands: flag
// binding over the config file, object store, logger and metrics listener.
package cli

import (
	"flag"

	"github.com/vexsearch/kmeans/internal/config"
)

// Flags are the settings every clustering subcommand accepts. Flags that
// are not given on the command line leave the loaded config untouched.
type Flags struct {
	ConfigPath  string
	Data        string
	K           int
	Dims        int
	MinChange   float64
	Workers     int
	Strategy    string
	Seed        uint64
	MaxIter     int
	Delimiter   string
	EmptyPolicy string
	MetricsAddr string
	LogLevel    string
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file (.json or .toml)")
	fs.StringVar(&f.Data, "data", "", "Dataset key in the object store")
	fs.IntVar(&f.K, "k", 0, "Number of clusters")
	fs.IntVar(&f.Dims, "dims", 0, "Point dimension")
	fs.Float64Var(&f.MinChange, "min-change", 0, "Convergence threshold on the summed centroid shift")
	fs.IntVar(&f.Workers, "workers", 0, "Worker goroutines for the parallel strategy")
	fs.StringVar(&f.Strategy, "strategy", "", "sequential or parallel")
	fs.Uint64Var(&f.Seed, "seed", 0, "Random seed (0 picks a new one per run)")
	fs.IntVar(&f.MaxIter, "max-iter", 0, "Iteration cap (0 runs until converged)")
	fs.StringVar(&f.Delimiter, "delimiter", "", "Field delimiter of the dataset")
	fs.StringVar(&f.EmptyPolicy, "empty-policy", "", "Empty cluster policy: reinit or fail")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.StringVar(&f.LogLevel, "log-level", "", "debug, info, warn or error")
	return f
}

// Load reads the config file and environment, applies the flags set on fs
// and validates the result.
func (f *Flags) Load(fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) {
		f.apply(cfg, fl.Name)
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *Flags) apply(cfg *config.Config, name string) {
	switch name {
	case "data":
		cfg.Data.Key = f.Data
	case "k":
		cfg.Engine.K = f.K
	case "dims":
		cfg.Data.Dims = f.Dims
	case "min-change":
		cfg.Engine.MinChange = f.MinChange
	case "workers":
		cfg.Engine.Workers = f.Workers
	case "strategy":
		cfg.Engine.Strategy = f.Strategy
	case "seed":
		cfg.Engine.Seed = f.Seed
	case "max-iter":
		cfg.Engine.MaxIterations = f.MaxIter
	case "delimiter":
		cfg.Data.Delimiter = f.Delimiter
	case "empty-policy":
		cfg.Engine.EmptyClusterPolicy = f.EmptyPolicy
	case "metrics-addr":
		cfg.Metrics.ListenAddr = f.MetricsAddr
	case "log-level":
		cfg.Log.Level = f.LogLevel
	}
}
