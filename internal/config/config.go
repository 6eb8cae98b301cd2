// Package config loads run settings from a JSON or TOML file and KMEANS_*
// environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/vexsearch/kmeans/internal/kmeans"
	"github.com/vexsearch/kmeans/internal/logging"
)

type Config struct {
	Data        DataConfig        `json:"data" toml:"data"`
	Engine      EngineConfig      `json:"engine" toml:"engine"`
	ObjectStore ObjectStoreConfig `json:"object_store" toml:"object_store"`
	Metrics     MetricsConfig     `json:"metrics" toml:"metrics"`
	Log         LogConfig         `json:"log" toml:"log"`
	Bench       BenchConfig       `json:"bench" toml:"bench"`
}

// DataConfig locates the input point set.
type DataConfig struct {
	// Key is the object key of the dataset. Keys ending in ".zst" are
	// decompressed on load.
	Key  string `json:"key" toml:"key"`
	Dims int    `json:"dims" toml:"dims"`
	// Delimiter is a single character. Default: ";"
	Delimiter string `json:"delimiter" toml:"delimiter"`
}

// EngineConfig holds the clustering parameters.
type EngineConfig struct {
	K         int     `json:"k" toml:"k"`
	MinChange float64 `json:"min_change" toml:"min_change"`
	Workers   int     `json:"workers" toml:"workers"`
	// Strategy is "sequential" or "parallel".
	Strategy string `json:"strategy" toml:"strategy"`
	// Seed 0 picks a fresh seed per run.
	Seed uint64 `json:"seed" toml:"seed"`
	// MaxIterations 0 means run until converged.
	MaxIterations      int    `json:"max_iterations" toml:"max_iterations"`
	EmptyClusterPolicy string `json:"empty_cluster_policy" toml:"empty_cluster_policy"`
}

type ObjectStoreConfig struct {
	Type      string `json:"type" toml:"type"`
	Endpoint  string `json:"endpoint" toml:"endpoint"`
	Bucket    string `json:"bucket" toml:"bucket"`
	AccessKey string `json:"access_key" toml:"access_key"`
	SecretKey string `json:"secret_key" toml:"secret_key"`
	Region    string `json:"region" toml:"region"`
	UseSSL    bool   `json:"use_ssl" toml:"use_ssl"`
	RootPath  string `json:"root_path" toml:"root_path"`
}

type MetricsConfig struct {
	// ListenAddr serves /metrics when set.
	ListenAddr string `json:"listen_addr" toml:"listen_addr"`
}

type LogConfig struct {
	Level string `json:"level" toml:"level"`
}

type BenchConfig struct {
	Repeat int `json:"repeat" toml:"repeat"`
}

func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dims:      4,
			Delimiter: ";",
		},
		Engine: EngineConfig{
			K:                  5,
			MinChange:          1e-9,
			Workers:            runtime.NumCPU(),
			Strategy:           string(kmeans.StrategyParallel),
			EmptyClusterPolicy: string(kmeans.DefaultEmptyClusterPolicy),
		},
		ObjectStore: ObjectStoreConfig{
			Type:   "fs",
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level: "info",
		},
		Bench: BenchConfig{
			Repeat: 10,
		},
	}
}

// Load reads path (or $KMEANS_CONFIG when path is empty) over the defaults
// and applies environment overrides. Files ending in ".toml" are parsed as
// TOML, everything else as JSON.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("KMEANS_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	env := envReader{}

	env.asString("KMEANS_DATA_KEY", &cfg.Data.Key)
	env.asInt("KMEANS_DATA_DIMS", &cfg.Data.Dims)
	env.asString("KMEANS_DATA_DELIMITER", &cfg.Data.Delimiter)

	env.asInt("KMEANS_K", &cfg.Engine.K)
	env.asFloat("KMEANS_MIN_CHANGE", &cfg.Engine.MinChange)
	env.asInt("KMEANS_WORKERS", &cfg.Engine.Workers)
	env.asString("KMEANS_STRATEGY", &cfg.Engine.Strategy)
	env.asUint("KMEANS_SEED", &cfg.Engine.Seed)
	env.asInt("KMEANS_MAX_ITERATIONS", &cfg.Engine.MaxIterations)
	env.asString("KMEANS_EMPTY_CLUSTER_POLICY", &cfg.Engine.EmptyClusterPolicy)

	env.asString("KMEANS_OBJECT_STORE_TYPE", &cfg.ObjectStore.Type)
	env.asString("KMEANS_OBJECT_STORE_ENDPOINT", &cfg.ObjectStore.Endpoint)
	env.asString("KMEANS_OBJECT_STORE_BUCKET", &cfg.ObjectStore.Bucket)
	env.asString("KMEANS_OBJECT_STORE_ROOT", &cfg.ObjectStore.RootPath)
	env.asString("KMEANS_OBJECT_STORE_ACCESS_KEY", &cfg.ObjectStore.AccessKey)
	env.asString("KMEANS_OBJECT_STORE_SECRET_KEY", &cfg.ObjectStore.SecretKey)
	env.asString("KMEANS_OBJECT_STORE_REGION", &cfg.ObjectStore.Region)
	env.asBool("KMEANS_OBJECT_STORE_USE_SSL", &cfg.ObjectStore.UseSSL)

	env.asString("KMEANS_METRICS_ADDR", &cfg.Metrics.ListenAddr)
	env.asString("KMEANS_LOG_LEVEL", &cfg.Log.Level)
	env.asInt("KMEANS_BENCH_REPEAT", &cfg.Bench.Repeat)

	return env.err
}

// envReader applies set variables and keeps the first parse error.
type envReader struct {
	err error
}

func (r *envReader) lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" || r.err != nil {
		return "", false
	}
	return v, true
}

func (r *envReader) fail(name, value string, err error) {
	r.err = fmt.Errorf("invalid %s=%q: %w", name, value, err)
}

func (r *envReader) asString(name string, dst *string) {
	if v, ok := r.lookup(name); ok {
		*dst = v
	}
}

func (r *envReader) asInt(name string, dst *int) {
	if v, ok := r.lookup(name); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) asUint(name string, dst *uint64) {
	if v, ok := r.lookup(name); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) asFloat(name string, dst *float64) {
	if v, ok := r.lookup(name); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			r.fail(name, v, err)
			return
		}
		*dst = f
	}
}

func (r *envReader) asBool(name string, dst *bool) {
	if v, ok := r.lookup(name); ok {
		*dst = v == "true" || v == "1"
	}
}

// Validate checks every setting that does not depend on the loaded data.
// Engine errors match kmeans.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if c.Data.Dims <= 0 {
		return invalid("dims", c.Data.Dims, "must be positive")
	}
	if _, err := kmeans.ParseStrategy(c.Engine.Strategy); err != nil {
		return err
	}
	engine, err := c.EngineConfig()
	if err != nil {
		return err
	}
	// The point count is unknown until the data is loaded, so only the
	// upper bound on k is left unchecked here.
	if err := engine.Validate(math.MaxInt); err != nil {
		return err
	}

	switch c.ObjectStore.Type {
	case "", "fs", "memory":
	case "s3":
		if c.ObjectStore.Bucket == "" {
			return invalid("object_store.bucket", "", "required for s3")
		}
	default:
		return invalid("object_store.type", c.ObjectStore.Type, "must be fs, memory or s3")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", c.Log.Level, err.Error())
	}
	if c.Bench.Repeat <= 0 {
		return invalid("bench.repeat", c.Bench.Repeat, "must be positive")
	}
	return nil
}

// DelimiterRune returns the configured field delimiter.
func (c *Config) DelimiterRune() (rune, error) {
	d := c.Data.Delimiter
	if d == "" {
		return ';', nil
	}
	r, size := utf8.DecodeRuneInString(d)
	if size != len(d) || r == '\n' || r == '\r' || r == '"' || r == utf8.RuneError {
		return 0, invalid("delimiter", d, "must be a single character other than newline or quote")
	}
	return r, nil
}

// EngineConfig converts the engine section into a kmeans.Config.
func (c *Config) EngineConfig() (kmeans.Config, error) {
	cfg := kmeans.Config{
		K:             c.Engine.K,
		Dims:          c.Data.Dims,
		MinChange:     c.Engine.MinChange,
		Workers:       c.Engine.Workers,
		MaxIterations: c.Engine.MaxIterations,
		Seed:          c.Engine.Seed,
	}
	if c.Engine.EmptyClusterPolicy != "" {
		p, err := kmeans.ParseEmptyClusterPolicy(c.Engine.EmptyClusterPolicy)
		if err != nil {
			return kmeans.Config{}, err
		}
		cfg.EmptyClusterPolicy = p
	}
	return cfg, nil
}

// Strategy returns the configured strategy.
func (c *Config) Strategy() (kmeans.Strategy, error) {
	return kmeans.ParseStrategy(c.Engine.Strategy)
}

func invalid(field string, value any, reason string) error {
	return &kmeans.InvalidConfigurationError{Field: field, Value: value, Reason: reason}
}
