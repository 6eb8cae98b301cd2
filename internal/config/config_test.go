package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vexsearch/kmeans/internal/kmeans"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Engine.K != 5 {
		t.Errorf("expected k 5, got %d", cfg.Engine.K)
	}
	if cfg.Data.Dims != 4 {
		t.Errorf("expected dims 4, got %d", cfg.Data.Dims)
	}
	if cfg.Engine.MinChange != 1e-9 {
		t.Errorf("expected min change 1e-9, got %g", cfg.Engine.MinChange)
	}
	if cfg.ObjectStore.Type != "fs" {
		t.Errorf("expected fs object store, got %s", cfg.ObjectStore.Type)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("KMEANS_K", "7")
	t.Setenv("KMEANS_MIN_CHANGE", "0.01")
	t.Setenv("KMEANS_SEED", "42")
	t.Setenv("KMEANS_STRATEGY", "sequential")
	t.Setenv("KMEANS_OBJECT_STORE_USE_SSL", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.K != 7 {
		t.Errorf("expected k 7, got %d", cfg.Engine.K)
	}
	if cfg.Engine.MinChange != 0.01 {
		t.Errorf("expected min change 0.01, got %g", cfg.Engine.MinChange)
	}
	if cfg.Engine.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Engine.Seed)
	}
	if cfg.Engine.Strategy != "sequential" {
		t.Errorf("expected sequential, got %s", cfg.Engine.Strategy)
	}
	if !cfg.ObjectStore.UseSSL {
		t.Error("expected use_ssl true")
	}
}

func TestLoadEnvMalformedNumber(t *testing.T) {
	t.Setenv("KMEANS_WORKERS", "many")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "KMEANS_WORKERS") {
		t.Fatalf("expected KMEANS_WORKERS error, got %v", err)
	}
}

func TestLoadFromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"data": {"key": "points.csv", "dims": 2, "delimiter": ","},
		"engine": {"k": 3, "workers": 2, "strategy": "sequential", "max_iterations": 50},
		"object_store": {"type": "memory"}
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Data.Key != "points.csv" || cfg.Data.Dims != 2 || cfg.Data.Delimiter != "," {
		t.Errorf("unexpected data section: %+v", cfg.Data)
	}
	if cfg.Engine.K != 3 || cfg.Engine.Workers != 2 || cfg.Engine.MaxIterations != 50 {
		t.Errorf("unexpected engine section: %+v", cfg.Engine)
	}
	// Unset fields keep their defaults.
	if cfg.Engine.MinChange != 1e-9 {
		t.Errorf("expected default min change, got %g", cfg.Engine.MinChange)
	}
	if cfg.Bench.Repeat != 10 {
		t.Errorf("expected default repeat 10, got %d", cfg.Bench.Repeat)
	}
}

func TestLoadFromTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kmeans.toml")
	content := `
[data]
key = "blobs.csv.zst"
dims = 3

[engine]
k = 4
min_change = 1e-6
seed = 99
empty_cluster_policy = "fail"

[object_store]
type = "s3"
bucket = "datasets"
endpoint = "http://localhost:9000"

[bench]
repeat = 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Data.Key != "blobs.csv.zst" || cfg.Data.Dims != 3 {
		t.Errorf("unexpected data section: %+v", cfg.Data)
	}
	if cfg.Engine.K != 4 || cfg.Engine.MinChange != 1e-6 || cfg.Engine.Seed != 99 {
		t.Errorf("unexpected engine section: %+v", cfg.Engine)
	}
	if cfg.ObjectStore.Bucket != "datasets" || cfg.Bench.Repeat != 3 {
		t.Errorf("unexpected sections: %+v %+v", cfg.ObjectStore, cfg.Bench)
	}

	engine, err := cfg.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig failed: %v", err)
	}
	if engine.EmptyClusterPolicy != kmeans.EmptyClusterFail || engine.Dims != 3 {
		t.Errorf("unexpected engine config: %+v", engine)
	}
}

func TestLoadFromConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"engine": {"k": 9}}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KMEANS_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.K != 9 {
		t.Errorf("expected k 9, got %d", cfg.Engine.K)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"engine": {"k": 9}}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KMEANS_K", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.K != 2 {
		t.Errorf("expected env to win with k 2, got %d", cfg.Engine.K)
	}
}

func TestInvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"bad.json": `{"engine": `,
		"bad.toml": `[engine`,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected parse error", name)
		}
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "zero k", mutate: func(c *Config) { c.Engine.K = 0 }, field: "k"},
		{name: "zero dims", mutate: func(c *Config) { c.Data.Dims = 0 }, field: "dims"},
		{name: "zero min change", mutate: func(c *Config) { c.Engine.MinChange = 0 }, field: "min_change"},
		{name: "zero workers", mutate: func(c *Config) { c.Engine.Workers = 0 }, field: "workers"},
		{name: "negative max iterations", mutate: func(c *Config) { c.Engine.MaxIterations = -1 }, field: "max_iterations"},
		{name: "unknown strategy", mutate: func(c *Config) { c.Engine.Strategy = "gpu" }, field: "strategy"},
		{name: "unknown empty policy", mutate: func(c *Config) { c.Engine.EmptyClusterPolicy = "ignore" }, field: "empty_cluster_policy"},
		{name: "long delimiter", mutate: func(c *Config) { c.Data.Delimiter = ";;" }, field: "delimiter"},
		{name: "newline delimiter", mutate: func(c *Config) { c.Data.Delimiter = "\n" }, field: "delimiter"},
		{name: "unknown store", mutate: func(c *Config) { c.ObjectStore.Type = "gcs" }, field: "object_store.type"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.ObjectStore.Type = "s3" }, field: "object_store.bucket"},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "loud" }, field: "log.level"},
		{name: "zero repeat", mutate: func(c *Config) { c.Bench.Repeat = 0 }, field: "bench.repeat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, kmeans.ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
			var ce *kmeans.InvalidConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *InvalidConfigurationError, got %T", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestDelimiterRune(t *testing.T) {
	cfg := Default()
	cfg.Data.Delimiter = "\t"
	r, err := cfg.DelimiterRune()
	if err != nil || r != '\t' {
		t.Errorf("DelimiterRune = %q, %v; want tab", r, err)
	}
	cfg.Data.Delimiter = ""
	if r, _ := cfg.DelimiterRune(); r != ';' {
		t.Errorf("empty delimiter should default to ';', got %q", r)
	}
}
