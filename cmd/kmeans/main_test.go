package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vexsearch/kmeans/cmd/kmeans/bench"
	"github.com/vexsearch/kmeans/cmd/kmeans/generate"
	"github.com/vexsearch/kmeans/cmd/kmeans/run"
	"github.com/vexsearch/kmeans/cmd/kmeans/version"
	"github.com/vexsearch/kmeans/internal/report"
)

func writeBlobs(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	var stdout, stderr bytes.Buffer
	args := []string{"-out", path, "-n", "300", "-dims", "2", "-centers", "3", "-spread", "0.5", "-seed", "11"}
	if err := generate.Execute(context.Background(), args, &stdout, &stderr); err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Wrote 300 points") {
		t.Fatalf("unexpected generate output: %s", stdout.String())
	}
	return path
}

func TestSubcommands(t *testing.T) {
	data := writeBlobs(t, "blobs.csv")
	ctx := context.Background()

	t.Run("run prints cluster sizes and writes a report", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "report.json")
		var stdout, stderr bytes.Buffer
		args := []string{"-data", data, "-k", "3", "-dims", "2", "-seed", "7", "-workers", "4", "-out", out}
		if err := run.Execute(ctx, args, &stdout, &stderr); err != nil {
			t.Fatalf("run failed: %v\n%s", err, stderr.String())
		}
		if !strings.Contains(stdout.String(), "Point count 300") {
			t.Errorf("missing point count: %s", stdout.String())
		}
		if n := strings.Count(stdout.String(), "Cluster: "); n != 3 {
			t.Errorf("got %d cluster lines, want 3:\n%s", n, stdout.String())
		}

		raw, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("report not written: %v", err)
		}
		var rep report.Report
		if err := json.Unmarshal(raw, &rep); err != nil {
			t.Fatalf("invalid report: %v", err)
		}
		if rep.Seed != 7 || rep.K != 3 || rep.Points != 300 || len(rep.Clusters) != 3 {
			t.Errorf("unexpected report: %+v", rep)
		}
		if rep.RunID == "" || rep.Fingerprint == "" {
			t.Error("report should carry run id and fingerprint")
		}
	})

	t.Run("run prints points on request", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		args := []string{"-data", data, "-k", "3", "-dims", "2", "-seed", "7", "-strategy", "sequential", "-print-points"}
		if err := run.Execute(ctx, args, &stdout, &stderr); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if n := strings.Count(stdout.String(), "Point: ("); n != 300 {
			t.Errorf("got %d point lines, want 300", n)
		}
	})

	t.Run("bench compares strategies", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		args := []string{"-data", data, "-k", "3", "-dims", "2", "-repeat", "2", "-workers", "3"}
		if err := bench.Execute(ctx, args, &stdout, &stderr); err != nil {
			t.Fatalf("bench failed: %v\n%s", err, stderr.String())
		}
		for _, want := range []string{"Serial in:", "Threads in:", "Same membership: 2/2"} {
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("bench output missing %q:\n%s", want, stdout.String())
			}
		}
	})

	t.Run("version prints version info", func(t *testing.T) {
		var buf bytes.Buffer
		version.Print(&buf)
		if !strings.Contains(buf.String(), "kmeans version") {
			t.Errorf("version output incorrect: %s", buf.String())
		}
	})
}

func TestCompressedDataset(t *testing.T) {
	data := writeBlobs(t, "blobs.csv.zst")
	var stdout, stderr bytes.Buffer
	args := []string{"-data", data, "-k", "3", "-dims", "2", "-seed", "3"}
	if err := run.Execute(context.Background(), args, &stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v\n%s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Point count 300") {
		t.Errorf("unexpected output: %s", stdout.String())
	}
}

func TestRunErrors(t *testing.T) {
	data := writeBlobs(t, "blobs.csv")
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no dataset", args: []string{"-k", "3"}, want: "no dataset"},
		{name: "zero k", args: []string{"-data", data, "-k", "0", "-dims", "2"}, want: "k=0"},
		{name: "k above point count", args: []string{"-data", data, "-k", "301", "-dims", "2"}, want: "exceeds number of points"},
		{name: "bad strategy", args: []string{"-data", data, "-dims", "2", "-strategy", "gpu"}, want: "strategy"},
		{name: "missing file", args: []string{"-data", data + ".missing", "-dims", "2"}, want: "not found"},
		{name: "too many dims", args: []string{"-data", data, "-dims", "3"}, want: "line 1"},
		{name: "unknown flag", args: []string{"-nope"}, want: "not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run.Execute(ctx, tt.args, &stdout, &stderr)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestGenerateRequiresOut(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := generate.Execute(context.Background(), nil, &stdout, &stderr); err == nil {
		t.Fatal("expected error without -out")
	}
}
