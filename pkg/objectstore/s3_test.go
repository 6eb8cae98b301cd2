package objectstore

import (
	"context"
	"os"
	"testing"
)

// TestS3Store runs the shared store suite against a live MinIO when
// MINIO_ENDPOINT is set.
func TestS3Store(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set, skipping S3 tests")
	}

	cfg := S3Config{
		Endpoint:  endpoint,
		Bucket:    envOr("MINIO_BUCKET", "kmeans-test"),
		AccessKey: envOr("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: envOr("MINIO_SECRET_KEY", "minioadmin"),
		Region:    "us-east-1",
	}

	store, err := NewS3Store(cfg)
	if err != nil {
		t.Fatalf("failed to create S3 store: %v", err)
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("failed to ensure bucket: %v", err)
	}

	runStoreTests(t, store)
}

func TestNewS3StoreEndpointScheme(t *testing.T) {
	for _, endpoint := range []string{"http://localhost:9000", "https://s3.example.com", "localhost:9000"} {
		if _, err := NewS3Store(S3Config{Endpoint: endpoint, Bucket: "b"}); err != nil {
			t.Errorf("NewS3Store(%q): %v", endpoint, err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
