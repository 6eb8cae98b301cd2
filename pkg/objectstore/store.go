// Package objectstore abstracts where datasets are read from and reports are
// written to: the local filesystem, memory, or an S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
	ContentType  string
}

type ListResult struct {
	Objects     []ObjectInfo
	NextMarker  string
	IsTruncated bool
}

type PutOptions struct {
	ContentType string
}

type ListOptions struct {
	Prefix  string
	Marker  string
	MaxKeys int
}

type Store interface {
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Head(ctx context.Context, key string) (*ObjectInfo, error)
	Put(ctx context.Context, key string, body io.Reader, size int64, opts *PutOptions) (*ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, opts *ListOptions) (*ListResult, error)
}

// Config selects and configures a Store.
type Config struct {
	// Type is "fs" (default), "memory" or "s3".
	Type      string
	RootPath  string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// New builds the store described by cfg, wrapped with metrics.
func New(cfg Config) (Store, error) {
	var inner Store
	switch cfg.Type {
	case "", "fs":
		fs, err := NewFSStore(cfg.RootPath)
		if err != nil {
			return nil, err
		}
		inner = fs
	case "memory":
		inner = NewMemoryStore()
	case "s3":
		s3, err := NewS3Store(S3Config{
			Endpoint:  cfg.Endpoint,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		inner = s3
	default:
		return nil, fmt.Errorf("unknown object store type: %q", cfg.Type)
	}
	return NewInstrumentedStore(inner), nil
}

func listLimit(opts *ListOptions) (prefix, marker string, maxKeys int) {
	maxKeys = 1000
	if opts != nil {
		prefix = opts.Prefix
		marker = opts.Marker
		if opts.MaxKeys > 0 {
			maxKeys = opts.MaxKeys
		}
	}
	return prefix, marker, maxKeys
}
