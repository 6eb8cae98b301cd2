package dataset

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/vexsearch/kmeans/internal/vector"
	"github.com/vexsearch/kmeans/pkg/objectstore"
)

// GenerateOptions describes a synthetic point set of Gaussian blobs.
type GenerateOptions struct {
	Points  int
	Dims    int
	Centers int
	// Spread is the standard deviation of each blob.
	Spread float64
	// Extent bounds blob centers to [-Extent, Extent] on every axis.
	Extent float64
	Seed   uint64
}

// DefaultGenerateOptions mirrors the shape of the benchmark data: four
// coordinates, five groups.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Points:  10000,
		Dims:    4,
		Centers: 5,
		Spread:  1,
		Extent:  50,
		Seed:    1,
	}
}

// Generate returns opts.Points points spread round-robin over opts.Centers
// Gaussian blobs. The same options always produce the same points.
func Generate(opts GenerateOptions) ([]vector.Point, error) {
	if opts.Points <= 0 {
		return nil, fmt.Errorf("points must be positive, got %d", opts.Points)
	}
	if err := vector.ValidateDims(opts.Dims); err != nil {
		return nil, err
	}
	if opts.Centers <= 0 || opts.Centers > opts.Points {
		return nil, fmt.Errorf("centers must be in [1, %d], got %d", opts.Points, opts.Centers)
	}
	if opts.Spread < 0 || opts.Extent < 0 {
		return nil, fmt.Errorf("spread and extent must not be negative")
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed+1))
	centers := make([]vector.Point, opts.Centers)
	for c := range centers {
		center := make(vector.Point, opts.Dims)
		for d := range center {
			center[d] = (rng.Float64()*2 - 1) * opts.Extent
		}
		centers[c] = center
	}

	points := make([]vector.Point, opts.Points)
	for i := range points {
		center := centers[i%opts.Centers]
		p := make(vector.Point, opts.Dims)
		for d := range p {
			p[d] = center[d] + rng.NormFloat64()*opts.Spread
		}
		points[i] = p
	}
	return points, nil
}

// Encode writes points one per line, coordinates separated by delim.
func Encode(w io.Writer, points []vector.Point, delim rune) error {
	if delim == 0 {
		delim = DefaultDelimiter
	}
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for _, p := range points {
		for i, v := range p {
			if i > 0 {
				bw.WriteRune(delim)
			}
			buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
			bw.Write(buf)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Write encodes points and stores them under key, compressing when the key
// ends in ".zst".
func Write(ctx context.Context, store objectstore.Store, key string, points []vector.Point, delim rune) (*objectstore.ObjectInfo, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, points, delim); err != nil {
		return nil, err
	}
	return Put(ctx, store, key, buf.Bytes(), "text/csv")
}

// Put stores data under key, zstd-compressing it when the key ends in ".zst".
func Put(ctx context.Context, store objectstore.Store, key string, data []byte, contentType string) (*objectstore.ObjectInfo, error) {
	if compressed(key) {
		var err error
		if data, err = Compress(data); err != nil {
			return nil, fmt.Errorf("failed to compress %q: %w", key, err)
		}
		contentType = "application/zstd"
	}
	info, err := store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), &objectstore.PutOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("failed to write %q: %w", key, err)
	}
	return info, nil
}
