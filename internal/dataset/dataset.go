// Package dataset reads and writes point sets stored as delimited text, one
// point per line, optionally zstd-compressed.
package dataset

import (
	"context"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/vexsearch/kmeans/internal/metrics"
	"github.com/vexsearch/kmeans/internal/vector"
	"github.com/vexsearch/kmeans/pkg/objectstore"
)

// DefaultDelimiter separates coordinates within a line.
const DefaultDelimiter = ';'

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrEmptyDataset    = fmt.Errorf("empty dataset: %w", vector.ErrNoVectors)
)

// ParseError locates a malformed record. Line is 1-based, Field is 1-based
// or 0 when the whole line is at fault.
type ParseError struct {
	Line  int
	Field int
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field > 0 {
		return fmt.Sprintf("line %d, field %d: %v", e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrMalformedRecord, e.Err} }

// Options controls parsing.
type Options struct {
	// Dims is the number of leading fields read from each line. Extra
	// fields are ignored.
	Dims int

	// Delimiter defaults to DefaultDelimiter.
	Delimiter rune
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return DefaultDelimiter
	}
	return o.Delimiter
}

// Dataset is a loaded point set.
type Dataset struct {
	Key         string
	Dims        int
	Points      []vector.Point
	Fingerprint string
}

// Parse reads one point per non-empty line. Lines starting with '#' are
// skipped.
func Parse(r io.Reader, opts Options) ([]vector.Point, error) {
	if err := vector.ValidateDims(opts.Dims); err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.delimiter()
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var points []vector.Point
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Line: pe.Line, Field: pe.Column, Err: pe.Err}
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		if len(record) < opts.Dims {
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("expected at least %d fields, got %d", opts.Dims, len(record)),
			}
		}

		p := make(vector.Point, opts.Dims)
		for i := 0; i < opts.Dims; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				return nil, &ParseError{Line: line, Field: i + 1, Err: err}
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ParseError{Line: line, Field: i + 1, Err: fmt.Errorf("non-finite value %q", record[i])}
			}
			p[i] = v
		}
		points = append(points, p)
	}
	return points, nil
}

// Load reads the dataset stored under key. Keys ending in ".zst" are
// decompressed on the fly.
func Load(ctx context.Context, store objectstore.Store, key string, opts Options) (*Dataset, error) {
	body, _, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %q: %w", key, err)
	}
	defer body.Close()

	var r io.Reader = body
	if compressed(key) {
		dec, err := newDecoder(body)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream %q: %w", key, err)
		}
		defer dec.Close()
		r = dec
	}

	points, err := Parse(r, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %q: %w", key, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("dataset %q: %w", key, ErrEmptyDataset)
	}
	metrics.SetDatasetPoints(len(points))

	return &Dataset{
		Key:         key,
		Dims:        opts.Dims,
		Points:      points,
		Fingerprint: Fingerprint(points),
	}, nil
}

// Fingerprint hashes the coordinates of points in order. Two point sets with
// the same fingerprint are, for practical purposes, the same input.
func Fingerprint(points []vector.Point) string {
	h := xxhash.New()
	var buf [8]byte
	for _, p := range points {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(p)))
		h.Write(buf[:])
		for _, v := range p {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
