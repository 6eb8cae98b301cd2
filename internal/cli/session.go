package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/vexsearch/kmeans/internal/config"
	"github.com/vexsearch/kmeans/internal/dataset"
	"github.com/vexsearch/kmeans/internal/logging"
	"github.com/vexsearch/kmeans/internal/metrics"
	"github.com/vexsearch/kmeans/pkg/objectstore"
)

// Session owns the resources of one subcommand invocation.
type Session struct {
	Config *config.Config
	Store  objectstore.Store
	Logger *logging.Logger
	RunID  string

	metricsSrv *http.Server
}

// StoreConfig maps the object store section onto objectstore.Config.
func StoreConfig(cfg *config.Config) objectstore.Config {
	return objectstore.Config{
		Type:      cfg.ObjectStore.Type,
		RootPath:  cfg.ObjectStore.RootPath,
		Endpoint:  cfg.ObjectStore.Endpoint,
		Bucket:    cfg.ObjectStore.Bucket,
		AccessKey: cfg.ObjectStore.AccessKey,
		SecretKey: cfg.ObjectStore.SecretKey,
		Region:    cfg.ObjectStore.Region,
		UseSSL:    cfg.ObjectStore.UseSSL,
	}
}

// Open builds the logger and store for cfg and starts the metrics listener
// when one is configured. Logs go to logOut.
func Open(ctx context.Context, cfg *config.Config, logOut io.Writer) (*Session, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewWithLevel(logOut, level)

	store, err := objectstore.New(StoreConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	s := &Session{
		Config: cfg,
		Store:  store,
		Logger: logger,
		RunID:  logging.NewRunID(),
	}
	if cfg.Metrics.ListenAddr != "" {
		if err := s.serveMetrics(cfg.Metrics.ListenAddr); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	s.metricsSrv = &http.Server{
		Handler:      logging.Middleware(s.Logger)(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.metricsSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("metrics listener failed", "error", err)
		}
	}()
	s.Logger.Info("serving metrics", "addr", ln.Addr().String())
	return nil
}

// Context attaches the run id, and the dataset key when set, for logging.
func (s *Session) Context(ctx context.Context) context.Context {
	ctx = logging.ContextWithRunID(ctx, s.RunID)
	if key := s.Config.Data.Key; key != "" {
		ctx = logging.ContextWithDataset(ctx, key)
	}
	return logging.ContextWithStartTime(ctx, time.Now())
}

// LoadDataset reads the configured dataset.
func (s *Session) LoadDataset(ctx context.Context) (*dataset.Dataset, error) {
	if s.Config.Data.Key == "" {
		return nil, errors.New("no dataset given: set -data or data.key")
	}
	delim, err := s.Config.DelimiterRune()
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(ctx, s.Store, s.Config.Data.Key, dataset.Options{
		Dims:      s.Config.Data.Dims,
		Delimiter: delim,
	})
	if err != nil {
		return nil, err
	}
	s.Logger.WithContext(ctx).Info("dataset loaded",
		"points", len(ds.Points),
		"dims", ds.Dims,
		"fingerprint", ds.Fingerprint,
		"load_ms", logging.ElapsedMs(ctx),
	)
	return ds, nil
}

// Close stops the metrics listener.
func (s *Session) Close(ctx context.Context) error {
	if s.metricsSrv == nil {
		return nil
	}
	return s.metricsSrv.Shutdown(ctx)
}
