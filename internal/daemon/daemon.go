// Package daemon serves a running constellation: the frame loop, a
// websocket bridge for renderers, an HTTP API and a gRPC health service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/emotion-constellation/constellation-core/internal/annotate"
	"github.com/emotion-constellation/constellation-core/internal/dataset"
	"github.com/emotion-constellation/constellation-core/internal/frame"
	"github.com/emotion-constellation/constellation-core/internal/input"
	"github.com/emotion-constellation/constellation-core/internal/metrics"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

// Daemon owns one constellation session and its network surfaces
type Daemon struct {
	cfg    *config.Config
	loader *dataset.Loader

	pipeline  *frame.Pipeline
	scheduler *frame.Scheduler
	router    *input.Router
	annotator *annotate.Annotator
	hub       *Hub
	watcher   *dataset.Watcher

	registry *prometheus.Registry
	metrics  *metrics.Collector

	grpcServer *grpc.Server
	health     *health.Server

	logger *slog.Logger

	mu     sync.RWMutex
	locale string
}

// New wires a daemon for a loaded dataset. A nil clock uses the wall clock.
func New(cfg *config.Config, ds *dataset.Dataset, loader *dataset.Loader, clock utils.Clock) (*Daemon, error) {
	if ds == nil || ds.Graph == nil {
		return nil, errors.New("dataset is required")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector(registry)

	pipeline := frame.NewPipeline(ds.Graph, cfg, nil)
	pipeline.SetMetrics(m)

	scheduler := frame.NewScheduler(pipeline, cfg.Frame, clock)
	scheduler.SetMetrics(m)

	d := &Daemon{
		cfg:       cfg,
		loader:    loader,
		pipeline:  pipeline,
		scheduler: scheduler,
		router:    input.NewRouter(pipeline, cfg.Interaction),
		annotator: annotate.NewAnnotator(ds.Graph),
		registry:  registry,
		metrics:   m,
		logger:    logger.Component("daemon"),
		locale:    ds.Locale,
	}
	d.router.Attach()

	d.hub = NewHub(cfg.Server, d.Dispatch)
	d.hub.SetMetrics(m)
	d.hub.Attach(pipeline.Bus())
	d.annotator.AddSink(d.hub.Annotations)

	pipeline.AddRenderer(d.hub)
	pipeline.AddAux(d.annotator)

	if cfg.Dataset.Watch && loader != nil {
		w, err := dataset.NewWatcher(loader, ds.Locale, cfg.Dataset.WatchDebounce.Duration, d.handoff)
		if err != nil {
			return nil, fmt.Errorf("failed to create dataset watcher: %w", err)
		}
		w.SetMetrics(m)
		d.watcher = w
	}

	d.grpcServer, d.health = NewGRPCServer()
	return d, nil
}

// Dispatch executes a client command. Frame commands are queued for the
// next frame; locale changes load the new text first.
func (d *Daemon) Dispatch(c Command) error {
	if c.Type == CmdLocale {
		return d.SetLocale(c.Locale)
	}
	cmd, err := FrameCommand(c)
	if err != nil {
		return err
	}
	if !d.scheduler.Enqueue(cmd) {
		return ErrInboxFull
	}
	return nil
}

// SetLocale loads the text of locale and swaps it in at the next frame
func (d *Daemon) SetLocale(locale string) error {
	if !dataset.IsSupported(locale) {
		return fmt.Errorf("%w: unsupported locale %q", ErrInvalidCommand, locale)
	}
	if d.watcher != nil {
		return d.watcher.SetLocale(locale)
	}
	if d.loader == nil {
		return errors.New("no dataset loader configured")
	}
	ds, err := d.loader.Load(locale)
	d.metrics.DatasetReloaded(err == nil)
	if err != nil {
		return err
	}
	d.handoff(ds)
	return nil
}

// handoff queues a text swap; it is the watcher's reload handler
func (d *Daemon) handoff(ds *dataset.Dataset) {
	if !d.scheduler.Enqueue(dataset.SwapCommand(ds)) {
		d.logger.Warn("dropped dataset text swap", "locale", ds.Locale)
		return
	}
	d.mu.Lock()
	d.locale = ds.Locale
	d.mu.Unlock()
}

// Run starts the frame loop, the watcher and the servers, and blocks until
// ctx is cancelled or a server fails. Everything is shut down on return.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := d.scheduler.Start(ctx); err != nil {
		return err
	}
	d.health.SetServingStatus(FrameService, healthpb.HealthCheckResponse_SERVING)

	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			d.logger.Warn("dataset watcher not started", "error", err)
		}
	}

	errCh := make(chan error, 2)

	grpcLis, err := net.Listen("tcp", d.cfg.Server.GRPCAddr)
	if err != nil {
		d.shutdown()
		return fmt.Errorf("failed to listen for gRPC on %s: %w", d.cfg.Server.GRPCAddr, err)
	}

	httpSrv := &http.Server{
		Addr:              d.cfg.Server.HTTPAddr,
		Handler:           d.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		d.logger.Info("gRPC server listening", "addr", d.cfg.Server.GRPCAddr)
		if err := d.grpcServer.Serve(grpcLis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	go func() {
		d.logger.Info("HTTP server listening", "addr", d.cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		d.logger.Info("shutdown requested")
	case runErr = <-errCh:
		d.logger.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	d.grpcServer.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		d.logger.Error("HTTP shutdown error", "error", err)
	}
	d.shutdown()
	return runErr
}

func (d *Daemon) shutdown() {
	d.health.SetServingStatus(FrameService, healthpb.HealthCheckResponse_NOT_SERVING)
	d.hub.Close()
	if d.watcher != nil {
		d.watcher.Stop()
	}
	d.scheduler.Stop()
}

// Handler returns the HTTP routes
func (d *Daemon) Handler() http.Handler {
	return NewHTTPServer(d, d.registry).Handler()
}

// Locale returns the locale of the text currently shown
func (d *Daemon) Locale() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.locale
}

// Pipeline returns the frame pipeline
func (d *Daemon) Pipeline() *frame.Pipeline { return d.pipeline }

// Scheduler returns the frame scheduler
func (d *Daemon) Scheduler() *frame.Scheduler { return d.scheduler }

// Hub returns the websocket hub
func (d *Daemon) Hub() *Hub { return d.hub }

// Annotator returns the overlay consumer
func (d *Daemon) Annotator() *annotate.Annotator { return d.annotator }

// Metrics returns the metrics collector
func (d *Daemon) Metrics() *metrics.Collector { return d.metrics }

// Health returns the gRPC health server
func (d *Daemon) Health() *health.Server { return d.health }
