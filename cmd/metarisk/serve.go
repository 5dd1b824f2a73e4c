package main

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/metarisk/internal/adapters/artifact"
	"github.com/okian/metarisk/internal/adapters/http/api"
	"github.com/okian/metarisk/internal/adapters/http/site"
	"github.com/okian/metarisk/internal/adapters/http/swagger"
	service "github.com/okian/metarisk/internal/app"
	"github.com/okian/metarisk/pkg/logger"
	"github.com/okian/metarisk/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and assessment form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.serve(cmd.Context())
		},
	}
}

func (e *env) newService() *service.Service {
	return service.New(
		service.WithLogger(e.log.Named("service")),
		service.WithLoader(artifact.NewFileStore(e.cfg.ArtifactDir, artifact.WithLogger(e.log.Named("artifact")))),
		service.WithCache(e.cfg.CacheArtifacts),
	)
}

// newHandler mounts the API, the form site and the docs on one router.
func (e *env) newHandler(svc *service.Service) (http.Handler, error) {
	r := api.NewServer(svc,
		api.WithLogger(e.log.Named("api")),
		api.WithMaxBodyBytes(e.cfg.MaxBodyBytes),
		api.WithCORSOrigins(e.cfg.CORSOrigins),
	).Router()

	s, err := site.New(svc, site.WithLogger(e.log.Named("site")), site.WithMaxBodyBytes(e.cfg.MaxBodyBytes))
	if err != nil {
		return nil, err
	}
	s.Register(r)
	swagger.Register(r)
	return r, nil
}

func (e *env) serve(ctx context.Context) error {
	svc := e.newService()
	if err := svc.Start(ctx); err != nil {
		e.log.Error(ctx, "failed to start service", logger.Error(err))
		return err
	}
	defer svc.Stop()

	handler, err := e.newHandler(svc)
	if err != nil {
		return err
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              e.cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info(ctx, "starting HTTP server",
			logger.String("addr", e.cfg.Addr),
			logger.String("artifactDir", e.cfg.ArtifactDir),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			e.log.Error(ctx, "HTTP server failed", logger.Error(err))
			return err
		}
	case <-ctx.Done():
	}
	e.log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
		return err
	}
	e.log.Info(shutdownCtx, "server stopped")
	return nil
}

// startSystemMetricsUpdater refreshes system gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
