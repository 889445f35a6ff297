package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/atharv3903/navpath/internal/api"
	"github.com/atharv3903/navpath/internal/config"
	"github.com/atharv3903/navpath/internal/db"
	"github.com/atharv3903/navpath/internal/loader"
	"github.com/atharv3903/navpath/internal/logging"
	"github.com/atharv3903/navpath/internal/metrics"
)

func main() {
	cfg, err := config.FromFlagsServer(os.Args[1:])
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}
	logger := logging.New(cfg.Logging, os.Stderr)

	opts := api.Options{
		AdjCacheCap: cfg.AdjCacheCap,
		Logger:      logger,
	}

	switch cfg.Source {
	case config.SourceFile:
		opts.Source = loader.FileSource{Path: cfg.DataPath}
	case config.SourceMySQL:
		conn, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			logger.Error("open mysql", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		store := db.Store{DB: conn}
		opts.Source = store
		opts.Health = store.Ping
	case config.SourceS3:
		client, err := loader.NewMinioClient(cfg.S3)
		if err != nil {
			logger.Error("create s3 client", "error", err)
			os.Exit(1)
		}
		opts.Source = loader.BlobSource{Client: client, Bucket: cfg.S3.Bucket, Key: cfg.S3.Key}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts.Metrics = metrics.New(reg)
	opts.Gatherer = reg

	srv := api.New(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Reload(ctx); err != nil {
		logger.Error("initial graph load failed", "source", cfg.Source, "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{Addr: cfg.Addr, Handler: srv.Handler}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("NAVPATH listening", "addr", cfg.Addr, "source", cfg.Source)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
