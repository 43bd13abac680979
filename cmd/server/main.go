package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nemanja-m/stylize/internal/pipeline/aiclient"
	"github.com/nemanja-m/stylize/internal/pipeline/api/grpc"
	"github.com/nemanja-m/stylize/internal/pipeline/api/rest"
	"github.com/nemanja-m/stylize/internal/pipeline/core"
	"github.com/nemanja-m/stylize/internal/pipeline/preprocess"
	"github.com/nemanja-m/stylize/internal/pipeline/service"
	"github.com/nemanja-m/stylize/internal/pipeline/storage"
	"github.com/nemanja-m/stylize/internal/shared/config"
	"github.com/nemanja-m/stylize/internal/shared/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to open storage", "driver", cfg.Storage.Driver, "error", err)
	}
	defer stores.Close()

	var preprocessor core.Preprocessor
	if cfg.Preprocess.Enabled {
		preprocessor = preprocess.NewNormalizer(cfg.Preprocess)
	}

	client := aiclient.NewClient(cfg.AI, logger)
	worker := service.NewTransformWorker(stores.Images, stores.Styles, client, preprocessor, cfg.Queue.CallTimeout, logger)
	scheduler := service.NewScheduler(cfg.Queue, worker, logger)

	monitor := service.NewQueueMonitor(cfg.Monitor.Interval, scheduler, logger)
	go monitor.Start(ctx)

	api := rest.NewAPI(stores.Images, stores.Styles, scheduler, logger)
	httpServer := rest.NewServer(cfg.REST, api, logger)
	go func() {
		logger.Info("Starting REST server", "addr", cfg.REST.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("REST server error", "error", err)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		grpcServer = grpc.NewServer(cfg.GRPC, logger)
		grpcServer.SetServing(true)
		go func() {
			if err := grpcServer.Start(); err != nil {
				logger.Fatal("gRPC server error", "error", err)
			}
		}()
	}

	logger.Info("Server started",
		"max_concurrent", cfg.Queue.MaxConcurrent,
		"model", cfg.AI.Model,
		"storage", cfg.Storage.Driver,
		"preprocess", cfg.Preprocess.Enabled,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	if grpcServer != nil {
		grpcServer.SetServing(false)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("REST server forced to shutdown", "error", err)
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Error("Transformations canceled on shutdown", "error", err)
	}
	cancel()
	if grpcServer != nil {
		grpcServer.Stop()
	}

	logger.Info("Server stopped")
}
