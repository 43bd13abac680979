package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nemanja-m/stylize/internal/pipeline/aiclient"
	"github.com/nemanja-m/stylize/internal/pipeline/batch"
	"github.com/nemanja-m/stylize/internal/pipeline/core"
	"github.com/nemanja-m/stylize/internal/pipeline/preprocess"
	"github.com/nemanja-m/stylize/internal/pipeline/service"
	"github.com/nemanja-m/stylize/internal/pipeline/storage"
	"github.com/nemanja-m/stylize/internal/shared/config"
	"github.com/nemanja-m/stylize/internal/shared/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		input      = flag.String("input", "", "comma-separated input glob patterns (** supported)")
		output     = flag.String("output", "", "output directory")
		style      = flag.String("style", "", "style name (see -list-styles)")
		userID     = flag.Int64("user", 1, "user id recorded on created images")
		listStyles = flag.Bool("list-styles", false, "print available styles and exit")
	)
	flag.Parse()

	cfg, err := config.LoadBatch(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to open storage", "driver", cfg.Storage.Driver, "error", err)
	}
	defer stores.Close()

	if *listStyles {
		styles, err := stores.Styles.ListStyles(ctx)
		if err != nil {
			logger.Fatal("Failed to list styles", "error", err)
		}
		for _, s := range styles {
			fmt.Printf("%-24s %s\n", s.Name, s.Description)
		}
		return
	}

	if *input == "" {
		logger.Fatal("Input pattern must be specified using the -input flag")
	}
	if *output == "" {
		logger.Fatal("Output directory must be specified using the -output flag")
	}
	if *style == "" {
		logger.Fatal("Style must be specified using the -style flag")
	}
	if s, err := stores.Styles.GetStyleByName(ctx, *style); err != nil || s == nil {
		logger.Fatal("Unknown style", "style", *style, "error", err)
	}

	paths, err := batch.FindImages(strings.Split(*input, ","))
	if err != nil {
		logger.Fatal("Failed to find input images", "error", err)
	}
	if len(paths) == 0 {
		logger.Fatal("No images matched", "input", *input)
	}

	var preprocessor core.Preprocessor
	if cfg.Preprocess.Enabled {
		preprocessor = preprocess.NewNormalizer(cfg.Preprocess)
	}

	client := aiclient.NewClient(cfg.AI, logger)
	worker := service.NewTransformWorker(stores.Images, stores.Styles, client, preprocessor, cfg.Queue.CallTimeout, logger)
	scheduler := service.NewScheduler(cfg.Queue, worker, logger)

	monitor := service.NewQueueMonitor(cfg.Monitor.Interval, scheduler, logger)
	go monitor.Start(ctx)

	runner := batch.NewRunner(stores.Images, scheduler, batch.Options{
		Style:        *style,
		UserID:       *userID,
		OutputDir:    *output,
		PollInterval: cfg.PollInterval,
	}, logger)

	outDir, results, runErr := runner.Run(ctx, paths)

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := scheduler.Stop(stopCtx); err != nil {
		logger.Warn("Transformations canceled on exit", "error", err)
	}

	completed, failed := 0, 0
	for _, r := range results {
		switch r.Status {
		case core.ImageStatusCompleted:
			completed++
		case core.ImageStatusFailed:
			failed++
			fmt.Fprintf(os.Stderr, "%s: %s\n", r.Path, r.Error)
		}
	}
	logger.Info("Batch summary", "completed", completed, "failed", failed, "total", len(results), "output", outDir)

	if runErr != nil {
		logger.Fatal("Batch interrupted", "error", runErr)
	}
	if failed > 0 {
		os.Exit(2)
	}
}
