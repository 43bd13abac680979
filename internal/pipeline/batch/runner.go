// Package batch transforms local image files through the pipeline and writes
// the results to disk.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
	"github.com/nemanja-m/stylize/internal/shared/logging"
)

type Options struct {
	Style        string
	UserID       int64
	OutputDir    string
	PollInterval time.Duration
}

// Result describes what happened to one input file.
type Result struct {
	Path    string
	ImageID int64
	Status  core.ImageStatus
	Output  string
	Error   string
}

type Runner struct {
	images core.ImageStore
	queue  core.QueueService
	opts   Options
	logger logging.Logger
}

func NewRunner(images core.ImageStore, queue core.QueueService, opts Options, logger logging.Logger) *Runner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &Runner{
		images: images,
		queue:  queue,
		opts:   opts,
		logger: logger,
	}
}

// Run submits every file, waits until all submitted images are terminal and
// writes their results into a fresh directory under OutputDir. Results keep
// the order of paths.
func (r *Runner) Run(ctx context.Context, paths []string) (string, []Result, error) {
	runID := uuid.New()
	outDir := filepath.Join(r.opts.OutputDir, runID.String())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	r.logger.Info("Starting batch", "run_id", runID, "files", len(paths), "style", r.opts.Style, "output", outDir)

	results := make([]Result, len(paths))
	pending := make(map[int64]int)
	for i, path := range paths {
		results[i] = Result{Path: path}

		imageID, err := r.submit(ctx, path)
		results[i].ImageID = imageID
		if err != nil {
			r.logger.Error("Failed to submit image", "path", path, "image_id", imageID, "error", err)
			results[i].Status = core.ImageStatusFailed
			results[i].Error = err.Error()
			continue
		}
		results[i].Status = core.ImageStatusPending
		pending[imageID] = i
	}

	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return outDir, results, ctx.Err()
		case <-ticker.C:
		}

		for imageID, i := range pending {
			image, err := r.images.GetImage(ctx, imageID)
			if err != nil {
				r.logger.Warn("Failed to poll image", "image_id", imageID, "error", err)
				continue
			}
			if image == nil {
				results[i].Status = core.ImageStatusFailed
				results[i].Error = "image record disappeared"
				delete(pending, imageID)
				continue
			}
			results[i].Status = image.Status
			if !image.Status.IsTerminal() {
				continue
			}

			delete(pending, imageID)
			r.finish(outDir, &results[i], image)
		}

		status := r.queue.Status()
		r.logger.Debug("Batch progress", "remaining", len(pending), "queue_pending", status.PendingCount, "queue_processing", status.CurrentProcessing)
	}

	r.logger.Info("Batch finished", "run_id", runID, "output", outDir)
	return outDir, results, nil
}

// submit creates the image record and enqueues it. When enqueueing fails the
// created id is still returned; that record stays pending.
func (r *Runner) submit(ctx context.Context, path string) (int64, error) {
	original, err := LoadImage(path)
	if err != nil {
		return 0, err
	}
	image, err := r.images.CreateImage(ctx, &core.Image{
		UserID:      r.opts.UserID,
		OriginalURL: original,
		Style:       r.opts.Style,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create image: %w", err)
	}
	if _, err := r.queue.Enqueue(image.ID, r.opts.Style, r.opts.UserID, 0); err != nil {
		r.logger.Warn("Image created but not enqueued, record left pending", "path", path, "image_id", image.ID)
		return image.ID, fmt.Errorf("failed to enqueue image %d: %w", image.ID, err)
	}
	return image.ID, nil
}

func (r *Runner) finish(outDir string, result *Result, image *core.Image) {
	if image.Status == core.ImageStatusFailed {
		result.Error = image.ErrorMessage
		r.logger.Warn("Image failed", "path", result.Path, "image_id", image.ID, "reason", image.ErrorMessage)
		return
	}

	name := fmt.Sprintf("%d-%s", image.ID, filepath.Base(result.Path))
	out, err := WriteResult(outDir, name, image.TransformedURL)
	if err != nil {
		result.Error = fmt.Sprintf("failed to write result: %v", err)
		r.logger.Error("Failed to write result", "path", result.Path, "image_id", image.ID, "error", err)
		return
	}
	result.Output = out
	r.logger.Info("Image done", "path", result.Path, "image_id", image.ID, "output", out)
}
