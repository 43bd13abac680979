package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
	"github.com/nemanja-m/stylize/internal/pipeline/dataurl"
	"github.com/nemanja-m/stylize/internal/pipeline/extract"
	"github.com/nemanja-m/stylize/internal/shared/logging"
)

// TransformWorker runs one job end to end and records the outcome on the
// image. It implements core.JobRunner.
type TransformWorker struct {
	images       core.ImageStore
	styles       core.StyleStore
	client       core.TransformClient
	preprocessor core.Preprocessor
	extractor    *extract.Extractor
	callTimeout  time.Duration
	logger       logging.Logger
}

// NewTransformWorker builds a worker. preprocessor may be nil; callTimeout <= 0
// disables the per-call deadline.
func NewTransformWorker(
	images core.ImageStore,
	styles core.StyleStore,
	client core.TransformClient,
	preprocessor core.Preprocessor,
	callTimeout time.Duration,
	logger logging.Logger,
) *TransformWorker {
	return &TransformWorker{
		images:       images,
		styles:       styles,
		client:       client,
		preprocessor: preprocessor,
		extractor:    extract.New(),
		callTimeout:  callTimeout,
		logger:       logger,
	}
}

func (w *TransformWorker) Run(ctx context.Context, job *core.Job) {
	image, err := w.images.GetImage(ctx, job.ImageID)
	if err != nil {
		w.logger.Error("Failed to load image", "job_id", job.ID, "image_id", job.ImageID, "error", err)
		return
	}
	if image == nil {
		w.logger.Warn("Image not found, dropping job", "job_id", job.ID, "image_id", job.ImageID)
		return
	}

	started, err := w.images.UpdateImageStatus(ctx, image.ID, core.ImageStatusProcessing, "", "")
	if err != nil {
		w.logger.Warn("Cannot start job", "job_id", job.ID, "image_id", image.ID, "status", image.Status, "error", err)
		return
	}
	if started == nil {
		w.logger.Warn("Image disappeared before processing", "job_id", job.ID, "image_id", image.ID)
		return
	}

	w.logger.Info("Processing image", "job_id", job.ID, "image_id", image.ID, "style", job.Style)
	begin := time.Now()

	result, err := w.transform(ctx, job, image)

	// Terminal writes must land even if the scheduler is shutting down.
	writeCtx := context.WithoutCancel(ctx)
	if err != nil {
		w.fail(writeCtx, job, err)
		return
	}

	if _, err := w.images.UpdateImageStatus(writeCtx, image.ID, core.ImageStatusCompleted, result, ""); err != nil {
		w.logger.Error("Failed to store transformation result", "job_id", job.ID, "image_id", image.ID, "error", err)
		w.fail(writeCtx, job, fmt.Errorf("failed to store transformation result: %w", err))
		return
	}
	w.logger.Info("Image transformed", "job_id", job.ID, "image_id", image.ID, "duration", time.Since(begin))
}

func (w *TransformWorker) transform(ctx context.Context, job *core.Job, image *core.Image) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during transformation: %v", r)
		}
	}()

	style, err := w.styles.GetStyleByName(ctx, job.Style)
	if err != nil {
		return "", fmt.Errorf("failed to resolve style: %w", err)
	}
	if style == nil {
		return "", &core.StyleNotFoundError{Name: job.Style}
	}

	raw, _, err := dataurl.Decode(image.OriginalURL)
	if err != nil {
		return "", err
	}

	if w.preprocessor != nil {
		prepared, err := w.preprocessor.Prepare(raw)
		if err != nil {
			w.logger.Warn("Preprocessing failed, sending original image", "job_id", job.ID, "image_id", image.ID, "error", err)
		} else {
			raw = prepared
		}
	}

	callCtx := ctx
	if w.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, w.callTimeout)
		defer cancel()
	}

	text, err := w.client.Transform(callCtx, raw, style.PromptTemplate)
	if err != nil {
		return "", err
	}

	outcome := w.extractor.Extract(text)
	if err := outcome.Err(); err != nil {
		w.logger.Debug("Extraction failed", "job_id", job.ID, "kind", outcome.Kind, "response_bytes", len(text))
		return "", err
	}
	if outcome.LowConfidence {
		w.logger.Warn("Image extracted with low confidence", "job_id", job.ID, "image_id", image.ID, "kind", outcome.Kind)
	}
	return outcome.Payload, nil
}

func (w *TransformWorker) fail(ctx context.Context, job *core.Job, cause error) {
	msg := FailureMessage(cause)
	w.logger.Error("Image transformation failed", "job_id", job.ID, "image_id", job.ImageID, "error", cause)

	if _, err := w.images.UpdateImageStatus(ctx, job.ImageID, core.ImageStatusFailed, "", msg); err != nil {
		w.logger.Error("Failed to mark image failed", "job_id", job.ID, "image_id", job.ImageID, "error", err)
	}
}
