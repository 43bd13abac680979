package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
	"github.com/nemanja-m/stylize/internal/pipeline/dataurl"
	"github.com/nemanja-m/stylize/internal/shared/config"
	"github.com/nemanja-m/stylize/internal/shared/logging"
)

const MaxImagesPerUpload = 50

// Queue is the scheduler surface the API needs.
type Queue interface {
	core.QueueService
	Clear() int
}

type API struct {
	images core.ImageStore
	styles core.StyleStore
	queue  Queue
	logger logging.Logger
}

func NewAPI(images core.ImageStore, styles core.StyleStore, queue Queue, logger logging.Logger) *API {
	return &API{
		images: images,
		styles: styles,
		queue:  queue,
		logger: logger,
	}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/images", a.uploadImages)
	mux.HandleFunc("GET /api/images", a.listImages)
	mux.HandleFunc("GET /api/images/{id}", a.getImage)
	mux.HandleFunc("POST /api/transform", a.transform)
	mux.HandleFunc("GET /api/queue/status", a.queueStatus)
	mux.HandleFunc("DELETE /api/queue", a.clearQueue)
	mux.HandleFunc("GET /api/styles", a.listStyles)
}

// uploadImages handles POST /api/images
func (a *API) uploadImages(w http.ResponseWriter, r *http.Request) {
	var req UploadImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondDecodeError(w, err)
		return
	}
	if err := validateUploadRequest(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	created := make([]*core.Image, 0, len(req.Images))
	for _, image := range req.ToImages() {
		saved, err := a.images.CreateImage(r.Context(), image)
		if err != nil {
			a.logger.Error("Failed to create image", "user_id", req.UserID, "error", err)
			a.respondError(w, http.StatusInternalServerError, "failed to store image", "")
			return
		}
		created = append(created, saved)
	}

	a.logger.Info("Images uploaded", "user_id", req.UserID, "count", len(created))
	a.respondJSON(w, http.StatusCreated, UploadImagesResponse{Images: ToImageResponses(created)})
}

// listImages handles GET /api/images?user_id=
func (a *API) listImages(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		a.respondError(w, http.StatusBadRequest, "user_id query parameter required", "")
		return
	}

	images, err := a.images.ListImagesByUser(r.Context(), userID)
	if err != nil {
		a.logger.Error("Failed to list images", "user_id", userID, "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to list images", "")
		return
	}
	a.respondJSON(w, http.StatusOK, ToImageResponses(images))
}

// getImage handles GET /api/images/{id}
func (a *API) getImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid image ID", "")
		return
	}

	image, err := a.images.GetImage(r.Context(), id)
	if err != nil {
		a.logger.Error("Failed to get image", "image_id", id, "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to get image", "")
		return
	}
	if image == nil {
		a.respondError(w, http.StatusNotFound, "image not found", "")
		return
	}
	a.respondJSON(w, http.StatusOK, ToImageResponse(image))
}

// transform handles POST /api/transform
func (a *API) transform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondDecodeError(w, err)
		return
	}
	if err := validateTransformRequest(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	style, err := a.styles.GetStyleByName(r.Context(), req.Style)
	if err != nil {
		a.logger.Error("Failed to get style", "style", req.Style, "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to get style", "")
		return
	}
	if style == nil {
		a.respondError(w, http.StatusNotFound, "style not found", req.Style)
		return
	}

	for _, id := range req.ImageIDs {
		image, err := a.images.GetImage(r.Context(), id)
		if err != nil {
			a.logger.Error("Failed to get image", "image_id", id, "error", err)
			a.respondError(w, http.StatusInternalServerError, "failed to get image", "")
			return
		}
		if image == nil || image.UserID != req.UserID {
			a.respondError(w, http.StatusNotFound, "image not found", fmt.Sprintf("image %d", id))
			return
		}
	}

	jobIDs := make([]uint64, 0, len(req.ImageIDs))
	for _, id := range req.ImageIDs {
		jobID, err := a.queue.Enqueue(id, req.Style, req.UserID, req.Priority)
		if err != nil {
			a.logger.Error("Failed to enqueue image", "image_id", id, "error", err)
			a.respondError(w, http.StatusServiceUnavailable, "transformation queue unavailable", err.Error())
			return
		}
		jobIDs = append(jobIDs, jobID)
	}

	status := a.queue.Status()
	a.logger.Info("Transformation started",
		"user_id", req.UserID,
		"style", req.Style,
		"images", len(jobIDs),
		"queue_length", status.PendingCount,
		"processing", status.CurrentProcessing,
	)

	a.respondJSON(w, http.StatusAccepted, TransformResponse{
		Message:   "Transformation started",
		JobIDs:    jobIDs,
		TotalCost: style.PointCost * len(jobIDs),
		Queue:     ToQueueStatusResponse(status),
	})
}

// queueStatus handles GET /api/queue/status
func (a *API) queueStatus(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, ToQueueStatusResponse(a.queue.Status()))
}

// clearQueue handles DELETE /api/queue
func (a *API) clearQueue(w http.ResponseWriter, r *http.Request) {
	cleared := a.queue.Clear()
	a.respondJSON(w, http.StatusOK, ClearQueueResponse{Cleared: cleared})
}

// listStyles handles GET /api/styles
func (a *API) listStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := a.styles.ListStyles(r.Context())
	if err != nil {
		a.logger.Error("Failed to list styles", "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to list styles", "")
		return
	}
	resp := make([]StyleResponse, 0, len(styles))
	for _, style := range styles {
		resp = append(resp, ToStyleResponse(style))
	}
	a.respondJSON(w, http.StatusOK, resp)
}

func validateUploadRequest(req *UploadImagesRequest) error {
	if req.UserID <= 0 {
		return fmt.Errorf("user_id is required")
	}
	if req.Style == "" {
		return fmt.Errorf("style is required")
	}
	if len(req.Images) == 0 {
		return fmt.Errorf("no images provided")
	}
	if len(req.Images) > MaxImagesPerUpload {
		return fmt.Errorf("maximum of %d images allowed", MaxImagesPerUpload)
	}
	for i, image := range req.Images {
		if !dataurl.IsDataURL(image.Data) {
			name := image.Filename
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return fmt.Errorf("invalid base64 data for image %s", name)
		}
	}
	return nil
}

func validateTransformRequest(req *TransformRequest) error {
	if req.UserID <= 0 {
		return fmt.Errorf("user_id is required")
	}
	if req.Style == "" {
		return fmt.Errorf("style is required")
	}
	if len(req.ImageIDs) == 0 {
		return fmt.Errorf("at least one image id is required")
	}
	return nil
}

func (a *API) respondDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		a.respondError(w, http.StatusRequestEntityTooLarge, "request body too large", err.Error())
		return
	}
	a.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
}

func (a *API) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Warn("Failed to write response", "error", err)
	}
}

func (a *API) respondError(w http.ResponseWriter, statusCode int, error string, message string) {
	resp := ErrorResponse{
		Error:   error,
		Message: message,
		Code:    statusCode,
	}
	a.respondJSON(w, statusCode, resp)
}

func NewServer(cfg config.RESTConfig, api *API, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	handler := ChainMiddleware(
		mux,
		RequestIDMiddleware,
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		MaxBytesMiddleware(cfg.MaxBodyBytes),
	)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
