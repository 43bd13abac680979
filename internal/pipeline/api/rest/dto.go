package rest

import (
	"time"
)

type UploadImagesRequest struct {
	UserID int64         `json:"user_id"`
	Style  string        `json:"style"`
	Images []ImageUpload `json:"images"`
}

type ImageUpload struct {
	Filename string `json:"filename"`
	Data     string `json:"data"` // data:image/...;base64,...
}

type UploadImagesResponse struct {
	Images []ImageResponse `json:"images"`
}

type TransformRequest struct {
	UserID   int64   `json:"user_id"`
	Style    string  `json:"style"`
	ImageIDs []int64 `json:"image_ids"`
	Priority int     `json:"priority,omitempty"`
}

type TransformResponse struct {
	Message   string              `json:"message"`
	JobIDs    []uint64            `json:"job_ids"`
	TotalCost int                 `json:"total_cost"`
	Queue     QueueStatusResponse `json:"queue"`
}

type ImageResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	OriginalURL    string    `json:"original_url"`
	TransformedURL *string   `json:"transformed_url"`
	Style          string    `json:"style"`
	Status         string    `json:"status"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type StyleResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	PointCost        int    `json:"point_cost"`
	ExampleBeforeURL string `json:"example_before_url,omitempty"`
	ExampleAfterURL  string `json:"example_after_url,omitempty"`
}

type QueueStatusResponse struct {
	QueueLength       int  `json:"queue_length"`
	IsProcessing      bool `json:"is_processing"`
	CurrentProcessing int  `json:"current_processing"`
}

type ClearQueueResponse struct {
	Cleared int `json:"cleared"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
