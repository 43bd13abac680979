package rest

import (
	"github.com/nemanja-m/stylize/internal/pipeline/core"
)

func (req *UploadImagesRequest) ToImages() []*core.Image {
	images := make([]*core.Image, 0, len(req.Images))
	for _, upload := range req.Images {
		images = append(images, &core.Image{
			UserID:      req.UserID,
			OriginalURL: upload.Data,
			Style:       req.Style,
			Status:      core.ImageStatusPending,
		})
	}
	return images
}

func ToImageResponse(image *core.Image) ImageResponse {
	resp := ImageResponse{
		ID:          image.ID,
		UserID:      image.UserID,
		OriginalURL: image.OriginalURL,
		Style:       image.Style,
		Status:      string(image.Status),
		CreatedAt:   image.CreatedAt.UTC(),
		UpdatedAt:   image.UpdatedAt.UTC(),
	}
	if image.TransformedURL != "" {
		url := image.TransformedURL
		resp.TransformedURL = &url
	}
	if image.ErrorMessage != "" {
		msg := image.ErrorMessage
		resp.ErrorMessage = &msg
	}
	return resp
}

func ToImageResponses(images []*core.Image) []ImageResponse {
	resp := make([]ImageResponse, 0, len(images))
	for _, image := range images {
		resp = append(resp, ToImageResponse(image))
	}
	return resp
}

// ToStyleResponse omits the prompt template, which stays server-side.
func ToStyleResponse(style *core.Style) StyleResponse {
	return StyleResponse{
		ID:               style.ID,
		Name:             style.Name,
		Description:      style.Description,
		PointCost:        style.PointCost,
		ExampleBeforeURL: style.ExampleBeforeURL,
		ExampleAfterURL:  style.ExampleAfterURL,
	}
}

func ToQueueStatusResponse(status core.QueueStatus) QueueStatusResponse {
	return QueueStatusResponse{
		QueueLength:       status.PendingCount,
		IsProcessing:      status.IsProcessing,
		CurrentProcessing: status.CurrentProcessing,
	}
}
