package core

import (
	"time"
)

type ImageStatus string

const (
	ImageStatusPending    ImageStatus = "pending"
	ImageStatusProcessing ImageStatus = "processing"
	ImageStatusCompleted  ImageStatus = "completed"
	ImageStatusFailed     ImageStatus = "failed"
)

// IsTerminal reports whether no further transition may leave the status.
func (s ImageStatus) IsTerminal() bool {
	return s == ImageStatusCompleted || s == ImageStatusFailed
}

func (s ImageStatus) IsValid() bool {
	switch s {
	case ImageStatusPending, ImageStatusProcessing, ImageStatusCompleted, ImageStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s.
// Terminal statuses are reachable only from processing.
func (s ImageStatus) CanTransitionTo(next ImageStatus) bool {
	switch s {
	case ImageStatusPending:
		return next == ImageStatusProcessing
	case ImageStatusProcessing:
		return next == ImageStatusCompleted || next == ImageStatusFailed
	}
	return false
}

// PreviousStatuses returns the statuses from which next may be entered.
func PreviousStatuses(next ImageStatus) []ImageStatus {
	var prev []ImageStatus
	for _, s := range []ImageStatus{ImageStatusPending, ImageStatusProcessing, ImageStatusCompleted, ImageStatusFailed} {
		if s.CanTransitionTo(next) {
			prev = append(prev, s)
		}
	}
	return prev
}

type Image struct {
	ID             int64
	UserID         int64
	OriginalURL    string
	TransformedURL string
	Style          string
	Status         ImageStatus
	ErrorMessage   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Style struct {
	ID               int64
	Name             string
	Description      string
	PointCost        int
	PromptTemplate   string
	ExampleBeforeURL string
	ExampleAfterURL  string
}

// Job is one pending or in-flight transformation request. It lives only in
// the scheduler and is discarded once its worker returns.
type Job struct {
	ID        uint64
	ImageID   int64
	Style     string
	UserID    int64
	Priority  int
	CreatedAt time.Time
}

type QueueStatus struct {
	PendingCount      int
	IsProcessing      bool
	CurrentProcessing int
}
