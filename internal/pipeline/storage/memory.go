package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
)

type InMemoryImageStore struct {
	mu     sync.RWMutex
	images map[int64]*core.Image
	nextID int64
	now    func() time.Time
}

func NewInMemoryImageStore() *InMemoryImageStore {
	return &InMemoryImageStore{
		images: make(map[int64]*core.Image),
		nextID: 1,
		now:    time.Now,
	}
}

// CreateImage stores a copy of image as a new pending record and returns it
// with its assigned ID.
func (s *InMemoryImageStore) CreateImage(_ context.Context, image *core.Image) (*core.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stored := *image
	stored.ID = s.nextID
	stored.Status = core.ImageStatusPending
	stored.TransformedURL = ""
	stored.ErrorMessage = ""
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.images[stored.ID] = &stored
	s.nextID++

	out := stored
	return &out, nil
}

func (s *InMemoryImageStore) GetImage(_ context.Context, id int64) (*core.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	image, exists := s.images[id]
	if !exists {
		return nil, nil
	}
	out := *image
	return &out, nil
}

// ListImagesByUser returns the user's images, newest first.
func (s *InMemoryImageStore) ListImagesByUser(_ context.Context, userID int64) ([]*core.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	images := make([]*core.Image, 0)
	for _, image := range s.images {
		if image.UserID == userID {
			out := *image
			images = append(images, &out)
		}
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].ID > images[j].ID
	})
	return images, nil
}

func (s *InMemoryImageStore) UpdateImageStatus(_ context.Context, id int64, status core.ImageStatus, transformedURL, errorMessage string) (*core.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	image, exists := s.images[id]
	if !exists {
		return nil, nil
	}
	if err := core.ValidateStatusUpdate(image.Status, status, transformedURL, errorMessage); err != nil {
		return nil, err
	}

	applyStatus(image, status, transformedURL, errorMessage)
	image.UpdatedAt = s.now()

	out := *image
	return &out, nil
}

func applyStatus(image *core.Image, status core.ImageStatus, transformedURL, errorMessage string) {
	image.Status = status
	switch status {
	case core.ImageStatusCompleted:
		image.TransformedURL = transformedURL
		image.ErrorMessage = ""
	case core.ImageStatusFailed:
		image.TransformedURL = ""
		image.ErrorMessage = errorMessage
	}
}

type InMemoryStyleStore struct {
	mu     sync.RWMutex
	styles map[string]*core.Style
}

// NewInMemoryStyleStore builds a catalog from styles. IDs are assigned in
// order when missing.
func NewInMemoryStyleStore(styles []core.Style) *InMemoryStyleStore {
	s := &InMemoryStyleStore{styles: make(map[string]*core.Style, len(styles))}
	for i, style := range styles {
		if style.ID == 0 {
			style.ID = int64(i + 1)
		}
		s.styles[style.Name] = &style
	}
	return s
}

func (s *InMemoryStyleStore) GetStyleByName(_ context.Context, name string) (*core.Style, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	style, exists := s.styles[name]
	if !exists {
		return nil, nil
	}
	out := *style
	return &out, nil
}

func (s *InMemoryStyleStore) ListStyles(_ context.Context) ([]*core.Style, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	styles := make([]*core.Style, 0, len(s.styles))
	for _, style := range s.styles {
		out := *style
		styles = append(styles, &out)
	}
	sort.Slice(styles, func(i, j int) bool {
		return styles[i].ID < styles[j].ID
	})
	return styles, nil
}
