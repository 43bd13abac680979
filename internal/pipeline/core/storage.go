package core

import "context"

// ImageStore persists Image records. Get and update return (nil, nil) when
// the image does not exist.
type ImageStore interface {
	CreateImage(ctx context.Context, image *Image) (*Image, error)
	GetImage(ctx context.Context, id int64) (*Image, error)
	ListImagesByUser(ctx context.Context, userID int64) ([]*Image, error)

	// UpdateImageStatus moves an image to status. transformedURL is stored only
	// for completed, errorMessage only for failed; empty strings mean "absent".
	UpdateImageStatus(ctx context.Context, id int64, status ImageStatus, transformedURL, errorMessage string) (*Image, error)
}

type StyleStore interface {
	GetStyleByName(ctx context.Context, name string) (*Style, error)
	ListStyles(ctx context.Context) ([]*Style, error)
}

// ValidateStatusUpdate checks the state machine and the result invariants for
// an update from current to next.
func ValidateStatusUpdate(current, next ImageStatus, transformedURL, errorMessage string) error {
	if !current.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	switch next {
	case ImageStatusCompleted:
		if transformedURL == "" {
			return ErrMissingResult
		}
	case ImageStatusFailed:
		if errorMessage == "" {
			return ErrMissingErrorMessage
		}
	}
	return nil
}
