package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition   = errors.New("invalid image status transition")
	ErrMissingResult       = errors.New("completed image requires a transformed url")
	ErrMissingErrorMessage = errors.New("failed image requires an error message")
	ErrStyleNotFound       = errors.New("style not found")

	// Errors surfaced by TransformClient implementations.
	ErrContentRejected  = errors.New("content rejected by moderation")
	ErrEmptyResponse    = errors.New("empty response from transformation service")
	ErrResponseTooLarge = errors.New("transformation response exceeds size limit")
)

// StyleNotFoundError names the style a job asked for.
type StyleNotFoundError struct {
	Name string
}

func (e *StyleNotFoundError) Error() string {
	return fmt.Sprintf("style %q not found", e.Name)
}

func (e *StyleNotFoundError) Unwrap() error {
	return ErrStyleNotFound
}
