package service

import (
	"context"
	"errors"
	"net"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
	"github.com/nemanja-m/stylize/internal/pipeline/dataurl"
	"github.com/nemanja-m/stylize/internal/pipeline/extract"
)

const (
	MsgNetwork         = "network timeout while contacting the transformation service, please try again later"
	MsgContentRejected = "content rejected by moderation: please try a different image or style"
	MsgEmptyResponse   = "the transformation service returned an empty response"
	MsgInvalidOriginal = "invalid original image data"
	MsgCanceled        = "transformation canceled because the service is shutting down"
)

// FailureMessage maps a transformation error to the message stored on the
// failed image.
func FailureMessage(err error) string {
	var (
		styleErr  *core.StyleNotFoundError
		rejection *extract.RejectionError
		netErr    net.Error
	)

	switch {
	case errors.As(err, &styleErr):
		return styleErr.Error()
	case errors.Is(err, dataurl.ErrInvalid):
		return MsgInvalidOriginal
	case errors.Is(err, core.ErrContentRejected):
		return MsgContentRejected
	case errors.As(err, &rejection):
		return rejection.Error()
	case errors.Is(err, extract.ErrNoImageData):
		return extract.ErrNoImageData.Error()
	case errors.Is(err, core.ErrEmptyResponse):
		return MsgEmptyResponse
	case errors.Is(err, context.DeadlineExceeded):
		return MsgNetwork
	case errors.Is(err, context.Canceled):
		return MsgCanceled
	case errors.As(err, &netErr):
		return MsgNetwork
	default:
		return "transformation failed: " + err.Error()
	}
}
