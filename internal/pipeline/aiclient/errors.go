package aiclient

import (
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
)

// APIError is a non-2xx answer from the transformation service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string

	err error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("transformation service error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("transformation service error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// IsContentFilter reports whether the service refused the input on policy grounds.
func (e *APIError) IsContentFilter() bool {
	if e.Code == "content_filter" || e.Code == "content_policy_violation" {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "moderation") || strings.Contains(msg, "content policy")
}

func convertError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		converted := &APIError{
			StatusCode: apiErr.HTTPStatusCode,
			Code:       codeString(apiErr.Code),
			Message:    apiErr.Message,
			err:        err,
		}
		if converted.IsContentFilter() {
			return fmt.Errorf("%w: %w", core.ErrContentRejected, converted)
		}
		return converted
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &APIError{
			StatusCode: reqErr.HTTPStatusCode,
			Message:    msg,
			err:        err,
		}
	}

	return err
}

func codeString(code any) string {
	switch c := code.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
