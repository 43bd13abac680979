// Package aiclient implements core.TransformClient against an
// OpenAI-compatible chat completions endpoint.
package aiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
	"github.com/nemanja-m/stylize/internal/pipeline/dataurl"
	"github.com/nemanja-m/stylize/internal/shared/config"
	"github.com/nemanja-m/stylize/internal/shared/logging"
)

const (
	DefaultMaxTokens        = 4096
	DefaultMaxResponseBytes = 32 << 20
)

type Client struct {
	api              *openai.Client
	model            string
	maxTokens        int
	stream           bool
	maxResponseBytes int
	logger           logging.Logger
}

func NewClient(cfg config.AIConfig, logger logging.Logger) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	maxResponseBytes := cfg.MaxResponseBytes
	if maxResponseBytes <= 0 {
		maxResponseBytes = DefaultMaxResponseBytes
	}

	return &Client{
		api:              openai.NewClientWithConfig(clientCfg),
		model:            cfg.Model,
		maxTokens:        maxTokens,
		stream:           cfg.Stream,
		maxResponseBytes: maxResponseBytes,
		logger:           logger,
	}
}

// Transform sends the image with the prompt and returns the whole response text.
func (c *Client) Transform(ctx context.Context, image []byte, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataurl.Encode(image, "")},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
				},
			},
		},
	}

	var (
		text string
		err  error
	)
	if c.stream {
		text, err = c.transformStream(ctx, req)
	} else {
		text, err = c.transformOnce(ctx, req)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", core.ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) transformOnce(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", convertError(err)
	}
	if len(resp.Choices) == 0 {
		return "", core.ErrEmptyResponse
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: finish reason %s", core.ErrContentRejected, choice.FinishReason)
	}
	if len(choice.Message.Content) > c.maxResponseBytes {
		return "", fmt.Errorf("%w: %d bytes", core.ErrResponseTooLarge, len(choice.Message.Content))
	}
	return choice.Message.Content, nil
}

func (c *Client) transformStream(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	req.Stream = true
	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", convertError(err)
	}
	defer stream.Close()

	var (
		sb     strings.Builder
		chunks int
	)
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", convertError(err)
		}
		chunks++
		if len(resp.Choices) == 0 {
			continue
		}

		choice := resp.Choices[0]
		if choice.FinishReason == openai.FinishReasonContentFilter {
			return "", fmt.Errorf("%w: finish reason %s", core.ErrContentRejected, choice.FinishReason)
		}
		if sb.Len()+len(choice.Delta.Content) > c.maxResponseBytes {
			return "", fmt.Errorf("%w: more than %d bytes", core.ErrResponseTooLarge, c.maxResponseBytes)
		}
		sb.WriteString(choice.Delta.Content)
	}

	c.logger.Debug("Transformation stream finished", "chunks", chunks, "bytes", sb.Len())
	return sb.String(), nil
}
