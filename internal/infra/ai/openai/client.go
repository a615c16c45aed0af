package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/leafsense/internal/domain/ai"
	"github.com/bryanwahyu/leafsense/internal/infra/ai/prompt"
)

const maxTokens = 2048

// Client streams plant diagnoses from the OpenAI chat-completions API
// with the photo attached as an inline data URL.
type Client struct {
	api   *openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{api: openai.NewClient(apiKey), Model: model}
}

// Stream makes one streamed vision exchange. Fragments are the raw content
// deltas in arrival order; both channels close when the exchange ends.
func (c *Client) Stream(ctx context.Context, req domai.Request) (<-chan string, <-chan error) {
	frags := make(chan string, 100)
	errs := make(chan error, 1)

	go func() {
		defer close(frags)
		defer close(errs)

		model := c.Model
		if model == "" {
			model = "gpt-4o"
		}

		dataURL := fmt.Sprintf("data:%s;base64,%s",
			req.MIMEType, base64.StdEncoding.EncodeToString(req.Image))

		chatReq := openai.ChatCompletionRequest{
			Model:     model,
			MaxTokens: maxTokens,
			Stream:    true,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: prompt.GetUserPrompt(req.Environment, req.Previous),
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    dataURL,
								Detail: openai.ImageURLDetailAuto,
							},
						},
					},
				},
			},
		}

		stream, err := c.api.CreateChatCompletionStream(ctx, chatReq)
		if err != nil {
			errs <- classify(err)
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errs <- classify(err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case frags <- delta:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return frags, errs
}

// classify maps provider quota errors onto the shared sentinel.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
	}
	return err
}
