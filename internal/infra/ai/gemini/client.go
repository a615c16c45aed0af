package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	domai "github.com/bryanwahyu/leafsense/internal/domain/ai"
	"github.com/bryanwahyu/leafsense/internal/infra/ai/prompt"
)

// Client streams plant diagnoses from Gemini with the photo attached as an
// inline blob part.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	cli, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client init failed: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	model := cli.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.GetSystemPrompt())},
	}

	return &Client{client: cli, model: model}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error { return c.client.Close() }

// Stream makes one streamed vision exchange. Each response candidate's
// text parts are forwarded as fragments in arrival order.
func (c *Client) Stream(ctx context.Context, req domai.Request) (<-chan string, <-chan error) {
	frags := make(chan string, 100)
	errs := make(chan error, 1)

	go func() {
		defer close(frags)
		defer close(errs)

		iter := c.model.GenerateContentStream(ctx,
			genai.Text(prompt.GetUserPrompt(req.Environment, req.Previous)),
			genai.Blob{MIMEType: req.MIMEType, Data: req.Image},
		)

		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				errs <- classify(err)
				return
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				text, ok := part.(genai.Text)
				if !ok || text == "" {
					continue
				}
				select {
				case frags <- string(text):
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}
	}()

	return frags, errs
}

// classify maps provider quota errors onto the shared sentinel.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
	}
	return err
}
