// Package chat wraps the remote chat completion API behind a small
// streaming-or-blocking adapter. Errors are delivered as a distinct event,
// never mixed into the token stream.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/Rorical/QuickPane/internal/models"
)

// Event is one item of a response stream: a content delta, the completion
// marker, or the error marker. Exactly one terminal event (Done or Err) ends
// every stream, after which the channel is closed.
type Event struct {
	Delta string
	Done  bool
	Err   error
}

type Client struct {
	api *openai.Client
}

// NewClient builds the adapter. Returns nil when no API key is configured;
// the coordinator treats a nil client as "chat unavailable" rather than
// failing startup.
func NewClient(apiKey, baseURL string) *Client {
	if apiKey == "" {
		return nil
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(clientConfig)}
}

func toAPIMessages(turns []models.Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}
	return msgs
}

// StreamChat sends the ordered conversation and returns a channel of token
// events. The channel is closed after the terminal event. The request
// goroutine owns the network call; cancelling ctx aborts it.
func (c *Client) StreamChat(ctx context.Context, model string, turns []models.Turn) <-chan Event {
	out := make(chan Event, 16)

	go func() {
		defer close(out)

		stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:    model,
			Messages: toAPIMessages(turns),
		})
		if err != nil {
			out <- Event{Err: fmt.Errorf("chat request failed: %w", err)}
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				out <- Event{Done: true}
				return
			}
			if err != nil {
				out <- Event{Err: fmt.Errorf("stream interrupted: %w", err)}
				return
			}
			if len(resp.Choices) > 0 && resp.Choices[0].Delta.Content != "" {
				out <- Event{Delta: resp.Choices[0].Delta.Content}
			}
		}
	}()

	return out
}

// Complete performs a single blocking completion. Used when streaming is
// disabled (QUICKPANE_NO_STREAM).
func (c *Client) Complete(ctx context.Context, model string, turns []models.Turn) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toAPIMessages(turns),
	})
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
