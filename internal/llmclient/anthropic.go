package llmclient

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient builds an AnthropicClient, optionally redirecting it at
// a non-default base URL (the LLM node's config.base_url).
func NewAnthropicClient(apiKey, baseURL string) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...)}
}

func toAnthropicMessages(msgs []Message) ([]anthropic.MessageParam, string) {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	var system string
	for _, m := range msgs {
		switch m.Role {
		case "system":
			system = m.Content
		case "user":
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		default:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out, system
}

// Complete sends a non-streaming chat completion request.
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	messages, system := toAnthropicMessages(req.Messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(req.Model)),
		Messages:  anthropic.F(messages),
		MaxTokens: anthropic.F(int64(req.MaxTokens)),
	}
	if system != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{anthropic.NewTextBlock(system)})
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.F(float64(req.Temperature))
	}
	if req.TopP > 0 {
		params.TopP = anthropic.F(float64(req.TopP))
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	response := &CompletionResponse{
		Model: string(message.Model),
		Usage: Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}

	for _, content := range message.Content {
		switch content.Type {
		case anthropic.ContentBlockTypeText:
			response.Content += content.Text
		case anthropic.ContentBlockTypeToolUse:
			var args map[string]interface{}
			if content.Input != nil {
				raw, _ := json.Marshal(content.Input)
				_ = json.Unmarshal(raw, &args)
			}
			response.ToolCalls = append(response.ToolCalls, ToolCall{ID: content.ID, Name: content.Name, Arguments: args})
		}
	}

	return response, nil
}

// CompleteStream sends a streaming chat completion request, forwarding each
// text delta to callback and returning the fully-accumulated response.
func (c *AnthropicClient) CompleteStream(ctx context.Context, req CompletionRequest, callback StreamCallback) (*CompletionResponse, error) {
	messages, system := toAnthropicMessages(req.Messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(req.Model)),
		Messages:  anthropic.F(messages),
		MaxTokens: anthropic.F(int64(req.MaxTokens)),
	}
	if system != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{anthropic.NewTextBlock(system)})
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.F(float64(req.Temperature))
	}

	stream := c.client.Messages.NewStreaming(ctx, params)
	message := anthropic.Message{}

	var fullContent, responseID string
	for stream.Next() {
		event := stream.Current()
		message.Accumulate(event)

		switch event.Type {
		case anthropic.MessageStreamEventTypeMessageStart:
			if message.ID != "" {
				responseID = message.ID
			}
		case anthropic.MessageStreamEventTypeContentBlockDelta:
			if delta, ok := event.Delta.(anthropic.ContentBlockDeltaEventDelta); ok &&
				delta.Type == anthropic.ContentBlockDeltaEventDeltaTypeTextDelta && delta.Text != "" {
				fullContent += delta.Text
				if err := callback(StreamChunk{Content: delta.Text, Role: "assistant", ID: responseID}); err != nil {
					return nil, err
				}
			}
		case anthropic.MessageStreamEventTypeMessageStop:
			if err := callback(StreamChunk{Role: "assistant", FinishReason: string(message.StopReason), ID: responseID}); err != nil {
				return nil, err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}

	return &CompletionResponse{
		Content: fullContent,
		Model:   req.Model,
		Usage: Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

func (c *AnthropicClient) Name() string { return "anthropic" }
