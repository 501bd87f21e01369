package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client against the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient builds an OpenAIClient, optionally redirecting it at a
// non-default base URL (the LLM node's config.base_url), which is how
// OpenAI-compatible third-party endpoints get wired in.
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	if baseURL == "" {
		return &OpenAIClient{client: openai.NewClient(apiKey)}
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

func toOpenAITools(tools []Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, len(tools))
	for i, t := range tools {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

// Complete sends a non-streaming chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		Tools:       toOpenAITools(req.Tools),
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	response := &CompletionResponse{
		Model: resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		response.Content = choice.Message.Content
		if len(choice.Message.ToolCalls) > 0 {
			response.ToolCalls = make([]ToolCall, len(choice.Message.ToolCalls))
			for i, tc := range choice.Message.ToolCalls {
				var args map[string]interface{}
				_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
				response.ToolCalls[i] = ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args}
			}
		}
	}

	return response, nil
}

// CompleteStream sends a streaming chat completion request, forwarding each
// delta to callback and returning the fully-accumulated response.
func (c *OpenAIClient) CompleteStream(ctx context.Context, req CompletionRequest, callback StreamCallback) (*CompletionResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		Tools:       toOpenAITools(req.Tools),
		Stream:      true,
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var fullContent, responseID, finishReason string
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if responseID == "" {
			responseID = chunk.ID
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		content := choice.Delta.Content
		if choice.FinishReason != "" {
			finishReason = string(choice.FinishReason)
		}
		fullContent += content
		if content != "" || finishReason != "" {
			if err := callback(StreamChunk{Content: content, Role: "assistant", FinishReason: finishReason, ID: responseID}); err != nil {
				return nil, err
			}
		}
	}

	return &CompletionResponse{Content: fullContent, Model: req.Model}, nil
}

func (c *OpenAIClient) Name() string { return "openai" }
