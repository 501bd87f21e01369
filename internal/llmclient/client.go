// Package llmclient defines the pluggable chat-completion collaborator the
// LLM node sends its prompt through, plus Anthropic and OpenAI
// implementations.
package llmclient

import "context"

// Message is one turn in a chat completion request.
type Message struct {
	Role    string
	Content string
}

// Tool describes a function the model may call (accepted by providers that
// support tool use; the LLM node itself never populates this today).
type Tool struct {
	Name        string
	Description string
	Parameters  interface{}
}

// ToolCall is a model-requested invocation of a Tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest is a provider-agnostic chat completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	TopP        float32
	MaxTokens   int
	Tools       []Tool
	Stream      bool
}

// CompletionResponse is a provider-agnostic chat completion result.
type CompletionResponse struct {
	Content   string
	ToolCalls []ToolCall
	Model     string
	Usage     Usage
}

// StreamChunk is one increment of a streamed completion.
type StreamChunk struct {
	Content      string
	Role         string
	FinishReason string
	ID           string
}

// StreamCallback receives each StreamChunk as it arrives.
type StreamCallback func(StreamChunk) error

// Client is the contract an LLM node sends its chat request through.
//
// CompleteStream and the Tool/ToolCall types are carried over from the
// teacher's richer tool-calling client as-is; today's LLM node only ever
// calls Complete with a plain [system?, user] turn, so they have no
// current caller. They're kept rather than trimmed because they're the
// natural extension point for a future streaming or tool-use node variant
// over this same contract.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	CompleteStream(ctx context.Context, req CompletionRequest, callback StreamCallback) (*CompletionResponse, error)
	Name() string
}
