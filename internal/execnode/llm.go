package execnode

import (
	"context"
	"encoding/json"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/llmclient"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// LLMConfig is the declarative config for an LLM node. Provider defaults to
// "anthropic"; set it to "openai" to talk to an OpenAI-compatible endpoint
// (BaseURL then addresses that endpoint instead of the provider default).
type LLMConfig struct {
	Provider     string  `json:"provider"`
	BaseURL      string  `json:"base_url"`
	APIKey       string  `json:"api_key"`
	Model        string  `json:"model"`
	SystemPrompt string  `json:"system_prompt"`
	Temperature  float32 `json:"temperature"`
	TopP         float32 `json:"top_p"`
	Prompt       string  `json:"prompt"`
}

// ClientFactory builds an llmclient.Client for a given provider name. Tests
// substitute a fake factory; production wiring installs the real one.
type ClientFactory func(cfg LLMConfig) llmclient.Client

// DefaultClientFactory dispatches on cfg.Provider, defaulting to Anthropic.
func DefaultClientFactory(cfg LLMConfig) llmclient.Client {
	switch cfg.Provider {
	case "openai":
		return llmclient.NewOpenAIClient(cfg.APIKey, cfg.BaseURL)
	default:
		return llmclient.NewAnthropicClient(cfg.APIKey, cfg.BaseURL)
	}
}

// LLMNode sends its text input, plus an optional system prompt, through a
// chat-completion collaborator and returns the assistant's text.
type LLMNode struct {
	base    NodeBase
	cfg     LLMConfig
	factory ClientFactory
}

// NewLLMNode parses config and binds a client factory (DefaultClientFactory
// if factory is nil).
func NewLLMNode(base NodeBase, config json.RawMessage, factory ClientFactory) (*LLMNode, error) {
	var cfg LLMConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, wferrors.NodeConfigMissing(base.ID, "llm node config malformed: "+err.Error())
	}
	if cfg.Model == "" {
		return nil, wferrors.NodeConfigMissing(base.ID, "llm node requires a model")
	}
	if factory == nil {
		factory = DefaultClientFactory
	}
	return &LLMNode{base: base, cfg: cfg, factory: factory}, nil
}

func (n *LLMNode) Base() *NodeBase { return &n.base }

func (n *LLMNode) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	return n.base.ProcessInput(ctx, input)
}

func (n *LLMNode) CoreExecute(ctx context.Context, input *flowdata.FlowData, _ Context) (flowdata.FlowOutput, error) {
	if input == nil {
		return flowdata.FlowOutput{}, wferrors.ExecutionError(n.base.ID, "llm node requires input")
	}
	text, err := input.AsText()
	if err != nil {
		return flowdata.FlowOutput{}, wferrors.ExecutionError(n.base.ID, "llm node requires text input: "+err.Error())
	}

	var messages []llmclient.Message
	if n.cfg.SystemPrompt != "" {
		messages = append(messages, llmclient.Message{Role: "system", Content: n.cfg.SystemPrompt})
	}
	messages = append(messages, llmclient.Message{Role: "user", Content: text})

	client := n.factory(n.cfg)
	resp, err := client.Complete(ctx, llmclient.CompletionRequest{
		Model:       n.cfg.Model,
		Messages:    messages,
		Temperature: n.cfg.Temperature,
		TopP:        n.cfg.TopP,
	})
	if err != nil {
		return flowdata.FlowOutput{}, wferrors.Transport("llm", err)
	}

	return flowdata.Data(flowdata.NewTextData(resp.Content)), nil
}

func (n *LLMNode) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	return n.base.ProcessOutput(ctx, output)
}
