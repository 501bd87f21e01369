package main

import (
	"github.com/duragraph/workflow-go/cmd/duragraphctl/config"
	"github.com/duragraph/workflow-go/internal/execnode"
	"github.com/duragraph/workflow-go/internal/llmclient"
	"github.com/duragraph/workflow-go/internal/mcpclient"
)

// buildDependencies wires the LLM client factory every LLM node resolves
// against: a node's own config.api_key always wins, falling back to the
// provider key config.Load read from the environment when a node leaves it
// blank. It also installs the process-wide MCP registry MCP nodes resolve
// their server client from.
func buildDependencies(cfg *config.Config) execnode.Dependencies {
	factory := func(nodeCfg execnode.LLMConfig) llmclient.Client {
		if nodeCfg.APIKey == "" {
			switch nodeCfg.Provider {
			case "openai":
				nodeCfg.APIKey = cfg.OpenAIAPIKey
			default:
				nodeCfg.APIKey = cfg.AnthropicAPIKey
			}
		}
		return execnode.DefaultClientFactory(nodeCfg)
	}
	return execnode.Dependencies{
		LLMClientFactory: factory,
		MCPRegistry:      mcpclient.Default,
	}
}
