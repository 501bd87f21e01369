package execnode

import (
	"context"
	"encoding/json"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/mcpclient"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// MCPConfig is the declarative config for an Mcp node.
type MCPConfig struct {
	ServerID string      `json:"server_id"`
	CallName string      `json:"call_name"`
	Input    interface{} `json:"input"`
}

// MCPNode resolves an MCP client from a process-wide registry and issues a
// tools/call request against it.
type MCPNode struct {
	base     NodeBase
	cfg      MCPConfig
	registry *mcpclient.Registry
}

// NewMCPNode parses config and binds it to a client registry (the process
// default if registry is nil).
func NewMCPNode(base NodeBase, config json.RawMessage, registry *mcpclient.Registry) (*MCPNode, error) {
	var cfg MCPConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, wferrors.NodeConfigMissing(base.ID, "mcp node config malformed: "+err.Error())
	}
	if cfg.ServerID == "" || cfg.CallName == "" {
		return nil, wferrors.NodeConfigMissing(base.ID, "mcp node requires server_id and call_name")
	}
	if registry == nil {
		registry = mcpclient.Default
	}
	return &MCPNode{base: base, cfg: cfg, registry: registry}, nil
}

func (n *MCPNode) Base() *NodeBase { return &n.base }

func (n *MCPNode) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	return n.base.ProcessInput(ctx, input)
}

func (n *MCPNode) CoreExecute(ctx context.Context, _ *flowdata.FlowData, _ Context) (flowdata.FlowOutput, error) {
	client, ok := n.registry.Get(n.cfg.ServerID)
	if !ok {
		return flowdata.FlowOutput{}, wferrors.NodeConfigMissing(n.base.ID, "no mcp client registered for server_id "+n.cfg.ServerID)
	}

	result, err := client.Call(ctx, n.cfg.CallName, n.cfg.Input)
	if err != nil {
		return flowdata.FlowOutput{}, wferrors.Transport("mcp", err)
	}

	return flowdata.Data(flowdata.NewJSONData(result)), nil
}

func (n *MCPNode) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	return n.base.ProcessOutput(ctx, output)
}
