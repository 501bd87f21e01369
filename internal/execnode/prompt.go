package execnode

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// PromptConfig is the declarative config for a Prompt node.
type PromptConfig struct {
	Template string `json:"template"`
}

// PromptNode holds a fixed template string, validated non-empty at
// construction, and returns it unconditionally regardless of input.
type PromptNode struct {
	base     NodeBase
	template string
}

// NewPromptNode parses config, rejecting an empty (after trimming) template.
func NewPromptNode(base NodeBase, config json.RawMessage) (*PromptNode, error) {
	var cfg PromptConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, wferrors.NodeConfigMissing(base.ID, "prompt node requires a template field: "+err.Error())
	}
	if strings.TrimSpace(cfg.Template) == "" {
		return nil, wferrors.NodeConfigMissing(base.ID, "prompt template must not be empty")
	}
	return &PromptNode{base: base, template: cfg.Template}, nil
}

func (n *PromptNode) Base() *NodeBase { return &n.base }

func (n *PromptNode) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	return n.base.ProcessInput(ctx, input)
}

func (n *PromptNode) CoreExecute(_ context.Context, _ *flowdata.FlowData, _ Context) (flowdata.FlowOutput, error) {
	return flowdata.Data(flowdata.NewTextData(n.template)), nil
}

func (n *PromptNode) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	return n.base.ProcessOutput(ctx, output)
}
