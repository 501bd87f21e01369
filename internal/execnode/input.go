package execnode

import (
	"context"
	"encoding/json"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// InputConfig is the declarative config for an Input node: the literal
// FlowData it always returns.
type InputConfig struct {
	Literal flowdata.FlowData `json:"literal"`
}

// InputNode carries a literal FlowData in its config and ignores whatever
// runtime input it's given. It is the canonical graph entry point.
type InputNode struct {
	base    NodeBase
	literal flowdata.FlowData
}

// NewInputNode parses config and returns an InputNode.
func NewInputNode(base NodeBase, config json.RawMessage) (*InputNode, error) {
	var cfg InputConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, wferrors.NodeConfigMissing(base.ID, "input node requires a literal field: "+err.Error())
	}
	return &InputNode{base: base, literal: cfg.Literal}, nil
}

func (n *InputNode) Base() *NodeBase { return &n.base }

func (n *InputNode) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	return n.base.ProcessInput(ctx, input)
}

func (n *InputNode) CoreExecute(_ context.Context, _ *flowdata.FlowData, _ Context) (flowdata.FlowOutput, error) {
	return flowdata.Data(n.literal), nil
}

func (n *InputNode) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	return n.base.ProcessOutput(ctx, output)
}
