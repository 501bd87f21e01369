package execnode

import (
	"context"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// IdentityNode returns its input unchanged; it is the canonical end node.
type IdentityNode struct {
	base NodeBase
}

// NewIdentityNode returns an IdentityNode; identity takes no config.
func NewIdentityNode(base NodeBase) *IdentityNode {
	return &IdentityNode{base: base}
}

func (n *IdentityNode) Base() *NodeBase { return &n.base }

func (n *IdentityNode) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	return n.base.ProcessInput(ctx, input)
}

func (n *IdentityNode) CoreExecute(_ context.Context, input *flowdata.FlowData, _ Context) (flowdata.FlowOutput, error) {
	if input == nil {
		return flowdata.FlowOutput{}, wferrors.ExecutionError(n.base.ID, "no input")
	}
	return flowdata.Data(*input), nil
}

func (n *IdentityNode) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	return n.base.ProcessOutput(ctx, output)
}
