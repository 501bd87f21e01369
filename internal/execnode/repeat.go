package execnode

import (
	"context"
	"encoding/json"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// RepeatConfig is the declarative config for a Repeat node.
type RepeatConfig struct {
	ChildID       string `json:"child_id"`
	MaxIterations int    `json:"max_iterations"`
}

// RepeatNode executes its child MaxIterations times, feeding each
// iteration's Data output as the next iteration's input, and returns the
// final Data.
type RepeatNode struct {
	base NodeBase
	cfg  RepeatConfig
}

// NewRepeatNode parses config.
func NewRepeatNode(base NodeBase, config json.RawMessage) (*RepeatNode, error) {
	var cfg RepeatConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, wferrors.NodeConfigMissing(base.ID, "repeat node config malformed: "+err.Error())
	}
	if cfg.ChildID == "" || cfg.MaxIterations <= 0 {
		return nil, wferrors.NodeConfigMissing(base.ID, "repeat node requires child_id and max_iterations > 0")
	}
	return &RepeatNode{base: base, cfg: cfg}, nil
}

func (n *RepeatNode) Base() *NodeBase { return &n.base }

func (n *RepeatNode) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	return n.base.ProcessInput(ctx, input)
}

func (n *RepeatNode) CoreExecute(ctx context.Context, input *flowdata.FlowData, rc Context) (flowdata.FlowOutput, error) {
	child, ok := rc.Executor(n.cfg.ChildID)
	if !ok {
		return flowdata.FlowOutput{}, wferrors.NodeNotFound(n.cfg.ChildID)
	}

	current := input
	for i := 0; i < n.cfg.MaxIterations; i++ {
		out, err := Execute(ctx, child, current, rc)
		if err != nil {
			return flowdata.FlowOutput{}, err
		}
		if out.Kind != flowdata.OutputData {
			return flowdata.FlowOutput{}, wferrors.ExecutionError(n.base.ID, "repeat child must produce a Data output each iteration")
		}
		data := out.Data
		current = &data
	}

	if current == nil {
		return flowdata.FlowOutput{}, wferrors.ExecutionError(n.base.ID, "repeat produced no output")
	}
	return flowdata.Data(*current), nil
}

func (n *RepeatNode) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	return n.base.ProcessOutput(ctx, output)
}
