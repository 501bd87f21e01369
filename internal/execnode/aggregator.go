package execnode

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// AggregatorConfig is the declarative config for an Aggregator node: a map
// from branch name to the id of the child node it runs.
type AggregatorConfig struct {
	Branches map[string]string `json:"branches"`
}

// AggregatorNode executes every referenced child with the same input and
// merges their Data outputs into one Collection, in branch-name order for
// determinism. Non-Data child outputs are tolerated and silently dropped
// (documented contract, see DESIGN.md).
type AggregatorNode struct {
	base NodeBase
	cfg  AggregatorConfig
}

// NewAggregatorNode parses config.
func NewAggregatorNode(base NodeBase, config json.RawMessage) (*AggregatorNode, error) {
	var cfg AggregatorConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, wferrors.NodeConfigMissing(base.ID, "aggregator node config malformed: "+err.Error())
	}
	if len(cfg.Branches) == 0 {
		return nil, wferrors.NodeConfigMissing(base.ID, "aggregator node requires at least one branch")
	}
	return &AggregatorNode{base: base, cfg: cfg}, nil
}

func (n *AggregatorNode) Base() *NodeBase { return &n.base }

func (n *AggregatorNode) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	return n.base.ProcessInput(ctx, input)
}

func (n *AggregatorNode) CoreExecute(ctx context.Context, input *flowdata.FlowData, rc Context) (flowdata.FlowOutput, error) {
	names := make([]string, 0, len(n.cfg.Branches))
	for name := range n.cfg.Branches {
		names = append(names, name)
	}
	sort.Strings(names)

	var aggregated *flowdata.FlowData
	for _, name := range names {
		childID := n.cfg.Branches[name]
		child, ok := rc.Executor(childID)
		if !ok {
			return flowdata.FlowOutput{}, wferrors.NodeNotFound(childID)
		}

		var childInput *flowdata.FlowData
		if input != nil {
			cp := *input
			childInput = &cp
		}
		out, err := Execute(ctx, child, childInput, rc)
		if err != nil {
			return flowdata.FlowOutput{}, err
		}
		if out.Kind != flowdata.OutputData {
			continue
		}
		if aggregated == nil {
			collection := flowdata.NewCollection()
			aggregated = &collection
		}
		aggregated.MergeInto(out.Data)
	}

	if aggregated == nil {
		empty := flowdata.NewCollection()
		aggregated = &empty
	}
	return flowdata.Data(*aggregated), nil
}

func (n *AggregatorNode) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	return n.base.ProcessOutput(ctx, output)
}
