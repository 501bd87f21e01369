package execnode

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// ParallelConfig is the declarative config for a Parallel node: a map from
// handle to the id of the child node to run under it.
type ParallelConfig struct {
	Branches map[string]string `json:"branches"`
}

// ParallelNode spawns every configured child concurrently with the same
// input, joins them, and returns a Parallel envelope of their per-child
// control deliveries.
type ParallelNode struct {
	base NodeBase
	cfg  ParallelConfig
}

// NewParallelNode parses config.
func NewParallelNode(base NodeBase, config json.RawMessage) (*ParallelNode, error) {
	var cfg ParallelConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, wferrors.NodeConfigMissing(base.ID, "parallel node config malformed: "+err.Error())
	}
	if len(cfg.Branches) == 0 {
		return nil, wferrors.NodeConfigMissing(base.ID, "parallel node requires at least one branch")
	}
	return &ParallelNode{base: base, cfg: cfg}, nil
}

func (n *ParallelNode) Base() *NodeBase { return &n.base }

func (n *ParallelNode) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	return n.base.ProcessInput(ctx, input)
}

func (n *ParallelNode) CoreExecute(ctx context.Context, input *flowdata.FlowData, rc Context) (flowdata.FlowOutput, error) {
	type result struct {
		handle string
		data   flowdata.FlowData
	}

	handles := make([]string, 0, len(n.cfg.Branches))
	for handle := range n.cfg.Branches {
		handles = append(handles, handle)
	}

	results := make([]result, len(handles))
	g, gctx := errgroup.WithContext(ctx)
	for i, handle := range handles {
		i, handle := i, handle
		childID := n.cfg.Branches[handle]
		g.Go(func() error {
			child, ok := rc.Executor(childID)
			if !ok {
				return wferrors.NodeNotFound(childID)
			}
			var childInput *flowdata.FlowData
			if input != nil {
				cp := *input
				childInput = &cp
			}
			out, err := Execute(gctx, child, childInput, rc)
			if err != nil {
				return err
			}
			data, err := flowOutputData(out)
			if err != nil {
				return err
			}
			results[i] = result{handle: handle, data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return flowdata.FlowOutput{}, err
	}

	flows := make([]flowdata.ControlFlow, len(results))
	for i, r := range results {
		flows[i] = flowdata.ControlFlow{NextHandle: r.handle, Data: r.data}
	}
	return flowdata.ParallelOutput(flows), nil
}

// flowOutputData extracts the FlowData payload a child delivered, whatever
// envelope kind it used; Parallel children are expected to resolve to Data
// (or Control, whose payload is carried through as-is).
func flowOutputData(out flowdata.FlowOutput) (flowdata.FlowData, error) {
	switch out.Kind {
	case flowdata.OutputData:
		return out.Data, nil
	case flowdata.OutputControl:
		return out.Control.Data, nil
	default:
		return flowdata.FlowData{}, wferrors.ExecutionError("", "parallel child must produce a Data or Control output")
	}
}

func (n *ParallelNode) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	return n.base.ProcessOutput(ctx, output)
}
